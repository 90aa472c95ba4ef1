package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Adilet23/Friend_Circle/internal/models"
	"github.com/Adilet23/Friend_Circle/internal/services"
	"github.com/Adilet23/Friend_Circle/pkg/logger"
	"github.com/Adilet23/Friend_Circle/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendHandler manages HTTP endpoints for the friend-request lifecycle.
type FriendHandler struct {
	Friends  *services.FriendService
	Accounts *services.AccountService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(friends *services.FriendService, accounts *services.AccountService) *FriendHandler {
	return &FriendHandler{Friends: friends, Accounts: accounts}
}

func (h *FriendHandler) caller(w http.ResponseWriter, r *http.Request) *models.Account {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}

	account, err := h.Accounts.Get(r.Context(), claims.UserID)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to resolve caller account")
		http.Error(w, "Account not found", http.StatusNotFound)
		return nil
	}
	return account
}

// SendRequestHandler sends a friend request to the user in the path.
func (h *FriendHandler) SendRequestHandler(w http.ResponseWriter, r *http.Request) {
	me := h.caller(w, r)
	if me == nil {
		return
	}

	recipientID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		logger.Log.WithError(err).Warn("Invalid recipient ID")
		return
	}

	request, err := h.Friends.Send(r.Context(), me, recipientID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		logger.Log.WithError(err).Warn("Failed to send friend request")
		return
	}

	logger.Log.WithFields(map[string]interface{}{
		"senderID":    me.ID.Hex(),
		"recipientID": recipientID.Hex(),
	}).Info("Friend request sent")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(request)
}

// PendingRequestsHandler lists the caller's inbound pending requests.
func (h *FriendHandler) PendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	me := h.caller(w, r)
	if me == nil {
		return
	}

	requests, err := h.Friends.Inbound(r.Context(), me.ID)
	if err != nil {
		http.Error(w, "Failed to get requests", http.StatusInternalServerError)
		logger.Log.WithError(err).Error("Failed to get pending requests")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requests)
}

// SentRequestsHandler lists the caller's outbound pending requests.
func (h *FriendHandler) SentRequestsHandler(w http.ResponseWriter, r *http.Request) {
	me := h.caller(w, r)
	if me == nil {
		return
	}

	requests, err := h.Friends.Outbound(r.Context(), me.ID)
	if err != nil {
		http.Error(w, "Failed to get sent requests", http.StatusInternalServerError)
		logger.Log.WithError(err).Error("Failed to get sent requests")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requests)
}

// RespondToRequestHandler accepts or rejects a pending request.
func (h *FriendHandler) RespondToRequestHandler(w http.ResponseWriter, r *http.Request) {
	me := h.caller(w, r)
	if me == nil {
		return
	}

	requestID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		logger.Log.WithError(err).Warn("Invalid friend request ID")
		return
	}

	var body struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		logger.Log.WithError(err).Warn("Failed to decode response body")
		return
	}
	defer r.Body.Close()

	if body.Accept {
		slotID, err := h.Friends.Accept(r.Context(), me, requestID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			logger.Log.WithError(err).Error("Failed to accept friend request")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message":        "Friend request accepted",
			"friend_slot_id": slotID.Hex(),
		})
		return
	}

	if err := h.Friends.Reject(r.Context(), me, requestID); err != nil {
		http.Error(w, "Failed to reject request", http.StatusInternalServerError)
		logger.Log.WithError(err).Error("Failed to reject friend request")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Friend request rejected",
	})
}

// FriendsHandler lists the caller's friends.
func (h *FriendHandler) FriendsHandler(w http.ResponseWriter, r *http.Request) {
	me := h.caller(w, r)
	if me == nil {
		return
	}

	friends, err := h.Friends.Friends(r.Context(), me.ID)
	if err != nil {
		http.Error(w, "Failed to get friends", http.StatusInternalServerError)
		logger.Log.WithError(err).Error("Failed to fetch friends")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(friends)
}

// RemoveFriendHandler deletes both sides of a friendship by the caller's
// slot ID.
func (h *FriendHandler) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	me := h.caller(w, r)
	if me == nil {
		return
	}

	slotID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid friend slot ID", http.StatusBadRequest)
		logger.Log.WithError(err).Warn("Invalid friend slot ID")
		return
	}

	if err := h.Friends.Remove(r.Context(), me, slotID); err != nil {
		http.Error(w, "Failed to remove friend", http.StatusInternalServerError)
		logger.Log.WithError(err).Error("Failed to remove friend")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Friend removed",
	})
}
