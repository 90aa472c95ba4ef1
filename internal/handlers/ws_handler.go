package handlers

import (
	"net/http"
	"sync"

	"github.com/Adilet23/Friend_Circle/internal/models"
	"github.com/Adilet23/Friend_Circle/internal/services"
	jwtutil "github.com/Adilet23/Friend_Circle/pkg/jwt"
	"github.com/Adilet23/Friend_Circle/pkg/logger"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WSEvent is a single push frame: the full current sequence of whichever
// ledger changed.
type WSEvent struct {
	Type    string      `json:"type"` // "friend_requests" or "friends"
	Payload interface{} `json:"payload"`
}

// WSHandler pushes live ledger updates to connected clients.
type WSHandler struct {
	Friends   *services.FriendService
	JWTSecret string
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(friends *services.FriendService, jwtSecret string) *WSHandler {
	return &WSHandler{Friends: friends, JWTSecret: jwtSecret}
}

// SubscribeHandler upgrades the connection and streams the caller's inbound
// requests and friend list until the client disconnects. Both subscriptions
// are bound to the connection and cancelled on close.
func (h *WSHandler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	me, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid token subject", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	logger.Log.WithField("accountID", me.Hex()).Info("WebSocket connected")

	var writeMu sync.Mutex
	push := func(event WSEvent) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(event); err != nil {
			logger.Log.WithError(err).Warn("WebSocket write failed")
		}
	}

	cancelRequests := h.Friends.SubscribeInbound(r.Context(), me, func(requests []models.FriendRequest) {
		push(WSEvent{Type: "friend_requests", Payload: requests})
	})
	cancelFriends := h.Friends.SubscribeFriends(r.Context(), me, func(friends []models.Friendship) {
		push(WSEvent{Type: "friends", Payload: friends})
	})

	defer func() {
		cancelRequests()
		cancelFriends()
		conn.Close()
		logger.Log.WithField("accountID", me.Hex()).Info("WebSocket disconnected")
	}()

	// Initial snapshots so the client does not wait for the first change.
	if requests, err := h.Friends.Inbound(r.Context(), me); err == nil {
		push(WSEvent{Type: "friend_requests", Payload: requests})
	}
	if friends, err := h.Friends.Friends(r.Context(), me); err == nil {
		push(WSEvent{Type: "friends", Payload: friends})
	}

	// Drain the read side until the client disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
