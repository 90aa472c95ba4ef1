package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Adilet23/Friend_Circle/internal/config"
	"github.com/Adilet23/Friend_Circle/internal/services"
	jwtutil "github.com/Adilet23/Friend_Circle/pkg/jwt"
	"github.com/Adilet23/Friend_Circle/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// AccountHandler handles HTTP requests for signup, login and search.
type AccountHandler struct {
	Accounts *services.AccountService
	Friends  *services.FriendService
	Config   *config.Config
}

// NewAccountHandler creates a new instance of AccountHandler.
func NewAccountHandler(accounts *services.AccountService, friends *services.FriendService, cfg *config.Config) *AccountHandler {
	return &AccountHandler{
		Accounts: accounts,
		Friends:  friends,
		Config:   cfg,
	}
}

// RegisterHandler handles account signup.
func (h *AccountHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.WithError(err).Warn("Failed to decode registration request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	account, err := h.Accounts.Register(r.Context(), body.Username, body.Email, body.Password)
	if err != nil {
		log.WithError(err).Warn("Failed to register account")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.WithField("accountID", account.ID.Hex()).Info("Account registered")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
}

// LoginHandler handles login and returns a JWT plus the account.
func (h *AccountHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	account, err := h.Accounts.Authenticate(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		log.WithFields(log.Fields{
			"email": credentials.Email,
			"error": err,
		}).Warn("Authentication failed")
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	token, err := jwtutil.GenerateToken(account.ID.Hex(), account.Email, account.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithField("accountID", account.ID.Hex()).Info("Account logged in")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":   token,
		"account": account,
	})
}

// SearchHandler looks up accounts by exact username, excluding the caller
// and anyone already related to them.
func (h *AccountHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "Missing username parameter", http.StatusBadRequest)
		return
	}

	me, err := h.Accounts.Get(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Warn("Failed to resolve caller account")
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	results, err := h.Friends.Search(r.Context(), me, username)
	if err != nil {
		log.WithError(err).Error("Search failed")
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// GetAccountHandler returns the caller's own profile.
func (h *AccountHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestedID := mux.Vars(r)["id"]
	if requestedID != claims.UserID {
		log.WithFields(log.Fields{
			"requestedID": requestedID,
			"callerID":    claims.UserID,
		}).Warn("Forbidden profile access attempt")
		http.Error(w, "Forbidden: you can only access your own profile", http.StatusForbidden)
		return
	}

	account, err := h.Accounts.Get(r.Context(), requestedID)
	if err != nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(account)
}

// AdminListAccountsHandler returns every account. Role-gated in the router.
func (h *AccountHandler) AdminListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Accounts.GetAll(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list accounts")
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accounts)
}
