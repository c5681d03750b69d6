package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/frotadev/fleet-manager/internal/auth"
	"github.com/frotadev/fleet-manager/internal/db"
	"github.com/frotadev/fleet-manager/internal/middleware"
	"github.com/frotadev/fleet-manager/internal/models"
)

// AuthHandler manages dashboard accounts: login, registration and the
// profile endpoints for the signed-in account.
type AuthHandler struct {
	authService *auth.Service
	users       db.UserCollection
	logger      *log.Logger
}

// NewAuthHandler creates a new account handler.
func NewAuthHandler(authService *auth.Service, users db.UserCollection, logger *log.Logger) *AuthHandler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &AuthHandler{authService: authService, users: users, logger: logger}
}

func (h *AuthHandler) writeAuthJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// sessionFor issues the token pair for an authenticated account.
func (h *AuthHandler) sessionFor(user *models.User) (models.LoginResponse, error) {
	token, err := h.authService.IssueToken(user)
	if err != nil {
		return models.LoginResponse{}, err
	}
	refresh, err := h.authService.IssueRefreshToken()
	if err != nil {
		return models.LoginResponse{}, err
	}
	return models.LoginResponse{Token: token, RefreshToken: refresh, User: *user}, nil
}

// Login authenticates a dashboard account and opens a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.users.UserByUsername(r.Context(), req.Username)
	if err != nil || !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if !user.IsActive {
		http.Error(w, "Account is deactivated", http.StatusUnauthorized)
		return
	}

	session, err := h.sessionFor(user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to open session")
		http.Error(w, "Failed to open session", http.StatusInternalServerError)
		return
	}

	if err := h.users.TouchLastLogin(r.Context(), user.ID.Hex()); err != nil {
		h.logger.WithError(err).WithField("username", user.Username).Warn("Failed to record last login")
	}

	h.writeAuthJSON(w, http.StatusOK, session)
}

// Register creates a new dashboard account and opens its first session.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.authService.CheckRegistration(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !models.IsValidRole(req.Role) {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}

	if _, err := h.users.UserByUsername(r.Context(), req.Username); err == nil {
		http.Error(w, "Username already exists", http.StatusConflict)
		return
	}
	if _, err := h.users.UserByEmail(r.Context(), req.Email); err == nil {
		http.Error(w, "Email already exists", http.StatusConflict)
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		FullName:     req.FullName,
		Sector:       req.Sector,
		IsActive:     true,
	}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		h.logger.WithError(err).Error("Failed to create account")
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	session, err := h.sessionFor(&user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to open session")
		http.Error(w, "Failed to open session", http.StatusInternalServerError)
		return
	}

	h.logger.WithFields(log.Fields{
		"username": user.Username,
		"role":     user.Role,
		"sector":   user.Sector,
	}).Info("Dashboard account created")
	h.writeAuthJSON(w, http.StatusCreated, session)
}

// currentUser resolves the signed-in account from the request context.
func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return nil, false
	}
	user, err := h.users.UserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
		} else {
			http.Error(w, "Failed to load account", http.StatusInternalServerError)
		}
		return nil, false
	}
	return user, true
}

// GetProfile returns the signed-in account.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	h.writeAuthJSON(w, http.StatusOK, user)
}

// UpdateProfile changes the contact fields of the signed-in account.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		FullName string `json:"full_name"`
		Sector   string `json:"sector"`
		Email    string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Sector != "" {
		user.Sector = req.Sector
	}
	if req.Email != "" && req.Email != user.Email {
		if err := h.authService.CheckEmail(req.Email); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if existing, err := h.users.UserByEmail(r.Context(), req.Email); err == nil && existing.ID != user.ID {
			http.Error(w, "Email already exists", http.StatusConflict)
			return
		}
		user.Email = req.Email
	}

	if err := h.users.ReplaceUser(r.Context(), user.ID.Hex(), *user); err != nil {
		h.logger.WithError(err).Error("Failed to update account")
		http.Error(w, "Failed to update account", http.StatusInternalServerError)
		return
	}
	h.writeAuthJSON(w, http.StatusOK, user)
}

// ChangePassword rotates the signed-in account's password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.authService.CheckNewPassword(req.NewPassword); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !h.authService.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		http.Error(w, "Current password is incorrect", http.StatusUnauthorized)
		return
	}

	hash, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		http.Error(w, "Failed to change password", http.StatusInternalServerError)
		return
	}
	user.PasswordHash = hash
	if err := h.users.ReplaceUser(r.Context(), user.ID.Hex(), *user); err != nil {
		h.logger.WithError(err).Error("Failed to change password")
		http.Error(w, "Failed to change password", http.StatusInternalServerError)
		return
	}

	h.writeAuthJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}
