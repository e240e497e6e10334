package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"concierge-backend/internal/auth"
	"concierge-backend/internal/mailer"
	"concierge-backend/internal/models"
	"concierge-backend/internal/repository"
	"concierge-backend/internal/token"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// resetTokenTTL is the validity window of a password-reset link.
const resetTokenTTL = time.Hour

// UserStore is the persistence surface the account handlers need.
// It is implemented by repository.UserRepo and faked in tests.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	UpdateByID(ctx context.Context, id bson.ObjectID, set bson.M) (*models.User, error)
	ReplaceAddresses(ctx context.Context, id bson.ObjectID, addresses []models.Address) (*models.User, error)
	MergeServices(ctx context.Context, id bson.ObjectID, services map[string]bool) (*models.User, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	SetResetToken(ctx context.Context, email, resetToken string, expiresAt time.Time) error
	FindByResetToken(ctx context.Context, resetToken string) (*models.User, error)
	ResetPassword(ctx context.Context, id bson.ObjectID, passwordHash string) error
}

type AuthHandler struct {
	users      UserStore
	issuer     *token.Issuer
	mail       mailer.Mailer
	appBaseURL string
}

func NewAuthHandler(users UserStore, issuer *token.Issuer, mail mailer.Mailer, appBaseURL string) *AuthHandler {
	return &AuthHandler{
		users:      users,
		issuer:     issuer,
		mail:       mail,
		appBaseURL: appBaseURL,
	}
}

// --- Request types ---

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CheckEmailRequest struct {
	Email string `json:"email"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// --- POST /users/signup ---

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusOK, envelope{"result": false, "error": "email and password are required"})
		return
	}

	existing, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("Error checking existing user: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusOK, envelope{"result": false, "error": "this user already exists"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}

	user := &models.User{
		Email:    req.Email,
		Password: hash,
		Token:    uuid.New().String(),
		// Services default all-false; flags default inactive non-host.
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		if repository.IsDuplicate(err) {
			// Lost the race against a concurrent signup with the same email.
			writeJSON(w, http.StatusOK, envelope{"result": false, "error": "this user already exists"})
			return
		}
		log.Printf("Error creating user: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, envelope{"result": true, "user": user})
}

// --- POST /users/signin ---

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "email and password are required"})
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("Error finding user: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}

	// Unknown email and wrong password answer identically so the endpoint
	// cannot be used to enumerate accounts.
	if user == nil || !auth.CheckPassword(req.Password, user.Password) {
		writeJSON(w, http.StatusUnauthorized, envelope{"result": false, "error": "incorrect email or password"})
		return
	}

	sessionToken, err := h.issuer.Issue(user.ID.Hex())
	if err != nil {
		log.Printf("Error signing token: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"result": true,
		"token":  sessionToken,
		"user":   user,
	})
}

// --- POST /users/check-email ---

func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req CheckEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "invalid request body"})
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("Error checking email: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{"exists": user != nil})
}

// --- POST /users/forgot-password ---

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "invalid request body"})
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "email is required"})
		return
	}

	resetToken := uuid.New().String()
	err := h.users.SetResetToken(r.Context(), req.Email, resetToken, time.Now().Add(resetTokenTTL))
	if err != nil && err != repository.ErrNotFound {
		log.Printf("Error storing reset token: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}

	if err == nil {
		link := fmt.Sprintf("%s/reset-password?token=%s", h.appBaseURL, resetToken)
		if mailErr := h.mail.SendPasswordReset(r.Context(), req.Email, link); mailErr != nil {
			// Token is stored, email delivery is best-effort.
			log.Printf("Error sending reset email: %v", mailErr)
		}
	}

	// The answer is the same whether or not the email is registered.
	writeJSON(w, http.StatusOK, envelope{
		"result":  true,
		"message": "if this email is registered, a reset link has been sent",
	})
}

// --- POST /users/reset-password ---

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "invalid request body"})
		return
	}
	if req.Token == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "token and password are required"})
		return
	}

	user, err := h.users.FindByResetToken(r.Context(), req.Token)
	if err != nil {
		log.Printf("Error finding reset token: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}
	if user == nil || time.Now().After(user.ResetTokenExpiration) {
		writeJSON(w, http.StatusUnauthorized, envelope{"result": false, "error": "invalid or expired reset token"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}

	if err := h.users.ResetPassword(r.Context(), user.ID, hash); err != nil {
		log.Printf("Error resetting password: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{"result": true, "message": "password updated"})
}

// --- Helpers ---

type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
