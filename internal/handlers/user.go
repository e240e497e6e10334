package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"concierge-backend/internal/middleware"
	"concierge-backend/internal/models"
	"concierge-backend/internal/repository"
	"concierge-backend/internal/sanitize"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// AssignmentStore is what account deletion needs from the assignments
// collection.
type AssignmentStore interface {
	DetachConcierge(ctx context.Context, conciergeID bson.ObjectID) error
}

type UserHandler struct {
	users       UserStore
	assignments AssignmentStore
}

func NewUserHandler(users UserStore, assignments AssignmentStore) *UserHandler {
	return &UserHandler{
		users:       users,
		assignments: assignments,
	}
}

// --- GET /users/ ---

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindAll(r.Context())
	if err != nil {
		log.Printf("Error listing users: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"result": true, "users": users})
}

// --- GET /users/id ---
// Resolves the caller's identity from the bearer token. Name fields are
// HTML-escaped and the email is normalized on this route only.

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		log.Printf("Error finding user: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "message": "internal server error"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, envelope{"result": false, "message": "user not found"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"result":    true,
		"_id":       user.ID,
		"isAdmin":   user.IsAdmin,
		"firstName": sanitize.Name(user.FirstName),
		"lastName":  sanitize.Name(user.LastName),
		"email":     sanitize.Email(user.Email),
		"address":   user.Addresses,
		"services":  user.Services,
	})
}

// --- PUT /users/{id} ---
// Generic field overwrite. Only whitelisted fields can be set; the ban and
// admin flags additionally require an admin caller.

var updatableFields = map[string]string{
	"firstName":    "first_name",
	"lastName":     "last_name",
	"email":        "email",
	"profileImage": "profile_image",
	"isHost":       "is_host",
	"isActive":     "is_active",
}

var adminOnlyFields = map[string]string{
	"isAdmin": "is_admin",
	"isBan":   "is_ban",
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	targetID, caller, ok := h.authorizeTarget(w, r)
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "invalid request body"})
		return
	}

	set := bson.M{}
	for jsonKey, value := range body {
		if bsonKey, ok := updatableFields[jsonKey]; ok {
			set[bsonKey] = value
			continue
		}
		if bsonKey, ok := adminOnlyFields[jsonKey]; ok && caller.IsAdmin {
			set[bsonKey] = value
		}
		// Everything else, password and token included, is ignored here.
	}
	if len(set) == 0 {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "no updatable fields in request"})
		return
	}

	updated, err := h.users.UpdateByID(r.Context(), targetID, set)
	if err != nil {
		h.writeUpdateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"result": true, "user": updated})
}

// --- PUT /users/profile/update ---
// Self-service partial update: scalar fields overwrite only when supplied,
// the address collection is replaced wholesale, services merge key by key.

type ProfileUpdateRequest struct {
	FirstName    *string           `json:"firstName"`
	LastName     *string           `json:"lastName"`
	Email        *string           `json:"email"`
	ProfileImage *string           `json:"profileImage"`
	IsHost       *bool             `json:"isHost"`
	IsActive     *bool             `json:"isActive"`
	Address      *[]models.Address `json:"address"`
	Services     map[string]bool   `json:"services"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "invalid request body"})
		return
	}

	set := bson.M{}
	if req.FirstName != nil {
		set["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		set["last_name"] = *req.LastName
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.ProfileImage != nil {
		set["profile_image"] = *req.ProfileImage
	}
	if req.IsHost != nil {
		set["is_host"] = *req.IsHost
	}
	if req.IsActive != nil {
		set["is_active"] = *req.IsActive
	}
	if req.Address != nil {
		set["addresses"] = *req.Address
	}
	for key, enabled := range models.FilterServiceKeys(req.Services) {
		set["services."+key] = enabled
	}

	if len(set) == 0 {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "no updatable fields in request"})
		return
	}

	updated, err := h.users.UpdateByID(r.Context(), userID, set)
	if err != nil {
		h.writeUpdateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"result": true, "user": updated})
}

// --- PATCH /users/address/{id} ---

func (h *UserHandler) ReplaceAddresses(w http.ResponseWriter, r *http.Request) {
	targetID, _, ok := h.authorizeTarget(w, r)
	if !ok {
		return
	}

	var addresses []models.Address
	if err := json.NewDecoder(r.Body).Decode(&addresses); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "invalid request body"})
		return
	}

	updated, err := h.users.ReplaceAddresses(r.Context(), targetID, addresses)
	if err != nil {
		h.writeUpdateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"result": true, "user": updated})
}

// --- PUT /users/services/{id} ---

func (h *UserHandler) UpdateServices(w http.ResponseWriter, r *http.Request) {
	targetID, _, ok := h.authorizeTarget(w, r)
	if !ok {
		return
	}

	var services map[string]bool
	if err := json.NewDecoder(r.Body).Decode(&services); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "invalid request body"})
		return
	}

	// Unknown keys are dropped, not errors.
	updated, err := h.users.MergeServices(r.Context(), targetID, models.FilterServiceKeys(services))
	if err != nil {
		h.writeUpdateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"result": true, "user": updated})
}

// --- DELETE /users/{id} ---

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	targetID, _, ok := h.authorizeTarget(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), targetID); err != nil {
		if err == repository.ErrNotFound {
			writeJSON(w, http.StatusOK, envelope{"result": false, "message": "user not found"})
			return
		}
		log.Printf("Error deleting user: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "message": "error deleting account"})
		return
	}

	// Deletion is permanent; assignments only lose their concierge link.
	if err := h.assignments.DetachConcierge(r.Context(), targetID); err != nil {
		log.Printf("Error detaching assignments for %s: %v", targetID.Hex(), err)
	}

	writeJSON(w, http.StatusOK, envelope{"result": true, "message": "your account has been deleted"})
}

// --- Helpers ---

// callerID resolves the authenticated caller's id from the request context.
func (h *UserHandler) callerID(w http.ResponseWriter, r *http.Request) (bson.ObjectID, bool) {
	userIDHex := middleware.GetUserID(r.Context())
	if userIDHex == "" {
		writeJSON(w, http.StatusUnauthorized, envelope{"result": false, "error": "unauthorized"})
		return bson.ObjectID{}, false
	}
	userID, err := bson.ObjectIDFromHex(userIDHex)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "invalid user ID"})
		return bson.ObjectID{}, false
	}
	return userID, true
}

// authorizeTarget parses the {id} URL param and enforces the self-or-admin
// rule for routes that act on an arbitrary account.
func (h *UserHandler) authorizeTarget(w http.ResponseWriter, r *http.Request) (bson.ObjectID, *models.User, bool) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return bson.ObjectID{}, nil, false
	}

	targetID, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "invalid user ID"})
		return bson.ObjectID{}, nil, false
	}

	caller, err := h.users.FindByID(r.Context(), callerID)
	if err != nil {
		log.Printf("Error loading caller: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return bson.ObjectID{}, nil, false
	}
	if caller == nil {
		writeJSON(w, http.StatusUnauthorized, envelope{"result": false, "error": "unauthorized"})
		return bson.ObjectID{}, nil, false
	}

	if caller.ID != targetID && !caller.IsAdmin {
		writeJSON(w, http.StatusForbidden, envelope{"result": false, "error": "forbidden"})
		return bson.ObjectID{}, nil, false
	}
	return targetID, caller, true
}

func (h *UserHandler) writeUpdateError(w http.ResponseWriter, err error) {
	if err == repository.ErrNotFound {
		writeJSON(w, http.StatusNotFound, envelope{"result": false, "message": "user not found"})
		return
	}
	log.Printf("Error updating user: %v", err)
	writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
}
