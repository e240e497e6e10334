package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"concierge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ConciergeSearcher is the query surface of the concierge search routes,
// implemented by repository.UserRepo.
type ConciergeSearcher interface {
	FindConciergesByCity(ctx context.Context, city string) ([]models.User, error)
	FindConciergesNear(ctx context.Context, lon, lat float64) ([]models.User, error)
	FindAllConcierges(ctx context.Context) ([]models.User, error)
	SearchConcierges(ctx context.Context, services []string, city, postalCode string) ([]models.User, error)
}

type SearchHandler struct {
	concierges ConciergeSearcher
}

func NewSearchHandler(concierges ConciergeSearcher) *SearchHandler {
	return &SearchHandler{concierges: concierges}
}

// --- GET /users/concierges ---
//
// Tiered strategy: a city text match wins outright; with no city match,
// coordinates fall back to a 50km proximity search; with neither, every
// active host is returned.

func (h *SearchHandler) Concierges(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")

	if city != "" {
		matches, err := h.concierges.FindConciergesByCity(r.Context(), city)
		if err != nil {
			log.Printf("Error searching concierges by city: %v", err)
			writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
			return
		}
		if len(matches) > 0 {
			writeJSON(w, http.StatusOK, envelope{
				"result":     true,
				"concierges": matches,
				"isNearby":   false,
			})
			return
		}
	}

	if latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			writeJSON(w, http.StatusBadRequest, envelope{"result": false, "error": "invalid coordinates"})
			return
		}

		nearby, err := h.concierges.FindConciergesNear(r.Context(), lon, lat)
		if err != nil {
			log.Printf("Error searching nearby concierges: %v", err)
			writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, envelope{
			"result":     true,
			"concierges": nearby,
			"isNearby":   true,
		})
		return
	}

	all, err := h.concierges.FindAllConcierges(r.Context())
	if err != nil {
		log.Printf("Error listing concierges: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"result":     true,
		"concierges": all,
		"isNearby":   false,
	})
}

// --- GET /users/search/services ---

// conciergeSummary is the projection returned by the capability search.
type conciergeSummary struct {
	ID        bson.ObjectID     `json:"_id"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	Email     string            `json:"email"`
	Address   []models.Address  `json:"address"`
	Services  models.ServiceSet `json:"services"`
}

func (h *SearchHandler) SearchServices(w http.ResponseWriter, r *http.Request) {
	servicesParam := r.URL.Query().Get("services")
	city := r.URL.Query().Get("city")
	postalCode := r.URL.Query().Get("postalCode")

	requested := []string{}
	applied := []string{}
	if servicesParam != "" {
		requested = strings.Split(servicesParam, ",")
		for _, key := range requested {
			// Unknown service keys are silently dropped.
			if models.IsValidServiceKey(key) {
				applied = append(applied, key)
			}
		}
	}

	matches, err := h.concierges.SearchConcierges(r.Context(), applied, city, postalCode)
	if err != nil {
		log.Printf("Error searching concierges by services: %v", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"result": false, "error": "internal server error"})
		return
	}

	summaries := make([]conciergeSummary, 0, len(matches))
	for _, c := range matches {
		summaries = append(summaries, conciergeSummary{
			ID:        c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Address:   c.Addresses,
			Services:  c.Services,
		})
	}

	writeJSON(w, http.StatusOK, envelope{
		"result": true,
		"count":  len(summaries),
		"filters": envelope{
			"services":   requested,
			"city":       city,
			"postalCode": postalCode,
		},
		"concierges": summaries,
	})
}
