package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"concierge-backend/internal/mailer"
	customMiddleware "concierge-backend/internal/middleware"
	"concierge-backend/internal/token"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "handlers-test-secret"

// newTestEnv wires the handlers into the same route table the server mounts,
// backed by in-memory fakes.
func newTestEnv(t *testing.T) (*fakeUserStore, *fakeAssignmentStore, *token.Issuer, http.Handler) {
	t.Helper()

	store := newFakeUserStore()
	assignments := &fakeAssignmentStore{}
	issuer := token.NewIssuer(testJWTSecret)

	authHandler := NewAuthHandler(store, issuer, mailer.NewLogMailer(), "http://localhost:8080")
	userHandler := NewUserHandler(store, assignments)
	searchHandler := NewSearchHandler(store)

	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/signin", authHandler.Signin)
		r.Post("/check-email", authHandler.CheckEmail)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)
		r.Get("/", userHandler.List)
		r.Get("/concierges", searchHandler.Concierges)
		r.Get("/search/services", searchHandler.SearchServices)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.JWTAuth(issuer))

			r.Get("/id", userHandler.Me)
			r.Put("/profile/update", userHandler.UpdateProfile)
			r.Put("/services/{id}", userHandler.UpdateServices)
			r.Patch("/address/{id}", userHandler.ReplaceAddresses)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})
	})

	return store, assignments, issuer, r
}

func doJSON(t *testing.T, handler http.Handler, method, path, bearer string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	decoded := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), "response was not JSON: %s", w.Body.String())
	}
	return w, decoded
}
