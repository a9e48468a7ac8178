package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/platform/requestctx"
)

// NewAPIHandler exposes a Service over the directory API routes:
// GET /api/categories, GET /api/locations, GET /api/businesses and POST /submit-contact.
func NewAPIHandler(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Categories(r.Context())
		writeResult(w, r, list, err)
	})
	r.Get("/api/locations", func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Locations(r.Context())
		writeResult(w, r, list, err)
	})
	r.Get("/api/businesses", func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Businesses(r.Context(), QueryFromValues(r.URL.Query()))
		writeResult(w, r, list, err)
	})
	r.Post("/submit-contact", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeError(w, "invalid_form", "invalid form body", http.StatusBadRequest)
			return
		}
		reply, err := svc.SubmitContact(r.Context(), r.PostForm)
		if err != nil {
			requestctx.Logger(r.Context()).Error("catalog api: submit contact failed", zap.Error(err))
			writeJSON(w, http.StatusOK, ContactReply{Success: false, Message: "An error occurred. Please try again later."})
			return
		}
		writeJSON(w, http.StatusOK, reply)
	})
	return r
}

func writeResult(w http.ResponseWriter, r *http.Request, payload any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, payload)
		return
	}
	if errors.Is(err, ErrInvalidQuery) {
		writeError(w, "invalid_query", err.Error(), http.StatusBadRequest)
		return
	}
	requestctx.Logger(r.Context()).Error("catalog api: request failed", zap.Error(err))
	writeError(w, "internal_server_error", "internal server error", http.StatusInternalServerError)
}

func writeError(w http.ResponseWriter, code, message string, status int) {
	writeJSON(w, status, map[string]any{
		"error":   code,
		"message": message,
		"status":  status,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
