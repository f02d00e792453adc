package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"

	"visitlog/internal/metrics"
)

const maxFormBodyBytes = 1 << 16

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Login handles the form-encoded credential submission and answers
// with a bearer access token. The failure message never says whether
// the username or the password was wrong.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodyBytes)

	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid form body")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}

		sentry.CaptureException(err)
		writeDetail(w, http.StatusInternalServerError, "failed to login")
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, token)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
