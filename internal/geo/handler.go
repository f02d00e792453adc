package geo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"

	"visitlog/internal/metrics"
)

// Locator performs the outbound geolocation lookup.
type Locator interface {
	Lookup(ctx context.Context, ip string) (Record, error)
}

// Store persists lookup results.
type Store interface {
	List(ctx context.Context) ([]Record, error)
	Insert(ctx context.Context, rec Record) (Record, error)
}

type Handler struct {
	locator Locator
	store   Store
}

func NewHandler(locator Locator, store Store) *Handler {
	return &Handler{locator: locator, store: store}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		sentry.CaptureException(err)
		writeDetail(w, http.StatusInternalServerError, "failed to list geo records")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// Record looks up the IP in the path and stores the result.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	ip := strings.TrimSpace(r.PathValue("ip"))

	rec, err := h.locator.Lookup(r.Context(), ip)
	if err != nil {
		if errors.Is(err, ErrInvalidIP) {
			metrics.GeoLookups.WithLabelValues("invalid").Inc()
			writeDetail(w, http.StatusBadRequest, "invalid ip address")
			return
		}
		metrics.GeoLookups.WithLabelValues("failure").Inc()
		sentry.CaptureException(err)
		writeDetail(w, http.StatusBadGateway, "geo lookup failed")
		return
	}

	stored, err := h.store.Insert(r.Context(), rec)
	if err != nil {
		sentry.CaptureException(err)
		writeDetail(w, http.StatusInternalServerError, "failed to store geo record")
		return
	}

	metrics.GeoLookups.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusCreated, stored)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
