package logs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"visitlog/internal/metrics"
	"visitlog/internal/observability"
)

const maxJSONBodyBytes = 1 << 20

var allowedMethods = map[string]bool{
	"": true, "GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// Store is what the handlers need from the storage layer.
type Store interface {
	ListByDomain(ctx context.Context, domain string) ([]Entry, error)
	Insert(ctx context.Context, domain string, input EntryInput) (Entry, error)
	DeleteByID(ctx context.Context, domain, id string) error
	DeleteByDomain(ctx context.Context, domain string) (int64, error)
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	domain, ok := requestDomain(w, r)
	if !ok {
		return
	}

	entries, err := h.store.ListByDomain(r.Context(), domain)
	if err != nil {
		sentry.CaptureException(err)
		writeDetail(w, http.StatusInternalServerError, "failed to list log entries")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	domain, ok := requestDomain(w, r)
	if !ok {
		return
	}

	input, ok := parseInput(w, r)
	if !ok {
		return
	}

	entry, err := h.store.Insert(r.Context(), domain, input)
	if err != nil {
		sentry.CaptureException(err)
		writeDetail(w, http.StatusInternalServerError, "failed to record log entry")
		return
	}

	metrics.LogEntriesWritten.WithLabelValues(domain).Inc()
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	domain, ok := requestDomain(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid log entry id")
		return
	}

	if err := h.store.DeleteByID(r.Context(), domain, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeDetail(w, http.StatusNotFound, "log entry not found")
			return
		}
		sentry.CaptureException(err)
		writeDetail(w, http.StatusInternalServerError, "failed to delete log entry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Log deleted successfully"})
}

func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	domain, ok := requestDomain(w, r)
	if !ok {
		return
	}

	deleted, err := h.store.DeleteByDomain(r.Context(), domain)
	if err != nil {
		sentry.CaptureException(err)
		writeDetail(w, http.StatusInternalServerError, "failed to delete log entries")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Logs deleted successfully",
		"deleted": deleted,
	})
}

func requestDomain(w http.ResponseWriter, r *http.Request) (string, bool) {
	domain := strings.ToLower(r.PathValue("domain"))
	if !ValidDomain(domain) {
		writeDetail(w, http.StatusBadRequest, "unknown log domain")
		return "", false
	}
	return domain, true
}

func parseInput(w http.ResponseWriter, r *http.Request) (EntryInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var input EntryInput
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return EntryInput{}, false
	}

	input.RouteAction = strings.TrimSpace(input.RouteAction)
	input.Method = strings.ToUpper(strings.TrimSpace(input.Method))
	input.ClientHost = strings.TrimSpace(input.ClientHost)
	input.City = strings.TrimSpace(input.City)
	input.Content = strings.TrimSpace(input.Content)

	if input.RouteAction == "" {
		writeDetail(w, http.StatusBadRequest, "route_action is required")
		return EntryInput{}, false
	}
	if !utf8.ValidString(input.RouteAction) || len(input.RouteAction) > 200 {
		writeDetail(w, http.StatusBadRequest, "route_action is invalid")
		return EntryInput{}, false
	}
	if input.Content == "" {
		writeDetail(w, http.StatusBadRequest, "content is required")
		return EntryInput{}, false
	}
	if !utf8.ValidString(input.Content) || len(input.Content) > 2000 {
		writeDetail(w, http.StatusBadRequest, "content is invalid")
		return EntryInput{}, false
	}
	if !allowedMethods[input.Method] {
		writeDetail(w, http.StatusBadRequest, "method is invalid")
		return EntryInput{}, false
	}
	if input.StatusCode != 0 && (input.StatusCode < 100 || input.StatusCode > 599) {
		writeDetail(w, http.StatusBadRequest, "status_code is invalid")
		return EntryInput{}, false
	}
	if input.ClientHost == "" {
		input.ClientHost = observability.ClientIP(r)
	}

	return input, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
