package maintenance

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RetentionStore deletes records created before a cutoff, bounded per
// call; both the log and geo repositories satisfy it.
type RetentionStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}

type CleanupResult struct {
	DeletedLogEntries int64 `json:"deleted_log_entries"`
	DeletedGeoRecords int64 `json:"deleted_geo_records"`
}

// CleanupHandler drives retention cleanup from an external cron. The
// endpoint hides itself (404) unless a cron secret is configured.
type CleanupHandler struct {
	logStore   RetentionStore
	geoStore   RetentionStore
	logger     *zap.Logger
	cronSecret string
	retention  time.Duration
	batchSize  int
}

func NewCleanupHandler(
	logStore RetentionStore,
	geoStore RetentionStore,
	logger *zap.Logger,
	cronSecret string,
	retention time.Duration,
	batchSize int,
) *CleanupHandler {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &CleanupHandler{
		logStore:   logStore,
		geoStore:   geoStore,
		logger:     logger,
		cronSecret: strings.TrimSpace(cronSecret),
		retention:  retention,
		batchSize:  batchSize,
	}
}

func (h *CleanupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
		return
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) != h.cronSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "unauthorized"})
		return
	}

	cutoff := time.Now().UTC().Add(-h.retention)

	deletedLogs, err := h.logStore.DeleteOlderThan(r.Context(), cutoff, h.batchSize)
	if err != nil {
		h.logger.Error("log_cleanup_failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "cleanup failed"})
		return
	}

	deletedGeo, err := h.geoStore.DeleteOlderThan(r.Context(), cutoff, h.batchSize)
	if err != nil {
		h.logger.Error("geo_cleanup_failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "cleanup failed"})
		return
	}

	result := CleanupResult{
		DeletedLogEntries: deletedLogs,
		DeletedGeoRecords: deletedGeo,
	}

	h.logger.Info("retention_cleanup_completed",
		zap.Int64("deleted_log_entries", result.DeletedLogEntries),
		zap.Int64("deleted_geo_records", result.DeletedGeoRecords),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"result": result,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
