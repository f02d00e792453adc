package maintenance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRetentionStore struct {
	deleted int64
	err     error
	cutoff  time.Time
}

func (f *fakeRetentionStore) DeleteOlderThan(_ context.Context, cutoff time.Time, _ int) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, f.err
}

func request(handler *CleanupHandler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/internal/maintenance/cleanup", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	return rec
}

func TestCleanupHiddenWithoutSecret(t *testing.T) {
	handler := NewCleanupHandler(&fakeRetentionStore{}, &fakeRetentionStore{}, zap.NewNop(), "", time.Hour, 100)

	rec := request(handler, "Bearer anything")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCleanupRejectsBadSecret(t *testing.T) {
	handler := NewCleanupHandler(&fakeRetentionStore{}, &fakeRetentionStore{}, zap.NewNop(), "cron-secret", time.Hour, 100)

	for _, header := range []string{"", "Bearer wrong", "Basic cron-secret"} {
		rec := request(handler, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestCleanupDeletesBothStores(t *testing.T) {
	logStore := &fakeRetentionStore{deleted: 12}
	geoStore := &fakeRetentionStore{deleted: 3}
	handler := NewCleanupHandler(logStore, geoStore, zap.NewNop(), "cron-secret", 24*time.Hour, 100)

	rec := request(handler, "Bearer cron-secret")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted_log_entries":12`)
	assert.Contains(t, rec.Body.String(), `"deleted_geo_records":3`)

	expected := time.Now().UTC().Add(-24 * time.Hour)
	assert.WithinDuration(t, expected, logStore.cutoff, 5*time.Second)
	assert.WithinDuration(t, expected, geoStore.cutoff, 5*time.Second)
}

func TestCleanupStoreFailure(t *testing.T) {
	handler := NewCleanupHandler(&fakeRetentionStore{err: errors.New("db down")}, &fakeRetentionStore{}, zap.NewNop(), "cron-secret", time.Hour, 100)

	rec := request(handler, "Bearer cron-secret")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
