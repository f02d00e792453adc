package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/109.123.18.84", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ip": "109.123.18.84",
			"city": "Ruše",
			"region": "Ruše",
			"country": "SI",
			"loc": "46.5394,15.5158",
			"org": "AS58056 siaIT d.o.o."
		}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "test-token")
	require.NoError(t, err)

	rec, err := client.Lookup(context.Background(), "109.123.18.84")
	require.NoError(t, err)

	assert.Equal(t, "109.123.18.84", rec.IP)
	assert.Equal(t, "Ruše", rec.City)
	assert.Equal(t, "SI", rec.Country)
	assert.Equal(t, "46.5394,15.5158", rec.Loc)
	assert.Empty(t, rec.ID)
}

func TestLookupInvalidIP(t *testing.T) {
	client, err := NewClient("https://ipinfo.io", "")
	require.NoError(t, err)

	for _, ip := range []string{"", "localhost", "999.1.1.1", "10.0.0.1; DROP"} {
		_, err := client.Lookup(context.Background(), ip)
		assert.ErrorIs(t, err, ErrInvalidIP, ip)
	}
}

func TestLookupAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"title": "Rate limit exceeded"}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "")
	require.NoError(t, err)

	_, err = client.Lookup(context.Background(), "10.0.0.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rate limit exceeded")
}

func TestLookupGarbageBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "")
	require.NoError(t, err)

	_, err = client.Lookup(context.Background(), "10.0.0.1")
	assert.Error(t, err)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com", "")
	assert.Error(t, err)
}
