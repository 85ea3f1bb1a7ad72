package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_Reverse(t *testing.T) {
	server := newTestServer(t, http.StatusOK,
		`{"features":[{"place_name":"12 Main Street, Springfield","center":[-73.99,40.73]}]}`)
	client := NewClient(server.URL, "test-key")

	address, err := client.Reverse(context.Background(), LatLng{Lat: 40.73, Lng: -73.99})

	require.NoError(t, err)
	assert.Equal(t, "12 Main Street, Springfield", address)
}

func TestClient_Reverse_NoResults(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"features":[]}`)
	client := NewClient(server.URL, "test-key")

	_, err := client.Reverse(context.Background(), LatLng{Lat: 0, Lng: 0})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Forward(t *testing.T) {
	server := newTestServer(t, http.StatusOK,
		`{"features":[{"place_name":"Springfield, USA","center":[-89.64,39.78]}]}`)
	client := NewClient(server.URL, "test-key")

	loc, address, err := client.Forward(context.Background(), "Springfield")

	require.NoError(t, err)
	assert.Equal(t, "Springfield, USA", address)
	assert.InDelta(t, 39.78, loc.Lat, 0.001)
	assert.InDelta(t, -89.64, loc.Lng, 0.001)
}

func TestClient_Forward_NoResults(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"features":[]}`)
	client := NewClient(server.URL, "test-key")

	_, _, err := client.Forward(context.Background(), "nowhere-at-all")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Forward_MalformedCenter(t *testing.T) {
	server := newTestServer(t, http.StatusOK,
		`{"features":[{"place_name":"Broken","center":[1.0]}]}`)
	client := NewClient(server.URL, "test-key")

	_, _, err := client.Forward(context.Background(), "broken")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_UpstreamError(t *testing.T) {
	server := newTestServer(t, http.StatusForbidden, `{"message":"invalid key"}`)
	client := NewClient(server.URL, "test-key")

	_, err := client.Reverse(context.Background(), LatLng{Lat: 40.73, Lng: -73.99})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
