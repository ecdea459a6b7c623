package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PingResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "apqp-engine", resp.Service)
	assert.Equal(t, "test", resp.Environment)
}

func TestReadyWithoutDatabase(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "ready", resp["status"])
}
