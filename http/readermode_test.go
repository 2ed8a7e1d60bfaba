package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderModeLifecycle(t *testing.T) {
	s := newTestServer(t)
	user := registerUser(t, s, "alice")

	// Fresh accounts start outside reader mode.
	req := httptest.NewRequest("GET", "/api/readerMode", nil)
	req = s.asUser(req, user)
	rec := httptest.NewRecorder()
	s.handleGetReaderMode(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["inReaderMode"])

	req = httptest.NewRequest("PUT", "/api/readerMode/enter", nil)
	req = s.asUser(req, user)
	rec = httptest.NewRecorder()
	s.handleEnterReaderMode(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"Your have successfully entered Reader Mode (a safe browsing mode). Public-facing actions are disabled.",
		decodeBody(t, rec)["message"])

	req = httptest.NewRequest("GET", "/api/readerMode", nil)
	req = s.asUser(req, user)
	rec = httptest.NewRecorder()
	s.handleGetReaderMode(rec, req)
	assert.Equal(t, true, decodeBody(t, rec)["inReaderMode"])

	req = httptest.NewRequest("PUT", "/api/readerMode/exit", nil)
	req = s.asUser(req, user)
	rec = httptest.NewRecorder()
	s.handleExitReaderMode(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"Your have now exited Reader Mode, and have returned to the default browsing mode.",
		decodeBody(t, rec)["message"])

	req = httptest.NewRequest("GET", "/api/readerMode", nil)
	req = s.asUser(req, user)
	rec = httptest.NewRecorder()
	s.handleGetReaderMode(rec, req)
	assert.Equal(t, false, decodeBody(t, rec)["inReaderMode"])
}
