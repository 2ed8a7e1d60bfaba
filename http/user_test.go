package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteUserAccount(t *testing.T) {
	s := newTestServer(t)
	user := registerUser(t, s, "alice")

	req := httptest.NewRequest("DELETE", "/api/users", nil)
	req = s.asUser(req, user)
	rec := httptest.NewRecorder()
	s.handleDeleteUser(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Your account was deleted successfully.", decodeBody(t, rec)["message"])

	// The session cookie is expired.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "remember_token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)

	_, err := s.us.ByID(user.ID)
	assert.Error(t, err)
}
