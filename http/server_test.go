package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fritter/crud"
	"fritter/domain"
)

// newTestServer builds a Server on top of a fresh in-memory database. The
// tests call the handler chains directly instead of going through the router,
// so the csrf middleware stays out of the way.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Freet{},
		&domain.Bookmark{},
		&domain.Like{},
		&domain.EventAnnouncement{},
		&domain.ReaderMode{}))

	services, err := crud.NewServices(db,
		crud.WithUser("test-pepper", "test-hmac-key"),
		crud.WithFreet(),
		crud.WithBookmark(),
		crud.WithLike(),
		crud.WithEvent(),
		crud.WithReaderMode())
	require.NoError(t, err)

	return NewServer(false, "0123456789abcdef0123456789abcdef", services)
}

// registerUser creates an account through the user service, reader mode
// record included.
func registerUser(t *testing.T, s *Server, username string) *domain.User {
	t.Helper()
	user := domain.User{Username: username, Password: "secretpassword"}
	require.NoError(t, s.us.CreateUser(context.Background(), &user))
	return &user
}

// asUser attaches the user to the request context the way the authUser
// middleware would.
func (s *Server) asUser(r *http.Request, user *domain.User) *http.Request {
	return r.WithContext(s.setUserInContext(r.Context(), user))
}

// jsonBody wraps a json string as a request body.
func jsonBody(body string) io.Reader {
	return strings.NewReader(body)
}

// decodeBody decodes a json response body into a generic map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRequireAuth_Guest(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/freet", nil)
	rec := httptest.NewRecorder()
	s.requireAuth(s.handleCreateFreet)(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "You must be logged in to complete this action.", body["error"])
}

// Reader mode only gates the like routes. A user in reader mode can still
// bookmark, and a guest is never blocked.
func TestBlockReaderMode(t *testing.T) {
	s := newTestServer(t)
	user := registerUser(t, s, "alice")
	freet := domain.Freet{AuthorID: user.ID, Content: "a freet"}
	require.NoError(t, s.fs.CreateFreet(&freet))

	_, err := s.rms.Enter(user.ID)
	require.NoError(t, err)

	likeBody := fmt.Sprintf(`{"freetId": %d}`, freet.ID)

	req := httptest.NewRequest("POST", "/api/like", jsonBody(likeBody))
	req = s.asUser(req, user)
	rec := httptest.NewRecorder()
	s.requireAuth(s.handleCreateLike)(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "This action is not possible in Reader Mode. Exit Reader Mode to continue.", body["error"])

	// Bookmarking is not public-facing and stays possible.
	req = httptest.NewRequest("POST", "/api/bookmark", jsonBody(likeBody))
	req = s.asUser(req, user)
	rec = httptest.NewRecorder()
	s.requireAuth(s.handleCreateBookmark)(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// After exiting, liking works again.
	_, err = s.rms.Exit(user.ID)
	require.NoError(t, err)

	req = httptest.NewRequest("POST", "/api/like", jsonBody(likeBody))
	req = s.asUser(req, user)
	rec = httptest.NewRecorder()
	s.requireAuth(s.handleCreateLike)(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
