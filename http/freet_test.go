package http

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fritter/domain"
)

func TestUpdateFreet_Ownership(t *testing.T) {
	s := newTestServer(t)
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")
	freet := domain.Freet{AuthorID: alice.ID, Content: "original"}
	require.NoError(t, s.fs.CreateFreet(&freet))

	req := httptest.NewRequest("PUT", "/api/freet/"+strconv.Itoa(freet.ID), jsonBody(`{"content": "hijacked"}`))
	req = mux.SetURLVars(req, map[string]string{"freetId": strconv.Itoa(freet.ID)})
	req = s.asUser(req, bob)
	rec := httptest.NewRecorder()
	s.handleUpdateFreet(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Cannot modify other users' freets.", body["error"])

	unchanged, err := s.fs.ByID(freet.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", unchanged.Content)
}

func TestUpdateFreet_NotFound(t *testing.T) {
	s := newTestServer(t)
	alice := registerUser(t, s, "alice")

	req := httptest.NewRequest("PUT", "/api/freet/999", jsonBody(`{"content": "new"}`))
	req = mux.SetURLVars(req, map[string]string{"freetId": "999"})
	req = s.asUser(req, alice)
	rec := httptest.NewRecorder()
	s.handleUpdateFreet(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// The freet underlying an event cannot be edited or deleted on its own. The
// event overlay owns it; only cancelling the event changes anything.
func TestFreetMutation_EventAssociated(t *testing.T) {
	s := newTestServer(t)
	alice := registerUser(t, s, "alice")

	event := domain.EventAnnouncement{
		EventDate:     time.Now().Add(24 * time.Hour),
		EventSubject:  "Launch party",
		EventLocation: "The office roof",
		AuthorID:      alice.ID,
	}
	require.NoError(t, s.es.CreateEvent(&event, "details"))
	freetId := strconv.Itoa(event.FreetID)

	const guardMessage = "Cannot delete or modify a freet that is associated with an event announcement independently of the event."

	req := httptest.NewRequest("PUT", "/api/freet/"+freetId, jsonBody(`{"content": "edited"}`))
	req = mux.SetURLVars(req, map[string]string{"freetId": freetId})
	req = s.asUser(req, alice)
	rec := httptest.NewRecorder()
	s.handleUpdateFreet(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, guardMessage, decodeBody(t, rec)["error"])

	req = httptest.NewRequest("DELETE", "/api/freet/"+freetId, nil)
	req = mux.SetURLVars(req, map[string]string{"freetId": freetId})
	req = s.asUser(req, alice)
	rec = httptest.NewRecorder()
	s.handleDeleteFreet(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, guardMessage, decodeBody(t, rec)["error"])

	// The freet and the event both still exist.
	_, err := s.fs.ByID(event.FreetID)
	assert.NoError(t, err)
}

func TestDeleteFreet(t *testing.T) {
	s := newTestServer(t)
	alice := registerUser(t, s, "alice")
	freet := domain.Freet{AuthorID: alice.ID, Content: "doomed"}
	require.NoError(t, s.fs.CreateFreet(&freet))

	req := httptest.NewRequest("DELETE", "/api/freet/"+strconv.Itoa(freet.ID), nil)
	req = mux.SetURLVars(req, map[string]string{"freetId": strconv.Itoa(freet.ID)})
	req = s.asUser(req, alice)
	rec := httptest.NewRecorder()
	s.handleDeleteFreet(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Your freet was deleted successfully.", decodeBody(t, rec)["message"])
}
