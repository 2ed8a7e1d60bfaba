package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"fritter/domain"
	"fritter/errs"
)

// bookmarkResponse is a bookmark shaped for the frontend: ids are
// stringified and internal bookkeeping fields are stripped.
type bookmarkResponse struct {
	ID    string `json:"_id"`
	User  string `json:"user"`
	Freet string `json:"freet"`
}

func newBookmarkResponse(bookmark domain.Bookmark) bookmarkResponse {
	return bookmarkResponse{
		ID:    strconv.Itoa(bookmark.ID),
		User:  strconv.Itoa(bookmark.UserID),
		Freet: strconv.Itoa(bookmark.FreetID),
	}
}

// registerBookmarkRoutes is a helper for registering all Bookmark routes.
func (s *Server) registerBookmarkRoutes(r *mux.Router) {
	// Get all bookmarks, or the bookmarks of one user via ?username=.
	r.HandleFunc("/bookmark", s.handleGetBookmarks).Methods("GET")

	// Create a new bookmark for a freet.
	r.HandleFunc("/bookmark", s.requireAuth(s.handleCreateBookmark)).Methods("POST")

	// Delete an existing bookmark. Non-numeric ids don't match the route
	// and read as 404, like any other unresolvable resource.
	r.HandleFunc("/bookmark/{bookmarkId:[0-9]+}", s.requireAuth(s.handleDeleteBookmark)).Methods("DELETE")
}

// handleGetBookmarks handles the route "GET /api/bookmark".
// Without a username query parameter it returns all bookmarks; with one it
// returns the bookmarks of that user, or 404 if the username is unknown.
func (s *Server) handleGetBookmarks(w http.ResponseWriter, r *http.Request) {
	var bookmarks []domain.Bookmark
	var err error
	if username := r.URL.Query().Get("username"); username != "" {
		bookmarks, err = s.bs.ByUsername(username)
	} else {
		bookmarks, err = s.bs.All()
	}
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := make([]bookmarkResponse, 0, len(bookmarks))
	for _, bookmark := range bookmarks {
		response = append(response, newBookmarkResponse(bookmark))
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleCreateBookmark handles the route "POST /api/bookmark".
// It reads the freet ID from the json body and creates a new Bookmark record.
// A duplicate (user, freet) pair is reported as a 409 with the generic
// message; the typed conflict never leaks storage details.
func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FreetID int `json:"freetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	user := s.getUserFromContext(r.Context())
	bookmark := domain.Bookmark{
		UserID:  user.ID,
		FreetID: body.FreetID,
	}

	if err := s.bs.Create(&bookmark); err != nil {
		if errs.ErrorCode(err) == errs.ECONFLICT {
			err = errs.Errorf(errs.ECONFLICT, "Your bookmark was a duplicate or otherwise could not be created.")
		}
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	response := map[string]interface{}{
		"message":  "Your bookmark was created successfully.",
		"bookmark": newBookmarkResponse(bookmark),
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleDeleteBookmark handles the route "DELETE /api/bookmark/:bookmarkId".
// Ordered guards: the bookmark must exist, and it must belong to the acting
// user. Each failing guard terminates the request without touching anything.
func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["bookmarkId"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "Bookmark with bookmark ID %s does not exist.", mux.Vars(r)["bookmarkId"]))
		return
	}

	bookmark, err := s.bs.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	if bookmark.UserID != user.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Cannot modify other users' bookmarks."))
		return
	}

	if err := s.bs.Delete(bookmark.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := map[string]string{
		"message": "Your bookmark was deleted successfully.",
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}
