package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"fritter/errs"
)

// registerUserRoutes is a helper for registering all User routes.
func (s *Server) registerUserRoutes(r *mux.Router) {
	// Delete the acting user's account, along with everything it owns.
	r.HandleFunc("/users", s.requireAuth(s.handleDeleteUser)).Methods("DELETE")
}

// handleDeleteUser handles the route "DELETE /api/users".
// It deletes the acting user's account. The crud layer cascades the deletion
// to the user's freets, bookmarks, likes, events and reader mode record in
// one transaction, and the session cookie is expired.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())

	if err := s.us.DeleteUser(r.Context(), user.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	cookie := http.Cookie{
		Name:     "remember_token",
		Value:    "",
		Expires:  time.Now(),
		HttpOnly: true,
	}
	http.SetCookie(w, &cookie)

	response := map[string]string{
		"message": "Your account was deleted successfully.",
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}
