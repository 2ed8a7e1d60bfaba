package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"fritter/domain"
	"fritter/errs"
)

// registerFreetRoutes is a helper for registering all Freet routes.
func (s *Server) registerFreetRoutes(r *mux.Router) {
	// Get all freets, or the freets of one author via ?author=.
	r.HandleFunc("/freet", s.handleGetFreets).Methods("GET")

	// Create a new freet.
	r.HandleFunc("/freet", s.requireAuth(s.handleCreateFreet)).Methods("POST")

	// Edit an existing freet's content.
	r.HandleFunc("/freet/{freetId:[0-9]+}", s.requireAuth(s.handleUpdateFreet)).Methods("PUT")

	// Delete an existing freet.
	r.HandleFunc("/freet/{freetId:[0-9]+}", s.requireAuth(s.handleDeleteFreet)).Methods("DELETE")
}

// handleGetFreets handles the route "GET /api/freet".
// Without an author query parameter it returns all freets, newest first;
// with one it returns the freets of that author, or 404 if the username
// is unknown.
func (s *Server) handleGetFreets(w http.ResponseWriter, r *http.Request) {
	var freets []domain.Freet
	var err error
	if author := r.URL.Query().Get("author"); author != "" {
		freets, err = s.fs.ByUsername(author)
	} else {
		freets, err = s.fs.All()
	}
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(freets); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleCreateFreet handles the route "POST /api/freet".
// It reads the content from the json body and creates a new Freet record
// authored by the acting user.
func (s *Server) handleCreateFreet(w http.ResponseWriter, r *http.Request) {
	var freet domain.Freet
	if err := json.NewDecoder(r.Body).Decode(&freet); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	user := s.getUserFromContext(r.Context())
	freet.AuthorID = user.ID

	if err := s.fs.CreateFreet(&freet); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(&freet); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleUpdateFreet handles the route "PUT /api/freet/:freetId".
// Ordered guards: the freet must exist, it must belong to the acting user,
// and it must not be the underlying freet of an event announcement. Event
// freets can only change through the event itself.
func (s *Server) handleUpdateFreet(w http.ResponseWriter, r *http.Request) {
	freet, ok := s.loadOwnFreet(w, r)
	if !ok {
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	freet.Content = body.Content
	if err := s.fs.UpdateFreet(freet); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if err := json.NewEncoder(w).Encode(freet); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleDeleteFreet handles the route "DELETE /api/freet/:freetId".
// Deleting a freet cascades away every bookmark and like referencing it.
func (s *Server) handleDeleteFreet(w http.ResponseWriter, r *http.Request) {
	freet, ok := s.loadOwnFreet(w, r)
	if !ok {
		return
	}

	if err := s.fs.DeleteFreet(freet); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := map[string]string{
		"message": "Your freet was deleted successfully.",
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// loadOwnFreet runs the shared guard chain for freet mutations: the freet
// must exist, belong to the acting user, and not back an event announcement.
// It writes the error response itself and reports whether the guards passed.
func (s *Server) loadOwnFreet(w http.ResponseWriter, r *http.Request) (*domain.Freet, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["freetId"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "Freet with freet ID %s does not exist.", mux.Vars(r)["freetId"]))
		return nil, false
	}

	freet, err := s.fs.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return nil, false
	}

	user := s.getUserFromContext(r.Context())
	if freet.AuthorID != user.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Cannot modify other users' freets."))
		return nil, false
	}

	event, err := s.es.ByFreetID(freet.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return nil, false
	}
	if event != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Cannot delete or modify a freet that is associated with an event announcement independently of the event."))
		return nil, false
	}

	return freet, true
}
