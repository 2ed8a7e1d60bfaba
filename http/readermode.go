package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"fritter/errs"
)

// registerReaderModeRoutes is a helper for registering all ReaderMode routes.
func (s *Server) registerReaderModeRoutes(r *mux.Router) {
	// Enter reader mode (disable public-facing actions).
	r.HandleFunc("/readerMode/enter", s.requireAuth(s.handleEnterReaderMode)).Methods("PUT")

	// Exit reader mode.
	r.HandleFunc("/readerMode/exit", s.requireAuth(s.handleExitReaderMode)).Methods("PUT")

	// Get the acting user's reader mode status.
	r.HandleFunc("/readerMode", s.requireAuth(s.handleGetReaderMode)).Methods("GET")
}

// handleEnterReaderMode handles the route "PUT /api/readerMode/enter".
// Entering is idempotent: re-entering an already active reader mode succeeds.
func (s *Server) handleEnterReaderMode(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())
	if _, err := s.rms.Enter(user.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := map[string]string{
		"message": "Your have successfully entered Reader Mode (a safe browsing mode). Public-facing actions are disabled.",
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleExitReaderMode handles the route "PUT /api/readerMode/exit".
func (s *Server) handleExitReaderMode(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())
	if _, err := s.rms.Exit(user.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := map[string]string{
		"message": "Your have now exited Reader Mode, and have returned to the default browsing mode.",
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleGetReaderMode handles the route "GET /api/readerMode".
// Users created before the reader mode subsystem existed may have no record;
// a missing record reads as "not in reader mode" rather than an error.
func (s *Server) handleGetReaderMode(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())

	inReaderMode := false
	readerMode, err := s.rms.ByUserID(user.ID)
	if err != nil && errs.ErrorCode(err) != errs.ENOTFOUND {
		errs.ReturnError(w, r, err)
		return
	}
	if err == nil {
		inReaderMode = readerMode.InReaderMode
	}

	response := map[string]bool{
		"inReaderMode": inReaderMode,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}
