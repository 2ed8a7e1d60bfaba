package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"fritter/domain"
	"fritter/errs"
)

// likeResponse is a like shaped for the frontend: ids are stringified and
// internal bookkeeping fields are stripped.
type likeResponse struct {
	ID    string `json:"_id"`
	User  string `json:"user"`
	Freet string `json:"freet"`
}

func newLikeResponse(like domain.Like) likeResponse {
	return likeResponse{
		ID:    strconv.Itoa(like.ID),
		User:  strconv.Itoa(like.UserID),
		Freet: strconv.Itoa(like.FreetID),
	}
}

// registerLikeRoutes is a helper for registering all Like routes.
// Like writes are additionally gated on reader mode: a user browsing in
// reader mode can neither like nor unlike. The gate runs last in the guard
// chain, after existence and ownership.
func (s *Server) registerLikeRoutes(r *mux.Router) {
	// Get all likes, or the likes of one user via ?username=.
	r.HandleFunc("/like", s.handleGetLikes).Methods("GET")

	// Count the likes of a single freet.
	r.HandleFunc("/like/count", s.handleCountLikes).Methods("GET")

	// Count the likes of a whole set of freets in one round trip.
	r.HandleFunc("/like/counts", s.handleCountLikesBatch).Methods("GET")

	// Create a new like for a freet (Like a freet).
	r.HandleFunc("/like", s.requireAuth(s.handleCreateLike)).Methods("POST")

	// Delete an existing like (Unlike a freet).
	r.HandleFunc("/like/{likeId:[0-9]+}", s.requireAuth(s.handleDeleteLike)).Methods("DELETE")
}

// handleGetLikes handles the route "GET /api/like".
// Without a username query parameter it returns all likes; with one it
// returns the likes of that user, or 404 if the username is unknown.
func (s *Server) handleGetLikes(w http.ResponseWriter, r *http.Request) {
	var likes []domain.Like
	var err error
	if username := r.URL.Query().Get("username"); username != "" {
		likes, err = s.ls.ByUsername(username)
	} else {
		likes, err = s.ls.All()
	}
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := make([]likeResponse, 0, len(likes))
	for _, like := range likes {
		response = append(response, newLikeResponse(like))
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleCountLikes handles the route "GET /api/like/count?freetId=".
// It returns the number of likes of a single freet. An unparseable or
// unknown freet id reads as 404.
func (s *Server) handleCountLikes(w http.ResponseWriter, r *http.Request) {
	freetIdParam := r.URL.Query().Get("freetId")
	freetId, err := strconv.Atoi(freetIdParam)
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "Freet with freet ID %s does not exist.", freetIdParam))
		return
	}

	if _, err := s.fs.ByID(freetId); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	count, err := s.ls.CountByFreet(freetId)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := map[string]int{
		"likeCount": count,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleCountLikesBatch handles the route "GET /api/like/counts?freetIds=1,2,3".
// It returns a likeCounts object keyed by freet id, with a zero entry for
// every requested freet that has no likes. This is the single round trip the
// client cache uses instead of one count request per freet.
func (s *Server) handleCountLikesBatch(w http.ResponseWriter, r *http.Request) {
	var freetIds []int
	for _, param := range strings.Split(r.URL.Query().Get("freetIds"), ",") {
		param = strings.TrimSpace(param)
		if param == "" {
			continue
		}
		freetId, err := strconv.Atoi(param)
		if err != nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid freet ID %s.", param))
			return
		}
		freetIds = append(freetIds, freetId)
	}

	counts, err := s.ls.CountByFreets(freetIds)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	likeCounts := make(map[string]int, len(counts))
	for freetId, count := range counts {
		likeCounts[strconv.Itoa(freetId)] = count
	}
	response := map[string]map[string]int{
		"likeCounts": likeCounts,
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleCreateLike handles the route "POST /api/like".
// It reads the freet ID from the json body and creates a new Like record.
// The freet's existence is checked before the reader mode gate, so liking a
// missing freet is a 404 even in reader mode. A duplicate (user, freet) pair
// is reported as a 409 with the generic message; the typed conflict never
// leaks storage details.
func (s *Server) handleCreateLike(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FreetID int `json:"freetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	if _, err := s.fs.ByID(body.FreetID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if s.blockReaderMode(w, r) {
		return
	}

	user := s.getUserFromContext(r.Context())
	like := domain.Like{
		UserID:  user.ID,
		FreetID: body.FreetID,
	}

	if err := s.ls.Create(&like); err != nil {
		if errs.ErrorCode(err) == errs.ECONFLICT {
			err = errs.Errorf(errs.ECONFLICT, "Your like was a duplicate or otherwise could not be created.")
		}
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	response := map[string]interface{}{
		"message": "Your like was created successfully.",
		"like":    newLikeResponse(like),
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleDeleteLike handles the route "DELETE /api/like/:likeId".
// Ordered guards: the like must exist, it must belong to the acting user, and
// only then does the reader mode gate run. Each failing guard terminates the
// request without touching anything.
func (s *Server) handleDeleteLike(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["likeId"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "Like with like ID %s does not exist.", mux.Vars(r)["likeId"]))
		return
	}

	like, err := s.ls.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	if like.UserID != user.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Cannot modify other users' likes."))
		return
	}

	if s.blockReaderMode(w, r) {
		return
	}

	if err := s.ls.Delete(like.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := map[string]string{
		"message": "Your like was deleted successfully.",
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}
