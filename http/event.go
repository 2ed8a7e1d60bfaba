package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"fritter/domain"
	"fritter/errs"
)

// eventResponse is an event shaped for the frontend. The original wire
// contract stringifies everything: ids, the long-form dates, and even the
// cancelled flag, which is rendered "true"/"false" rather than a json
// boolean. Preserved for compatibility.
type eventResponse struct {
	ID              string `json:"_id"`
	DateModified    string `json:"dateModified"`
	EventDate       string `json:"eventDate"`
	EventSubject    string `json:"eventSubject"`
	EventLocation   string `json:"eventLocation"`
	Cancelled       string `json:"cancelled"`
	AssociatedFreet string `json:"associatedFreet"`
}

func newEventResponse(event domain.EventAnnouncement) eventResponse {
	return eventResponse{
		ID:              strconv.Itoa(event.ID),
		DateModified:    formatDate(event.DateModified),
		EventDate:       formatDate(event.EventDate),
		EventSubject:    event.EventSubject,
		EventLocation:   event.EventLocation,
		Cancelled:       strconv.FormatBool(event.Cancelled),
		AssociatedFreet: strconv.Itoa(event.FreetID),
	}
}

// formatDate encodes a date as an unambiguous string,
// e.g. "November 2nd 2022, 7:05:09 pm".
func formatDate(date time.Time) string {
	return fmt.Sprintf("%s %s %d, %s",
		date.Month().String(),
		ordinal(date.Day()),
		date.Year(),
		date.Format("3:04:05 pm"))
}

// ordinal renders a day of the month with its English ordinal suffix.
func ordinal(day int) string {
	suffix := "th"
	switch day % 10 {
	case 1:
		if day%100 != 11 {
			suffix = "st"
		}
	case 2:
		if day%100 != 12 {
			suffix = "nd"
		}
	case 3:
		if day%100 != 13 {
			suffix = "rd"
		}
	}
	return strconv.Itoa(day) + suffix
}

// registerEventRoutes is a helper for registering all EventAnnouncement routes.
// Note that there is no delete route: events can only be cancelled.
func (s *Server) registerEventRoutes(r *mux.Router) {
	// Get all events, or the events of one author via ?author=.
	r.HandleFunc("/events", s.handleGetEvents).Methods("GET")

	// Create a new event announcement, together with its underlying freet.
	r.HandleFunc("/events", s.requireAuth(s.handleCreateEvent)).Methods("POST")

	// Cancel an event. Terminal; cancelling again is a no-op that succeeds.
	r.HandleFunc("/events/{eventId:[0-9]+}/cancel", s.requireAuth(s.handleCancelEvent)).Methods("PUT")
}

// handleGetEvents handles the route "GET /api/events".
// Without an author query parameter it returns all events, most recently
// modified first; with one it returns the events of that author, or 404 if
// the username is unknown.
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	var events []domain.EventAnnouncement
	var err error
	if author := r.URL.Query().Get("author"); author != "" {
		events, err = s.es.ByUsername(author)
	} else {
		events, err = s.es.All()
	}
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := make([]eventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, newEventResponse(event))
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleCreateEvent handles the route "POST /api/events".
// It creates the event and its underlying freet, with the event description
// as the freet's content and the acting user as its author.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EventDate        time.Time `json:"eventDate"`
		EventSubject     string    `json:"eventSubject"`
		EventLocation    string    `json:"eventLocation"`
		EventDescription string    `json:"eventDescription"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	user := s.getUserFromContext(r.Context())
	event := domain.EventAnnouncement{
		EventDate:     body.EventDate,
		EventSubject:  body.EventSubject,
		EventLocation: body.EventLocation,
		AuthorID:      user.ID,
	}

	if err := s.es.CreateEvent(&event, body.EventDescription); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	response := map[string]interface{}{
		"message": "Your event was created successfully.",
		"event":   newEventResponse(event),
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}

// handleCancelEvent handles the route "PUT /api/events/:eventId/cancel".
// Ordered guards: the event must exist, and it must belong to the acting
// user. Cancellation never deletes anything; the event stays in listings
// with its cancelled flag set and its modification date refreshed.
func (s *Server) handleCancelEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["eventId"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "Event with event ID %s does not exist.", mux.Vars(r)["eventId"]))
		return
	}

	event, err := s.es.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	if event.AuthorID != user.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Cannot modify other users' events."))
		return
	}

	cancelled, err := s.es.CancelEvent(event.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := map[string]interface{}{
		"message": "Your event was cancelled successfully.",
		"event":   newEventResponse(*cancelled),
	}
	if err := json.NewEncoder(w).Encode(&response); err != nil {
		errs.LogError(r, err)
		return
	}
}
