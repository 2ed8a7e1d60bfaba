package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"fritter/crud"
	"fritter/domain"
	"fritter/errs"
)

// Server provides most of the http functionality of this app, namely routing,
// request handling, and middleware. It also performs authentication and
// authorization before handing things over to one of the crud services.
type Server struct {
	router *mux.Router
	us domain.UserService
	fs domain.FreetService
	bs domain.BookmarkService
	ls domain.LikeService
	es domain.EventService
	rms domain.ReaderModeService
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(isProd bool, csrfKey string, services *crud.Services) *Server {
	// Construct a new Server with a gorilla router and the services passed in.
	s := &Server{
		router: mux.NewRouter(),
		us:  services.User,
		fs:  services.Freet,
		bs:  services.Bookmark,
		ls:  services.Like,
		es:  services.Event,
		rms: services.ReaderMode,
	}

	// All routes live under /api.
	api := s.router.PathPrefix("/api").Subrouter()

	// Register routes of the auth system.
	s.registerAuthRoutes(api)
	s.registerUserRoutes(api)

	// Register routes of the crud system.
	s.registerFreetRoutes(api)
	s.registerBookmarkRoutes(api)
	s.registerLikeRoutes(api)
	s.registerEventRoutes(api)
	s.registerReaderModeRoutes(api)

	// Set up middleware that needs to run on every request.
	csrfMw := csrf.Protect([]byte(csrfKey), csrf.Secure(isProd), csrf.Path("/"))
	s.router.Use(csrfMw, setContentTypeJSON, s.authUser)
	return s
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requireAuth refuses the request with a 403 if no user could be identified
// from the session cookie.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.getUserFromContext(r.Context())
		if user == nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You must be logged in to complete this action."))
			return
		}
		next.ServeHTTP(w, r)
	}
}

// blockReaderMode refuses the request if the acting user is browsing in
// reader mode, writing the refusal itself, and reports whether the request
// was blocked. Handlers call it after their existence and ownership guards,
// so an unresolvable target reads as 404 even in reader mode. Guests are
// never blocked, and a user without a reader mode record counts as not being
// in reader mode.
func (s *Server) blockReaderMode(w http.ResponseWriter, r *http.Request) bool {
	user := s.getUserFromContext(r.Context())
	if user == nil {
		return false
	}
	readerMode, err := s.rms.ByUserID(user.ID)
	if err != nil && errs.ErrorCode(err) != errs.ENOTFOUND {
		errs.ReturnError(w, r, err)
		return true
	}
	if err == nil && readerMode.InReaderMode {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "This action is not possible in Reader Mode. Exit Reader Mode to continue."))
		return true
	}
	return false
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	logrus.Fatal(http.ListenAndServe("localhost:"+strconv.Itoa(port), s.router))
}
