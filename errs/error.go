package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Application error codes. They map one-to-one onto an HTTP status code, but
// are kept transport-agnostic so the crud layer never imports net/http.
const (
	// ECONFLICT is returned when a create collides with an existing record,
	// e.g. a second bookmark for the same (user, freet) pair.
	ECONFLICT = "conflict"
	// EINTERNAL is the catch-all for unexpected failures.
	EINTERNAL = "internal"
	// EINVALID is returned for malformed or missing input.
	EINVALID = "invalid"
	// ENOTFOUND is returned when an id or username does not resolve.
	ENOTFOUND = "not_found"
	// EUNAUTHORIZED is returned when there is no session, when the session's
	// user is not the owner of the target record, or when a domain gate
	// (reader mode, event association) refuses the action.
	EUNAUTHORIZED = "unauthorized"
)

// Error is an application error with a machine-readable code and a
// human-readable message safe to show to the end user.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("fritter error: code=%s message=%s", e.Code, e.Message)
}

// Errorf builds an *Error from a code and a format string.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode extracts the code of any error. Non-application errors
// report EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage extracts the user-facing message of any error. Non-application
// errors get a generic message so internals never leak to the client.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// codes maps application error codes onto HTTP status codes. Note that
// EUNAUTHORIZED maps to 403: the API treats "no session" and "wrong owner"
// alike, following the original wire contract.
var codes = map[string]int{
	ECONFLICT:     http.StatusConflict,
	EINVALID:      http.StatusBadRequest,
	ENOTFOUND:     http.StatusNotFound,
	EUNAUTHORIZED: http.StatusForbidden,
	EINTERNAL:     http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// ReturnError writes an error response as json. Internal errors are logged
// before being masked with a generic message.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.WriteHeader(ErrorStatusCode(code))
	json.NewEncoder(w).Encode(&errorResponse{Error: message})
}

type errorResponse struct {
	Error string `json:"error"`
}

// LogError logs an error together with the request it occurred on.
func LogError(r *http.Request, err error) {
	logrus.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error(err)
}
