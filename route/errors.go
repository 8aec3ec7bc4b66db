package route

import (
	"net/http"

	"github.com/go-chi/render"
)

var (
	ErrUnauthorized = newError(http.StatusUnauthorized, "Unauthorized")
	ErrBadRequest   = newError(http.StatusBadRequest, "Bad request")
	ErrNotFound     = newError(http.StatusNotFound, "Resource not found")
)

type HTTPError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

func newError(status int, msg string) *HTTPError {
	return &HTTPError{Status: status, Message: msg}
}

func badRequest(msg string) *HTTPError {
	return newError(http.StatusBadRequest, msg)
}

func sendError(w http.ResponseWriter, r *http.Request, err error) {
	httpErr, ok := err.(*HTTPError)
	if !ok {
		httpErr = newError(http.StatusInternalServerError, err.Error())
	}
	render.Status(r, httpErr.Status)
	render.JSON(w, r, httpErr)
}
