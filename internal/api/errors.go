package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized means the API answered 401: the admin token is missing,
	// expired or revoked.
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrTimeout      = errors.New("api: request timed out")
)

// Error is a failure the server reported itself. Message is the server's
// wording when it sent one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// Message returns the server's own message for err, or fallback when err is
// not a server error or the server sent none.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
