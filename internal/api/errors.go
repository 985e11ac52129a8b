package api

import "errors"

// Failure kinds. Callers match them with errors.Is.
var (
	ErrTransport    = errors.New("transport failure")
	ErrMalformed    = errors.New("malformed response")
	ErrRejected     = errors.New("request rejected")
	ErrMissingToken = errors.New("no token in response")
)
