package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal, fully buffered HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
