package httpclient

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

const contentTypeJSON = "application/json"

// Request describes one call relative to the client's base URL.
// Build it with NewRequest or NewJSONRequest and treat it as read-only.
type Request struct {
	Method      string
	Path        string
	Headers     map[string]string
	BearerToken string
	Body        []byte
}

// NewRequest builds a body-less request.
func NewRequest(method, path string) Request {
	return Request{
		Method:  strings.ToUpper(strings.TrimSpace(method)),
		Path:    path,
		Headers: map[string]string{"Content-Type": contentTypeJSON},
	}
}

// NewJSONRequest builds a request whose body is payload serialized as JSON.
func NewJSONRequest(method, path string, payload any) (Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("marshal %s %s body: %w", method, path, err)
	}
	req := NewRequest(method, path)
	req.Body = body
	return req, nil
}

// WithBearer returns a copy of r authenticated with token.
func (r Request) WithBearer(token string) Request {
	r.Headers = maps.Clone(r.Headers)
	r.BearerToken = token
	return r
}
