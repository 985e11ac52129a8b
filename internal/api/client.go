package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/techwiz-hq/api-smoke-harness/internal/logger"
	"github.com/techwiz-hq/api-smoke-harness/internal/session"
	"github.com/techwiz-hq/api-smoke-harness/pkg/httpclient"
)

// Client wraps the profile service endpoints with typed requests and envelopes.
type Client struct {
	http httpclient.Client
	log  logger.Logger
}

// NewClient builds a Client over the given transport.
func NewClient(h httpclient.Client, log logger.Logger) *Client {
	return &Client{http: h, log: logger.Ensure(log)}
}

// UpdateAvatar issues PUT /user/avatar and returns the raw response.
func (c *Client) UpdateAvatar(ctx context.Context, token, imageURL string) (httpclient.Response, error) {
	req, err := httpclient.NewJSONRequest(http.MethodPut, PathAvatar, AvatarUpdate{ProfileImageURL: imageURL})
	if err != nil {
		return nil, err
	}
	return c.send(ctx, req.WithBearer(token))
}

// Register issues POST /auth/register. A response whose success flag is not
// true yields ErrRejected alongside the decoded envelope.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (Envelope, error) {
	req, err := httpclient.NewJSONRequest(http.MethodPost, PathRegister, in)
	if err != nil {
		return Envelope{}, err
	}
	env, err := c.call(ctx, req)
	if err != nil {
		return env, err
	}
	if !env.Succeeded() {
		return env, fmt.Errorf("%w: register: %s", ErrRejected, messageOr(env, "success flag not set"))
	}
	return env, nil
}

// VerifyOTP issues POST /auth/verify-otp and extracts the session token.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (session.Token, Envelope, error) {
	req, err := httpclient.NewJSONRequest(http.MethodPost, PathVerifyOTP, VerifyOTPRequest{
		Email:   email,
		OTP:     otp,
		Purpose: PurposeRegistration,
	})
	if err != nil {
		return "", Envelope{}, err
	}
	env, err := c.call(ctx, req)
	if err != nil {
		return "", env, err
	}

	token := extractToken(env.Data)
	if token.Empty() {
		if env.Failed() {
			return "", env, fmt.Errorf("%w: verify-otp: %w: %s", ErrMissingToken, ErrRejected, messageOr(env, "success=false"))
		}
		return "", env, fmt.Errorf("%w: verify-otp: data.token absent", ErrMissingToken)
	}
	return token, env, nil
}

// GetProfile issues GET /profile/{role} as the token holder.
func (c *Client) GetProfile(ctx context.Context, token session.Token, role string) (Envelope, error) {
	role = strings.Trim(strings.TrimSpace(role), "/")
	req := httpclient.NewRequest(http.MethodGet, PathProfilePrefix+role).WithBearer(token.String())
	return c.call(ctx, req)
}

// UpdateShelterProfile issues PUT /profile/shelter as the token holder.
func (c *Client) UpdateShelterProfile(ctx context.Context, token session.Token, in ShelterProfile) (Envelope, error) {
	req, err := httpclient.NewJSONRequest(http.MethodPut, PathShelterUpdate, in)
	if err != nil {
		return Envelope{}, err
	}
	return c.call(ctx, req.WithBearer(token.String()))
}

// call sends req and decodes the JSON envelope regardless of status code;
// the backend reports failures inside the envelope.
func (c *Client) call(ctx context.Context, req httpclient.Request) (Envelope, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return Envelope{}, err
	}

	var env Envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %s %s status %d: %s", ErrMalformed, req.Method, req.Path, resp.StatusCode(), httpclient.Summary(resp))
	}
	c.log.DebugObj("response decoded", "response_meta", map[string]any{
		"method": req.Method,
		"path":   req.Path,
		"status": resp.StatusCode(),
	})
	return env, nil
}

func (c *Client) send(ctx context.Context, req httpclient.Request) (httpclient.Response, error) {
	c.log.DebugObj("request sending", "request_meta", map[string]any{
		"method":     req.Method,
		"path":       req.Path,
		"body_bytes": len(req.Body),
		"has_bearer": req.BearerToken != "",
	})
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.Path, err)
	}
	return resp, nil
}

// extractToken reads data.token, or data itself when the server returns the
// JWT as a bare string. A numeric token is taken as its literal text; null,
// false, objects, "" and 0 count as missing.
func extractToken(data json.RawMessage) session.Token {
	if len(data) == 0 {
		return ""
	}
	var wrapped struct {
		Token json.RawMessage `json:"token"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		return tokenValue(wrapped.Token)
	}
	return tokenValue(data)
}

func tokenValue(raw json.RawMessage) session.Token {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return session.Token(strings.TrimSpace(s))
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	if f, err := n.Float64(); err != nil || f == 0 {
		return ""
	}
	return session.Token(n.String())
}

func messageOr(env Envelope, fallback string) string {
	if msg := strings.TrimSpace(env.Message); msg != "" {
		return msg
	}
	return fallback
}
