package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is the bearer credential issued by OTP verification. It lives only
// for the current run.
type Token string

// String returns the raw token.
func (t Token) String() string { return string(t) }

// Empty reports whether no token was issued.
func (t Token) Empty() bool { return t == "" }

// Redacted returns a log-safe rendering keeping only the first and last few characters.
func (t Token) Redacted() string {
	const keep = 6
	if len(t) <= 2*keep {
		return "***"
	}
	return string(t[:keep]) + "..." + string(t[len(t)-keep:])
}

// Claims is the subset of JWT claims worth printing.
type Claims struct {
	Subject   string    `json:"subject,omitempty"`
	Role      string    `json:"role,omitempty"`
	UserID    any       `json:"user_id,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// ErrNotJWT is returned by Inspect when the token is not a decodable JWT.
var ErrNotJWT = errors.New("token is not a JWT")

// Inspect decodes the token's claims without verifying the signature. The
// harness never holds the signing key; the claims are for display only.
func (t Token) Inspect() (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(string(t), mc); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrNotJWT, err)
	}

	var c Claims
	c.Subject, _ = mc.GetSubject()
	if c.Subject == "" {
		c.Subject, _ = mc["email"].(string)
	}
	c.Role, _ = mc["role"].(string)
	if id, ok := mc["userId"]; ok {
		c.UserID = id
	} else if id, ok := mc["user_id"]; ok {
		c.UserID = id
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.UTC()
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.UTC()
	}
	return c, nil
}
