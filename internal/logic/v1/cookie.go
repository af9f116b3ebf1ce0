package v1

import (
	"net/http"
	"time"
)

// DefaultCookieName is the name of the session cookie.
const DefaultCookieName = "jwt"

// SessionCookie builds and parses the session cookie.
type SessionCookie struct {
	name   string
	maxAge int
	secure bool
}

// NewSessionCookie creates a SessionCookie. maxAge should match the token
// lifetime; secure is set only in production deployments.
func NewSessionCookie(name string, maxAge time.Duration, secure bool) *SessionCookie {
	if name == "" {
		name = DefaultCookieName
	}
	return &SessionCookie{name: name, maxAge: int(maxAge.Seconds()), secure: secure}
}

// Name returns the cookie name.
func (s *SessionCookie) Name() string {
	return s.name
}

// Encode returns the cookie carrying token.
func (s *SessionCookie) Encode(token string) *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		MaxAge:   s.maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// EncodeExpired returns an empty cookie dated in the past, which makes the
// browser drop the session cookie.
func (s *SessionCookie) EncodeExpired() *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ExtractToken finds the session cookie in a raw Cookie header.
// It reports false when the header is empty or carries no non-empty session cookie.
func (s *SessionCookie) ExtractToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	r := http.Request{Header: http.Header{"Cookie": {header}}}
	c, err := r.Cookie(s.name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
