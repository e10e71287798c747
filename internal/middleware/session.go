package middleware

// session.go threads a per-session caller identity into every request.
// The identity is a random UUID wrapped in a signed HS256 token; a
// request without a valid token is given a fresh identity and the token
// is returned in the X-Session-Token response header for the client to
// replay. The reservation coordinator uses this identity as the hold
// owner, so two browser sessions can never pass for the same holder.

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TokenHeader carries the session token in both directions.
const TokenHeader = "X-Session-Token"

// tokenQueryParam lets WebSocket clients pass the token in the URL,
// since browsers cannot set headers on an upgrade request.
const tokenQueryParam = "session"

const holderKey = "holder_id"

// Session returns middleware that resolves the caller's session
// identity. An invalid or missing token is not an error: anonymous
// visitors simply get a new identity minted on the spot.
func Session(secret string, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(TokenHeader)
			if raw == "" {
				raw = c.QueryParam(tokenQueryParam)
			}
			if sub := parseSubject(raw, secret); sub != "" {
				c.Set(holderKey, sub)
				return next(c)
			}
			sub := uuid.NewString()
			token, err := mintToken(secret, sub, ttl)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to create session")
			}
			c.Response().Header().Set(TokenHeader, token)
			c.Set(holderKey, sub)
			return next(c)
		}
	}
}

// HolderID extracts the session identity placed by Session. It returns
// "" when the middleware did not run, which handlers treat as an
// internal wiring error rather than an anonymous caller.
func HolderID(c echo.Context) string {
	if v, ok := c.Get(holderKey).(string); ok {
		return v
	}
	return ""
}

// parseSubject validates the token and returns its subject, or "" when
// the token is absent, malformed, expired or signed differently.
func parseSubject(raw, secret string) string {
	if raw == "" {
		return ""
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return ""
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}

// mintToken builds and signs an HS256 session token with standard
// subject, expiration and issued-at claims.
func mintToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
