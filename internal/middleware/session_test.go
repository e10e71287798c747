package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// runSession sends one request through the Session middleware and
// returns the holder id seen by the handler plus the response recorder.
func runSession(t *testing.T, req *http.Request) (string, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var holder string
	h := Session(testSecret, time.Hour)(func(c echo.Context) error {
		holder = HolderID(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return holder, rec
}

func TestSessionMintsIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/trips", nil)
	holder, rec := runSession(t, req)

	assert.NotEmpty(t, holder)
	token := rec.Header().Get(TokenHeader)
	require.NotEmpty(t, token, "a fresh session must hand the token back")

	// The minted token resolves to the same identity it was issued for.
	assert.Equal(t, holder, parseSubject(token, testSecret))
}

func TestSessionReplaysToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/trips", nil)
	first, rec := runSession(t, req)
	token := rec.Header().Get(TokenHeader)

	replay := httptest.NewRequest(http.MethodGet, "/v1/trips", nil)
	replay.Header.Set(TokenHeader, token)
	second, rec2 := runSession(t, replay)

	assert.Equal(t, first, second, "replaying the token keeps the identity")
	assert.Empty(t, rec2.Header().Get(TokenHeader), "a valid token is not re-minted")
}

func TestSessionTokenFromQueryParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	first, rec := runSession(t, req)
	token := rec.Header().Get(TokenHeader)

	replay := httptest.NewRequest(http.MethodGet, "/ws?session="+token, nil)
	second, _ := runSession(t, replay)
	assert.Equal(t, first, second)
}

func TestSessionInvalidTokenGetsFreshIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/trips", nil)
	req.Header.Set(TokenHeader, "not-a-token")
	holder, rec := runSession(t, req)

	assert.NotEmpty(t, holder)
	assert.NotEmpty(t, rec.Header().Get(TokenHeader))
}

func TestSessionWrongSecretRejected(t *testing.T) {
	forged, err := mintToken("other-secret", "mallory", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/trips", nil)
	req.Header.Set(TokenHeader, forged)
	holder, rec := runSession(t, req)

	assert.NotEqual(t, "mallory", holder)
	assert.NotEmpty(t, rec.Header().Get(TokenHeader))
}

func TestSessionExpiredTokenRejected(t *testing.T) {
	expired, err := mintToken(testSecret, "ghost", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/trips", nil)
	req.Header.Set(TokenHeader, expired)
	holder, _ := runSession(t, req)
	assert.NotEqual(t, "ghost", holder)
}

func TestHolderIDWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, HolderID(c))
}
