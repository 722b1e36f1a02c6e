package sessions

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sketchbook/sketchbook/internal/config"
	"github.com/sketchbook/sketchbook/internal/errs"
	"github.com/sketchbook/sketchbook/internal/tokens"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testConfig(env string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "session-test-secret-32-bytes-xxxx"
	cfg.JWT.TTL = time.Hour
	cfg.Server.Environment = env
	return cfg
}

func TestIssueSetsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		env    string
		secure bool
	}{{"development", false}, {"production", true}} {
		m := NewManager(testConfig(tc.env))
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		uid := primitive.NewObjectID()
		require.NoError(t, m.Issue(c, uid))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		ck := cookies[0]
		require.Equal(t, "token", ck.Name)
		require.True(t, ck.HttpOnly)
		require.Equal(t, tc.secure, ck.Secure, tc.env)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(ck)
		got, err := m.Authenticate(req)
		require.NoError(t, err)
		require.Equal(t, uid, got)
	}
}

func TestAuthenticate_BearerFallback(t *testing.T) {
	cfg := testConfig("development")
	m := NewManager(cfg)
	uid := primitive.NewObjectID()
	tok, err := tokens.GenerateSessionToken([]byte(cfg.JWT.Secret), uid, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	got, err := m.Authenticate(req)
	require.NoError(t, err)
	require.Equal(t, uid, got)
}

func TestAuthenticate_Rejects(t *testing.T) {
	m := NewManager(testConfig("development"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := m.Authenticate(req)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})
	_, err = m.Authenticate(req)
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	expired, _ := tokens.GenerateSessionToken([]byte("session-test-secret-32-bytes-xxxx"), primitive.NewObjectID(), -time.Minute)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: expired})
	_, err = m.Authenticate(req)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}
