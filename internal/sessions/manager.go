package sessions

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sketchbook/sketchbook/internal/config"
	"github.com/sketchbook/sketchbook/internal/errs"
	"github.com/sketchbook/sketchbook/internal/tokens"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Manager issues and reads stateless session cookies. Validity is decided by
// the token signature and expiry alone; there is no server-side store.
type Manager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
}

func NewManager(cfg *config.Config) *Manager {
	name := cfg.JWT.CookieName
	if name == "" {
		name = "token"
	}
	return &Manager{
		secret:     []byte(cfg.JWT.Secret),
		ttl:        cfg.JWT.TTL,
		cookieName: name,
		secure:     cfg.Server.Production(),
	}
}

// CookieName is the name of the session cookie.
func (m *Manager) CookieName() string { return m.cookieName }

// Issue signs a token for userID and sets it as an httpOnly cookie.
func (m *Manager) Issue(c *gin.Context, userID primitive.ObjectID) error {
	tok, err := tokens.GenerateSessionToken(m.secret, userID, m.ttl)
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie in the browser.
func (m *Manager) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Authenticate returns the user id carried by the request's session cookie,
// or by an "Authorization: Bearer" header for non-browser clients.
func (m *Manager) Authenticate(r *http.Request) (primitive.ObjectID, error) {
	raw := ""
	if ck, err := r.Cookie(m.cookieName); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			raw = strings.TrimSpace(parts[1])
		}
	}
	if raw == "" {
		return primitive.NilObjectID, errs.ErrUnauthorized
	}
	id, err := tokens.ParseSessionToken(m.secret, raw)
	if err != nil {
		return primitive.NilObjectID, errs.ErrUnauthorized
	}
	return id, nil
}
