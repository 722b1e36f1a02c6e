package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sketchbook/sketchbook/internal/errs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserIDKey is the gin context key holding the authenticated user's ObjectID.
const UserIDKey = "userID"

// Authenticator is the minimal interface the middleware depends on.
type Authenticator interface {
	Authenticate(r *http.Request) (primitive.ObjectID, error)
}

// SessionMiddleware rejects requests without a valid session with 401 before
// any downstream handler runs.
func SessionMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := auth.Authenticate(c.Request)
		if err != nil || uid.IsZero() {
			errs.Abort(c, http.StatusUnauthorized, errs.ErrUnauthorized)
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

// UserID returns the user set by SessionMiddleware.
func UserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	uid, ok := v.(primitive.ObjectID)
	return uid, ok
}

// rateKey picks the limiter key: the authenticated user when present,
// otherwise the client IP.
func rateKey(c *gin.Context) string {
	if uid, ok := UserID(c); ok {
		return "user:" + uid.Hex()
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
