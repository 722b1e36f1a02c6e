package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sketchbook/sketchbook/internal/errs"
	"github.com/sketchbook/sketchbook/internal/sessions"
	"github.com/sketchbook/sketchbook/internal/users"
	"github.com/sketchbook/sketchbook/pkg/logger"
	"github.com/sketchbook/sketchbook/pkg/metrics"
	"github.com/sketchbook/sketchbook/pkg/middleware"
)

// LoginRequest is the password login body. Username may also be an email.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	usersSvc *users.Service
	sessions *sessions.Manager
	log      *logger.Logger
}

func NewAuthHandler(u *users.Service, s *sessions.Manager) *AuthHandler {
	return &AuthHandler{usersSvc: u, sessions: s, log: logger.Named("auth")}
}

// Register mounts /login and /logout.
func (h *AuthHandler) Register(rg gin.IRouter) {
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
}

// Login verifies credentials and sets the session cookie. Every credential
// failure produces the same 401 body.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		errs.Abort(c, http.StatusUnauthorized, errs.ErrInvalidCredentials)
		return
	}

	u, err := h.usersSvc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues("invalid").Inc()
			errs.Abort(c, http.StatusUnauthorized, errs.ErrInvalidCredentials)
			return
		}
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		h.log.Errorf("authenticate [%s]: %v", middleware.GetRequestID(c), err)
		errs.Abort(c, http.StatusInternalServerError, err)
		return
	}

	if err := h.sessions.Issue(c, u.ID); err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		h.log.Errorf("issue session for %s [%s]: %v", u.ID.Hex(), middleware.GetRequestID(c), err)
		errs.Abort(c, http.StatusInternalServerError, err)
		return
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	h.log.Infof("user %s logged in", u.Username)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout clears the cookie. Tokens already handed out stay valid until expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
