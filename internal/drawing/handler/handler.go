package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/sketchbook/sketchbook/internal/drawing"
	"github.com/sketchbook/sketchbook/internal/drawing/service"
	"github.com/sketchbook/sketchbook/internal/errs"
	"github.com/sketchbook/sketchbook/pkg/logger"
	"github.com/sketchbook/sketchbook/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormField is the multipart field carrying the image on save.
const FormField = "drawing"

// DefaultMaxBytes caps the upload body when no limit is configured.
const DefaultMaxBytes = 10 << 20

type Handler struct {
	svc      *service.Service
	maxBytes int64
	log      *logger.Logger
}

func New(svc *service.Service, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Handler{svc: svc, maxBytes: maxBytes, log: logger.Named("drawings")}
}

// RegisterDrawingRoutes mounts the drawing endpoints behind the given
// middleware (session first, then anything keyed on the user).
func RegisterDrawingRoutes(r gin.IRouter, h *Handler, mw ...gin.HandlerFunc) {
	g := r.Group("/drawings", mw...)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Save)
}

// List returns the caller's newest drawing, or the neighbour of beforeId/afterId.
func (h *Handler) List(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		errs.Abort(c, http.StatusUnauthorized, errs.ErrUnauthorized)
		return
	}
	cur, err := drawing.ParseCursor(c.Query("beforeId"), c.Query("afterId"))
	if err != nil {
		errs.Abort(c, http.StatusBadRequest, errs.ErrInvalidCursor)
		return
	}
	d, err := h.svc.Adjacent(c.Request.Context(), uid, cur)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": d})
}

func (h *Handler) Get(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		errs.Abort(c, http.StatusUnauthorized, errs.ErrUnauthorized)
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		errs.Abort(c, http.StatusNotFound, errs.ErrNotFound)
		return
	}
	d, err := h.svc.Get(c.Request.Context(), uid, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": d})
}

// Save accepts a multipart upload with the image in the "drawing" field.
func (h *Handler) Save(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		errs.Abort(c, http.StatusUnauthorized, errs.ErrUnauthorized)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	fh, err := c.FormFile(FormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errs.Abort(c, http.StatusRequestEntityTooLarge, errs.ErrUploadFailure)
			return
		}
		h.log.Warnf("parse upload [%s]: %v", middleware.GetRequestID(c), err)
		errs.Abort(c, http.StatusBadRequest, errs.ErrUploadFailure)
		return
	}
	f, err := fh.Open()
	if err != nil {
		errs.Abort(c, http.StatusBadRequest, errs.ErrUploadFailure)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		errs.Abort(c, http.StatusBadRequest, errs.ErrUploadFailure)
		return
	}

	// trust the bytes, not the part header
	mt := mimetype.Detect(data)
	if !service.Allowed(mt.String()) {
		errs.Abort(c, http.StatusBadRequest, errs.ErrInvalidUpload)
		return
	}

	id, err := h.svc.Save(c.Request.Context(), uid, bytes.NewReader(data), int64(len(data)), mt.String())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"insertedId": id}})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		errs.Abort(c, http.StatusNotFound, errs.ErrNotFound)
	case errors.Is(err, errs.ErrInvalidUpload):
		errs.Abort(c, http.StatusBadRequest, errs.ErrInvalidUpload)
	case errors.Is(err, errs.ErrUploadFailure):
		errs.Abort(c, http.StatusInternalServerError, errs.ErrUploadFailure)
	default:
		h.log.Errorf("%s %s [%s]: %v", c.Request.Method, c.FullPath(), middleware.GetRequestID(c), err)
		errs.Abort(c, http.StatusInternalServerError, err)
	}
}
