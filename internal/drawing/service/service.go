package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sketchbook/sketchbook/internal/drawing"
	"github.com/sketchbook/sketchbook/internal/drawing/repository"
	"github.com/sketchbook/sketchbook/internal/errs"
	"github.com/sketchbook/sketchbook/internal/storage"
	"github.com/sketchbook/sketchbook/pkg/logger"
	"github.com/sketchbook/sketchbook/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultURLTTL is how long a signed image URL stays valid.
const DefaultURLTTL = 5 * time.Minute

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Allowed reports whether contentType may be stored as a drawing.
func Allowed(contentType string) bool {
	_, ok := extensions[contentType]
	return ok
}

// Service implements saving and browsing a user's drawings on top of a
// metadata repository and a blob store.
type Service struct {
	repo   repository.Repository
	blobs  storage.BlobStore
	urlTTL time.Duration
	now    func() time.Time
	log    *logger.Logger
}

func New(repo repository.Repository, blobs storage.BlobStore, urlTTL time.Duration) *Service {
	if urlTTL <= 0 {
		urlTTL = DefaultURLTTL
	}
	return &Service{
		repo:   repo,
		blobs:  blobs,
		urlTTL: urlTTL,
		now:    time.Now,
		log:    logger.Named("drawings"),
	}
}

// Save stores the image under a fresh key and records it for userID.
// The returned id is greater than every id previously issued by this process.
func (s *Service) Save(ctx context.Context, userID primitive.ObjectID, r io.Reader, size int64, contentType string) (primitive.ObjectID, error) {
	ext, ok := extensions[contentType]
	if !ok {
		metrics.DrawingsSaved.WithLabelValues("failure").Inc()
		return primitive.NilObjectID, errs.ErrInvalidUpload
	}
	now := s.now().UTC()
	key := storage.NewKey(now, ext)
	if err := s.blobs.Put(ctx, key, r, size, contentType); err != nil {
		metrics.DrawingsSaved.WithLabelValues("failure").Inc()
		s.log.Errorf("put blob %s for user %s: %v", key, userID.Hex(), err)
		return primitive.NilObjectID, fmt.Errorf("%w: %v", errs.ErrUploadFailure, err)
	}

	d := &drawing.Drawing{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Type:      drawing.TypeDrawing,
		Key:       key,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, d); err != nil {
		// the blob stays orphaned; nothing references it
		metrics.DrawingsSaved.WithLabelValues("failure").Inc()
		s.log.Errorf("insert drawing for user %s: %v", userID.Hex(), err)
		return primitive.NilObjectID, fmt.Errorf("%w: %v", errs.ErrUploadFailure, err)
	}
	metrics.DrawingsSaved.WithLabelValues("success").Inc()
	s.log.Debugf("saved drawing %s key=%s", d.ID.Hex(), key)
	return d.ID, nil
}

// Adjacent returns the caller's drawing next to cur, decorated with a signed URL.
func (s *Service) Adjacent(ctx context.Context, userID primitive.ObjectID, cur drawing.Cursor) (*drawing.Drawing, error) {
	d, err := s.repo.FindAdjacent(ctx, userID, cur)
	return s.decorate(ctx, cur.Direction.String(), d, err)
}

// Get returns one of the caller's drawings by id.
func (s *Service) Get(ctx context.Context, userID, id primitive.ObjectID) (*drawing.Drawing, error) {
	d, err := s.repo.FindByID(ctx, userID, id)
	return s.decorate(ctx, "id", d, err)
}

func (s *Service) decorate(ctx context.Context, direction string, d *drawing.Drawing, err error) (*drawing.Drawing, error) {
	if err != nil {
		metrics.DrawingLookups.WithLabelValues(direction, "error").Inc()
		return nil, fmt.Errorf("find drawing: %w", err)
	}
	if d == nil {
		metrics.DrawingLookups.WithLabelValues(direction, "not_found").Inc()
		return nil, errs.ErrNotFound
	}
	u, err := s.blobs.SignedURL(ctx, d.Key, s.urlTTL)
	if err != nil {
		metrics.DrawingLookups.WithLabelValues(direction, "error").Inc()
		return nil, fmt.Errorf("sign url for %s: %w", d.Key, err)
	}
	d.SignedURL = u
	metrics.DrawingLookups.WithLabelValues(direction, "found").Inc()
	return d, nil
}
