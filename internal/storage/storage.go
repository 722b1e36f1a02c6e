package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// BlobStore holds raw drawing images. Keys are opaque to callers; SignedURL
// grants temporary read access without exposing credentials.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// NewKey returns a unique, time-prefixed object key such as
// "1700000000000-3f9a0c1d.jpg".
func NewKey(now time.Time, ext string) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is fatal elsewhere too; fall back to the clock
		return fmt.Sprintf("%d-%d%s", now.UnixMilli(), now.UnixNano(), ext)
	}
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), hex.EncodeToString(b), ext)
}
