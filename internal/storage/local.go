package storage

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type localObject struct {
	data        []byte
	contentType string
}

// LocalStorage keeps blobs in memory and serves them through its own signed
// URLs. Used when no MinIO endpoint is configured, and in tests.
type LocalStorage struct {
	mu      sync.RWMutex
	objects map[string]localObject
	baseURL string
	secret  []byte
	now     func() time.Time
}

// NewLocalStorage returns a store whose signed URLs point at baseURL, which
// must route to Handler (e.g. "http://localhost:4000/blobs").
func NewLocalStorage(baseURL string, secret []byte) *LocalStorage {
	return &LocalStorage{
		objects: map[string]localObject{},
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		now:     time.Now,
	}
}

func (s *LocalStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return fmt.Errorf("read blob %s: %w", key, err)
	}
	if size >= 0 && n != size {
		return fmt.Errorf("read blob %s: got %d bytes, want %d", key, n, size)
	}
	s.mu.Lock()
	s.objects[key] = localObject{data: buf.Bytes(), contentType: contentType}
	s.mu.Unlock()
	return nil
}

func (s *LocalStorage) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%d", key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *LocalStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("blob %s not found", key)
	}
	expires := s.now().Add(ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", s.sign(key, expires))
	return s.baseURL + "/" + url.PathEscape(key) + "?" + q.Encode(), nil
}

// Verify checks a signature produced by SignedURL.
func (s *LocalStorage) Verify(key, expires, signature string) bool {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || s.now().Unix() > exp {
		return false
	}
	want := s.sign(key, exp)
	return hmac.Equal([]byte(want), []byte(signature))
}

// Handler serves GET <base>/*key for signed URLs.
func (s *LocalStorage) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		if !s.Verify(key, c.Query("expires"), c.Query("signature")) {
			c.Status(http.StatusForbidden)
			return
		}
		s.mu.RLock()
		obj, ok := s.objects[key]
		s.mu.RUnlock()
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, obj.contentType, obj.data)
	}
}

// Len reports the number of stored blobs.
func (s *LocalStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
