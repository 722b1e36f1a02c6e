package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"sync"
	"time"

	"github.com/sketchbook/sketchbook/internal/canvas"
	"github.com/sketchbook/sketchbook/internal/drawing"
	"github.com/sketchbook/sketchbook/internal/errs"
	"github.com/sketchbook/sketchbook/pkg/logger"
)

// ErrSuperseded is returned by a navigation cancelled by a newer one.
const ErrSuperseded = errs.Error("superseded by a newer navigation")

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "token"

// Client browses and saves one user's drawings, drawing loaded images onto a
// canvas.Surface. Methods may be called from multiple goroutines; the last
// response to arrive determines CurrentID.
type Client struct {
	base *url.URL
	http *http.Client
	log  *logger.Logger

	mu        sync.Mutex
	surface   *canvas.Surface
	currentID string
	navSeq    uint64
	navCancel context.CancelFunc
}

type Option func(*Client)

// WithHTTPClient replaces the default client. Its Jar must be non-nil for
// cookie sessions to work.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken seeds the cookie jar with a previously issued session token.
func WithToken(token string) Option {
	return func(c *Client) {
		if token == "" || c.http.Jar == nil {
			return
		}
		c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: SessionCookie, Value: token, Path: "/"}})
	}
}

// WithCurrentID restores the drawing id of a previous session.
func WithCurrentID(id string) Option {
	return func(c *Client) { c.currentID = id }
}

// New returns a client for the server at baseURL (e.g. "http://localhost:4000").
func New(baseURL string, surface *canvas.Surface, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		base:    u,
		http:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
		log:     logger.Named("client"),
		surface: surface,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// CurrentID is the id of the drawing on the surface, or "" for a new one.
func (c *Client) CurrentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentID
}

// Token returns the session token held in the cookie jar, if any.
func (c *Client) Token() string {
	if c.http.Jar == nil {
		return ""
	}
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == SessionCookie {
			return ck.Value
		}
	}
	return ""
}

// WithSurface runs fn with exclusive access to the surface, so local drawing
// does not race with an image arriving from the server.
func (c *Client) WithSurface(fn func(s *canvas.Surface)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.surface)
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := c.base.ResolveReference(&url.URL{Path: path})
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Login posts the credentials; on success the session cookie is stored.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/login", nil), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return responseError(resp, errs.ErrInvalidCredentials)
	}
	c.log.Debugf("logged in as %s", username)
	return nil
}

// NewDrawing forgets the current id and clears the surface.
func (c *Client) NewDrawing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelNavLocked()
	c.currentID = ""
	c.surface.Clear()
}

// LoadAdjacent fetches the drawing before or after the current one, or the
// newest when there is no current drawing, and paints it at the origin
// without clearing. On ErrNotFound CurrentID is unchanged. Starting a new
// navigation cancels one still in flight.
func (c *Client) LoadAdjacent(ctx context.Context, dir drawing.Direction) (*drawing.Drawing, error) {
	c.mu.Lock()
	c.cancelNavLocked()
	c.navSeq++
	seq := c.navSeq
	ctx, cancel := context.WithCancel(ctx)
	c.navCancel = cancel
	q := url.Values{}
	if c.currentID != "" {
		switch dir {
		case drawing.Before:
			q.Set("beforeId", c.currentID)
		case drawing.After:
			q.Set("afterId", c.currentID)
		}
	}
	c.mu.Unlock()
	defer cancel()

	d, img, err := c.fetch(ctx, q)
	if err != nil {
		if ctx.Err() != nil && c.superseded(seq) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.navSeq {
		return nil, ErrSuperseded
	}
	c.currentID = d.ID.Hex()
	c.surface.DrawImage(img)
	c.navCancel = nil
	return d, nil
}

func (c *Client) superseded(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return seq != c.navSeq
}

func (c *Client) cancelNavLocked() {
	if c.navCancel != nil {
		c.navCancel()
		c.navCancel = nil
	}
	c.navSeq++
}

func (c *Client) fetch(ctx context.Context, q url.Values) (*drawing.Drawing, image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/drawings", q), nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, responseError(resp, nil)
	}
	var out struct {
		Data drawing.Drawing `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, fmt.Errorf("decode drawing: %w", err)
	}
	img, err := c.image(ctx, out.Data.SignedURL)
	if err != nil {
		return nil, nil, err
	}
	return &out.Data, img, nil
}

func (c *Client) image(ctx context.Context, signedURL string) (image.Image, error) {
	u, err := c.base.Parse(signedURL)
	if err != nil {
		return nil, fmt.Errorf("parse signed url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: %s", resp.Status)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Save uploads the surface as JPEG and makes the new record current.
func (c *Client) Save(ctx context.Context) (string, error) {
	var img bytes.Buffer
	c.mu.Lock()
	err := c.surface.EncodeJPEG(&img, canvas.DefaultJPEGQuality)
	c.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("encode drawing: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="drawing"; filename="drawing.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(img.Bytes()); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/drawings", nil), &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		err := responseError(resp, errs.ErrUploadFailure)
		if errors.Is(err, errs.ErrUnauthorized) || errors.Is(err, errs.ErrUploadFailure) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", errs.ErrUploadFailure, err)
	}
	var out struct {
		Data struct {
			InsertedID string `json:"insertedId"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Data.InsertedID == "" {
		return "", fmt.Errorf("%w: malformed response", errs.ErrUploadFailure)
	}

	c.mu.Lock()
	c.currentID = out.Data.InsertedID
	c.mu.Unlock()
	c.log.Debugf("saved drawing %s (%d bytes)", out.Data.InsertedID, img.Len())
	return out.Data.InsertedID, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrNetworkFailure, err)
	}
	return resp, nil
}

// responseError maps an error response to the shared taxonomy. fallback is
// used when the body carries no known code.
func responseError(resp *http.Response, fallback error) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if fallback == errs.ErrInvalidCredentials {
			return errs.ErrInvalidCredentials
		}
		return errs.ErrUnauthorized
	case http.StatusNotFound:
		return errs.ErrNotFound
	}
	var body errs.Response
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) == nil && len(body.Errors) > 0 {
		if known := errs.FromCode(body.Errors[0].Code); known != nil {
			return known
		}
	}
	if fallback != nil {
		return fmt.Errorf("%w: %s", fallback, resp.Status)
	}
	return fmt.Errorf("unexpected response: %s", resp.Status)
}
