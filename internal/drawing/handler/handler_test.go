package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sketchbook/sketchbook/internal/config"
	"github.com/sketchbook/sketchbook/internal/drawing/repository"
	"github.com/sketchbook/sketchbook/internal/drawing/service"
	"github.com/sketchbook/sketchbook/internal/sessions"
	"github.com/sketchbook/sketchbook/internal/storage"
	"github.com/sketchbook/sketchbook/internal/tokens"
	"github.com/sketchbook/sketchbook/pkg/middleware"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "drawing-handler-secret-0123456789"

type testApp struct {
	g     *gin.Engine
	repo  *repository.MemoryRepo
	blobs *storage.LocalStorage
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.JWT.TTL = time.Hour

	repo := repository.NewMemoryRepo()
	blobs := storage.NewLocalStorage("http://example.test/blobs", []byte("blob-secret"))
	svc := service.New(repo, blobs, 5*time.Minute)

	g := gin.New()
	g.GET("/blobs/*key", blobs.Handler())
	RegisterDrawingRoutes(g, New(svc, 1<<20), middleware.SessionMiddleware(sessions.NewManager(cfg)))
	return &testApp{g: g, repo: repo, blobs: blobs}
}

func bearer(t *testing.T, uid primitive.ObjectID) string {
	t.Helper()
	tok, err := tokens.GenerateSessionToken([]byte(testSecret), uid, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(3, 3, color.Black)
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "drawing.jpg")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/drawings", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (a *testApp) do(req *http.Request, auth string) *httptest.ResponseRecorder {
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	a.g.ServeHTTP(w, req)
	return w
}

func (a *testApp) save(t *testing.T, auth string) string {
	t.Helper()
	w := a.do(uploadRequest(t, FormField, jpegBytes(t)), auth)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			InsertedID string `json:"insertedId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.InsertedID, 24)
	return resp.Data.InsertedID
}

type listResponse struct {
	Data struct {
		ID        string `json:"_id"`
		UserID    string `json:"userId"`
		Type      string `json:"type"`
		Key       string `json:"key"`
		SignedURL string `json:"signedUrl"`
	} `json:"data"`
}

func (a *testApp) list(t *testing.T, auth, query string) (int, listResponse) {
	t.Helper()
	w := a.do(httptest.NewRequest(http.MethodGet, "/drawings"+query, nil), auth)
	var resp listResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func TestDrawings_RequireSession(t *testing.T) {
	app := newTestApp(t)
	expired, err := tokens.GenerateSessionToken([]byte(testSecret), primitive.NewObjectID(), -time.Minute)
	require.NoError(t, err)
	forged, err := tokens.GenerateSessionToken([]byte("another-secret-entirely-0123456789"), primitive.NewObjectID(), time.Hour)
	require.NoError(t, err)

	for _, auth := range []string{"", "Bearer junk", "Bearer " + expired, "Bearer " + forged} {
		reqs := []*http.Request{
			httptest.NewRequest(http.MethodGet, "/drawings", nil),
			httptest.NewRequest(http.MethodGet, "/drawings/"+primitive.NewObjectID().Hex(), nil),
			uploadRequest(t, FormField, jpegBytes(t)),
		}
		for _, req := range reqs {
			w := app.do(req, auth)
			require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", req.Method, req.URL)
			require.JSONEq(t, `{"errors":[{"code":"unauthorized","message":"unauthorized"}]}`, w.Body.String())
		}
	}
	require.Zero(t, app.repo.Len())
	require.Zero(t, app.blobs.Len())
}

func TestDrawings_SaveAndBrowse(t *testing.T) {
	app := newTestApp(t)
	uid := primitive.NewObjectID()
	auth := bearer(t, uid)

	code, _ := app.list(t, auth, "")
	require.Equal(t, http.StatusNotFound, code)

	ids := []string{app.save(t, auth), app.save(t, auth), app.save(t, auth)}
	require.Less(t, ids[0], ids[1])
	require.Less(t, ids[1], ids[2])

	code, latest := app.list(t, auth, "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, ids[2], latest.Data.ID)
	require.Equal(t, uid.Hex(), latest.Data.UserID)
	require.Equal(t, "drawing", latest.Data.Type)
	require.NotEmpty(t, latest.Data.SignedURL)

	code, prev := app.list(t, auth, "?beforeId="+ids[2])
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, ids[1], prev.Data.ID)

	code, next := app.list(t, auth, "?afterId="+ids[0])
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, ids[1], next.Data.ID)

	code, _ = app.list(t, auth, "?beforeId="+ids[0])
	require.Equal(t, http.StatusNotFound, code)
	code, _ = app.list(t, auth, "?afterId="+ids[2])
	require.Equal(t, http.StatusNotFound, code)

	// beforeId wins when both are given
	code, both := app.list(t, auth, "?beforeId="+ids[1]+"&afterId="+ids[1])
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, ids[0], both.Data.ID)
}

func TestDrawings_SignedURLServesImage(t *testing.T) {
	app := newTestApp(t)
	auth := bearer(t, primitive.NewObjectID())
	app.save(t, auth)

	_, latest := app.list(t, auth, "")
	req := httptest.NewRequest(http.MethodGet, latest.Data.SignedURL, nil)
	w := httptest.NewRecorder()
	app.g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	require.Equal(t, jpegBytes(t), w.Body.Bytes())
}

func TestDrawings_UserIsolation(t *testing.T) {
	app := newTestApp(t)
	alice := bearer(t, primitive.NewObjectID())
	bob := bearer(t, primitive.NewObjectID())

	a1 := app.save(t, alice)
	b1 := app.save(t, bob)
	a2 := app.save(t, alice)

	code, got := app.list(t, alice, "?beforeId="+a2)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, a1, got.Data.ID)

	code, got = app.list(t, bob, "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, b1, got.Data.ID)

	code, _ = app.list(t, bob, "?beforeId="+b1)
	require.Equal(t, http.StatusNotFound, code)

	w := app.do(httptest.NewRequest(http.MethodGet, "/drawings/"+a1, nil), bob)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = app.do(httptest.NewRequest(http.MethodGet, "/drawings/"+a1, nil), alice)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestDrawings_BadInput(t *testing.T) {
	app := newTestApp(t)
	auth := bearer(t, primitive.NewObjectID())

	w := app.do(httptest.NewRequest(http.MethodGet, "/drawings?beforeId=nope", nil), auth)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid_cursor")

	w = app.do(httptest.NewRequest(http.MethodGet, "/drawings/nope", nil), auth)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(uploadRequest(t, "file", jpegBytes(t)), auth)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "upload_failure")

	w = app.do(uploadRequest(t, FormField, []byte("plain text, not an image")), auth)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid_upload")

	w = app.do(uploadRequest(t, FormField, bytes.Repeat([]byte{0xff}, 2<<20)), auth)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Contains(t, w.Body.String(), "upload_failure")

	require.Zero(t, app.repo.Len())
	require.Zero(t, app.blobs.Len())
}
