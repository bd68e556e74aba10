package httpx

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"yatube/internal/app"
	"yatube/internal/auth"
	"yatube/internal/db"
	"yatube/internal/models"
	"yatube/internal/store"
	"yatube/internal/util"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

type rendered struct {
	Name   string
	Status int
	Data   any
}

// recorder remembers the last page rendered and passes it on to the real
// templates, so tests see both the HTML and the context behind it.
type recorder struct {
	next util.Renderer

	mu   sync.Mutex
	last *rendered
}

func (r *recorder) Render(w http.ResponseWriter, status int, name string, data any) error {
	r.mu.Lock()
	r.last = &rendered{Name: name, Status: status, Data: data}
	r.mu.Unlock()
	return r.next.Render(w, status, name, data)
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.last = nil
	r.mu.Unlock()
}

type testEnv struct {
	t         *testing.T
	srv       *Server
	rec       *recorder
	mediaRoot string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "yatube.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(conn, db.DriverSQLite))

	root := t.TempDir()
	srv, err := NewServer(conn, app.Config{MediaRoot: root}, Deps{
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	rec := &recorder{next: srv.Render}
	srv.Render = rec
	return &testEnv{t: t, srv: srv, rec: rec, mediaRoot: root}
}

// user registers a user and returns it with a live session id.
func (e *testEnv) user(name string) (*models.User, string) {
	e.t.Helper()
	ctx := context.Background()
	id, err := auth.Register(ctx, e.srv.DB, name+"@example.com", name, "secret-pass")
	require.NoError(e.t, err)
	sid, err := auth.StartSession(ctx, e.srv.DB, id, time.Hour)
	require.NoError(e.t, err)
	u, err := e.srv.Store.UserByID(ctx, id)
	require.NoError(e.t, err)
	return u, sid
}

func (e *testEnv) group(title, slug string) *models.Group {
	e.t.Helper()
	g := &models.Group{Title: title, Slug: slug, Description: "Test description"}
	require.NoError(e.t, e.srv.Store.CreateGroup(context.Background(), g))
	return g
}

func (e *testEnv) post(author *models.User, text string, g *models.Group) *models.Post {
	e.t.Helper()
	p := &models.Post{Text: text, AuthorID: author.ID}
	if g != nil {
		p.GroupID = &g.ID
	}
	require.NoError(e.t, e.srv.Store.CreatePost(context.Background(), p))
	return p
}

func (e *testEnv) postCount() int {
	e.t.Helper()
	n, err := e.srv.Store.CountPosts(context.Background(), store.PostFilter{})
	require.NoError(e.t, err)
	return n
}

func (e *testEnv) do(req *http.Request, sid string) *httptest.ResponseRecorder {
	e.t.Helper()
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: sid})
	}
	e.rec.reset()
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path, sid string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), sid)
}

func (e *testEnv) postForm(path, sid string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, sid)
}

// postMultipart submits fields plus an optional image under the "image" field.
func (e *testEnv) postMultipart(path, sid string, fields map[string]string, filename string, data []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(e.t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(e.t, err)
		_, err = fw.Write(data)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(req, sid)
}

// page returns what the last request rendered.
func (e *testEnv) page() *rendered {
	e.t.Helper()
	e.rec.mu.Lock()
	defer e.rec.mu.Unlock()
	require.NotNil(e.t, e.rec.last, "nothing was rendered")
	return e.rec.last
}
