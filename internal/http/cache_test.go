package httpx

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexIsCached(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	author, _ := e.user("auth")
	p := e.post(author, "Cached post", nil)

	first := e.get("/", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "Cached post")

	require.NoError(t, e.srv.Store.DeletePost(ctx, p.ID))

	second := e.get("/", "")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.Equal(t, "text/html; charset=utf-8", second.Header().Get("Content-Type"))

	require.NoError(t, e.srv.ClearCache(ctx))

	third := e.get("/", "")
	assert.NotEqual(t, first.Body.Bytes(), third.Body.Bytes())
	assert.NotContains(t, third.Body.String(), "Cached post")

	pc := e.srv.Metrics.PageCache
	assert.Equal(t, 1.0, testutil.ToFloat64(pc.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pc.WithLabelValues("miss")))
}

func TestCacheIsPerViewer(t *testing.T) {
	e := newTestEnv(t)
	_, sid := e.user("auth")

	guest := e.get("/", "")
	member := e.get("/", sid)
	assert.NotContains(t, guest.Body.String(), "/auth/logout/")
	assert.Contains(t, member.Body.String(), "/auth/logout/")
}

func TestOnlyIndexIsCached(t *testing.T) {
	e := newTestEnv(t)
	author, _ := e.user("auth")
	g := e.group("Test group", "test-slug")
	p := e.post(author, "Group post", g)

	assert.Contains(t, e.get("/group/test-slug/", "").Body.String(), "Group post")
	require.NoError(t, e.srv.Store.DeletePost(context.Background(), p.ID))
	assert.NotContains(t, e.get("/group/test-slug/", "").Body.String(), "Group post")
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	e.get("/about/tech/", "")

	w := e.get("/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `yatube_http_requests_total{method="GET",route="GET /about/tech/{$}",status="200"} 1`)
}
