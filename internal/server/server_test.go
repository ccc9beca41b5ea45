package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psidex/visualizer/internal/elements"
	"github.com/psidex/visualizer/internal/graphs"
	"github.com/psidex/visualizer/internal/lib"
	"github.com/psidex/visualizer/internal/loader"
)

type fakeHandle struct {
	body string
	err  error
}

func (f fakeHandle) ID() string               { return "fake" }
func (f fakeHandle) Options() *graphs.Options { return nil }
func (f fakeHandle) ContentType() string      { return "text/html; charset=utf-8" }
func (f fakeHandle) Render(w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, f.body)
	return err
}

var testList = elements.List{{Data: elements.Data{"id": "n1", "label": "Hello"}}}

func newTestServer(t *testing.T, pages map[string]graphs.Handle, stream http.Handler) *httptest.Server {
	t.Helper()
	s, err := New(Config{AllowedOrigins: []string{"*"}}, lib.DiscardLogger(), testList, pages, stream)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, body := get(t, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
}

func TestElements(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, body := get(t, srv.URL+ElementsPath, http.Header{"Origin": {"http://example.com"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	list, err := elements.Decode([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, testList, list)
}

func TestElementsLoadable(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	list, err := loader.New(srv.Client()).Load(context.Background(), srv.URL+loader.DefaultURL)
	require.NoError(t, err)
	assert.Equal(t, testList, list)
}

func TestElementsEmpty(t *testing.T) {
	s, err := New(Config{}, lib.DiscardLogger(), nil, nil, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ElementsPath, nil))
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestPages(t *testing.T) {
	srv := newTestServer(t, map[string]graphs.Handle{
		"/":       fakeHandle{body: "<html>index</html>"},
		"/broken": fakeHandle{err: errors.New("boom")},
	}, nil)

	resp, body := get(t, srv.URL+"/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "<html>index</html>", body)

	resp, body = get(t, srv.URL+"/broken", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, body, "boom")

	resp, _ = get(t, srv.URL+"/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRealHandles(t *testing.T) {
	mount, err := graphs.ResolveMount([]byte(graphs.DefaultHost), "app")
	require.NoError(t, err)
	h, err := graphs.JSON{}.New(&graphs.Options{Viewport: graphs.DefaultViewport(), Container: mount, Elements: testList})
	require.NoError(t, err)

	srv := newTestServer(t, map[string]graphs.Handle{"/config.json": h}, nil)

	resp, body := get(t, srv.URL+"/config.json", nil)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "app", got["container"])
}

func TestStreamMounted(t *testing.T) {
	stream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "stream")
	})

	_, body := get(t, newTestServer(t, nil, stream).URL+"/ws", nil)
	assert.Equal(t, "stream", body)

	resp, _ := get(t, newTestServer(t, nil, nil).URL+"/ws", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeShutsDown(t *testing.T) {
	s, err := New(Config{ShutdownTimeout: time.Second}, lib.DiscardLogger(), testList, nil, nil)
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- s.Serve(ctx, lis) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + lis.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errs:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
