package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psidex/visualizer/internal/elements"
)

var testList = elements.List{
	{Data: elements.Data{"id": "n1", "label": "Hello"}},
	{Data: elements.Data{"id": "n2", "name": "Ada"}, Classes: elements.Classes{"Person"}},
	{Data: elements.Data{"id": "e1", "source": "n1", "target": "n2"}},
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadRoundTrip(t *testing.T) {
	body, err := json.Marshal(testList)
	require.NoError(t, err)
	srv := serve(t, http.StatusOK, string(body))

	list, err := New(srv.Client()).Load(context.Background(), srv.URL+DefaultURL)
	require.NoError(t, err)
	assert.Equal(t, testList, list)
}

func TestLoadKeepsWholeDocument(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unmodelledKeys", `[{"data":{"id":"n1"},"scratch":{"k":1},"renderedPosition":{"x":1,"y":2},"pannable":true,"selectable":false,"style":{"width":3}}]`},
		{"numbers", `[1,2]`},
		{"null", `[null]`},
		{"mixed", `[{"data":{"id":"n1"}},"note",{"group":"edges","data":{"source":"n1","target":"n1"}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tt.body)
			l := New(srv.Client())

			list, err := l.Load(context.Background(), srv.URL)
			require.NoError(t, err)

			encoded, err := json.Marshal(list)
			require.NoError(t, err)
			assert.JSONEq(t, tt.body, string(encoded))

			again := serve(t, http.StatusOK, string(encoded))
			relisted, err := l.Load(context.Background(), again.URL)
			require.NoError(t, err)
			assert.Equal(t, list, relisted)
		})
	}
}

func TestLoadEmptyList(t *testing.T) {
	srv := serve(t, http.StatusOK, "[]")

	list, err := New(srv.Client()).Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLoadHTTPError(t *testing.T) {
	tests := []struct {
		status int
		text   string
	}{
		{http.StatusBadRequest, "Bad Request"},
		{http.StatusNotFound, "Not Found"},
		{http.StatusInternalServerError, "Internal Server Error"},
		{http.StatusServiceUnavailable, "Service Unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			// A valid body must not rescue an error status.
			srv := serve(t, tt.status, "[]")

			_, err := New(srv.Client()).Load(context.Background(), srv.URL)
			require.Error(t, err)

			var httpErr *HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.text, httpErr.StatusText)
			assert.Equal(t, "error fetching JSON: "+tt.text, err.Error())
		})
	}
}

func TestLoadHTTPErrorBeforeDecode(t *testing.T) {
	srv := serve(t, http.StatusNotFound, "Not Found")

	_, err := New(srv.Client()).Load(context.Background(), srv.URL)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr), "got %v", err)
	assert.Equal(t, "Not Found", httpErr.StatusText)
	var parseErr *ParseError
	assert.False(t, errors.As(err, &parseErr))
}

func TestLoadParseError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"garbage", http.StatusOK, "not json"},
		{"object", http.StatusOK, `{"data": {"id": "n1"}}`},
		{"truncated", http.StatusOK, `[{"data": `},
		{"notModified", http.StatusNotModified, ""},
		{"created", http.StatusCreated, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)

			_, err := New(srv.Client()).Load(context.Background(), srv.URL)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, srv.URL, parseErr.URL)
		})
	}
}

func TestLoadHeaders(t *testing.T) {
	var accept, ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept, ua = r.Header.Get("Accept"), r.Header.Get("User-Agent")
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	_, err := New(srv.Client(), WithUserAgent("tests/1.0")).Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "application/json", accept)
	assert.Equal(t, "tests/1.0", ua)

	_, err = New(srv.Client(), WithRandomUserAgent()).Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.NotEmpty(t, ua)
	assert.NotEqual(t, "tests/1.0", ua)
}

func TestLoadFile(t *testing.T) {
	body, err := json.Marshal(testList)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "elements.json")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	l := New(nil)

	list, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, testList, list)

	list, err = l.Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, testList, list)

	_, err = l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadUnsupportedScheme(t *testing.T) {
	_, err := New(nil).Load(context.Background(), "ftp://example.com/elements.json")
	assert.Error(t, err)
}

func TestLoadTransportError(t *testing.T) {
	srv := serve(t, http.StatusOK, "[]")
	srv.Close()

	_, err := New(srv.Client()).Load(context.Background(), srv.URL)
	require.Error(t, err)
	var httpErr *HTTPError
	assert.False(t, errors.As(err, &httpErr))
}

func TestStartWait(t *testing.T) {
	body, err := json.Marshal(testList)
	require.NoError(t, err)
	srv := serve(t, http.StatusOK, string(body))

	d := New(srv.Client()).Start(context.Background(), srv.URL)

	select {
	case <-d.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("document never loaded")
	}

	for range 2 {
		list, err := d.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, testList, list)
	}
}

func TestStartWaitError(t *testing.T) {
	srv := serve(t, http.StatusNotFound, "")

	d := New(srv.Client()).Start(context.Background(), srv.URL)
	_, err := d.Wait(context.Background())

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "Not Found", httpErr.StatusText)
}

func TestWaitGivesUp(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()
	defer close(release)

	d := New(srv.Client()).Start(context.Background(), srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := d.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDeferredResolvesOnce(t *testing.T) {
	d := newDeferred()
	d.resolve(testList, nil)
	d.resolve(nil, errors.New("late"))

	list, err := d.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testList, list)
}
