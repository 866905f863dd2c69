package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zyvod/zyapi/internal/registry"
)

// newTestRegistry opens a throwaway store and replaces the seeded default
// with a source pointing at the given base URL.
func newTestRegistry(t *testing.T, baseURL string) *registry.Store {
	t.Helper()
	store, err := registry.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	src, err := store.Create("test", baseURL, 0, "")
	require.NoError(t, err)
	one := 1
	ok, err := store.Update(src.ID, registry.UpdateFields{Default: &one})
	require.NoError(t, err)
	require.True(t, ok)
	return store
}

func TestFetchUsesExplicitSource(t *testing.T) {
	var gotQuery, gotUA, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Write([]byte(`{"page":1,"pagecount":3,"total":42,"list":[]}`))
	}))
	defer srv.Close()

	store := newTestRegistry(t, srv.URL+"/api.php/provide/vod/?at=json")
	d := NewDispatcher(store, 5*time.Second)

	var out ListResponse
	err := d.Fetch(context.Background(), ListParams(2, "58"), "test", &out)
	require.NoError(t, err)

	assert.Equal(t, 42, out.Total)
	assert.Contains(t, gotQuery, "ac=list")
	assert.Contains(t, gotQuery, "pg=2")
	assert.Contains(t, gotQuery, "at=json", "base URL query components survive")
	assert.Contains(t, gotUA, "Chrome")
	assert.Equal(t, srv.URL, gotReferer)
}

func TestFetchFallsBackToDefaultSource(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{"list":[]}`))
	}))
	defer srv.Close()

	store := newTestRegistry(t, srv.URL)
	d := NewDispatcher(store, 5*time.Second)

	var out DetailResponse
	err := d.Fetch(context.Background(), DetailParams("1"), "", &out)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestFetchUnknownSource(t *testing.T) {
	store := newTestRegistry(t, "http://127.0.0.1:0")
	d := NewDispatcher(store, time.Second)

	var out ListResponse
	err := d.Fetch(context.Background(), TypeParams(), "nope", &out)
	apiErr := Classify(err)
	assert.Equal(t, CodeNotFound, apiErr.Code)
	assert.Contains(t, apiErr.Message, "nope")
}

func TestFetchDisabledSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("disabled source must not be contacted")
	}))
	defer srv.Close()

	store := newTestRegistry(t, srv.URL)
	src, err := store.ByName("test")
	require.NoError(t, err)
	zero := 0
	_, err = store.Update(src.ID, registry.UpdateFields{Enabled: &zero})
	require.NoError(t, err)

	d := NewDispatcher(store, time.Second)
	var out ListResponse
	err = d.Fetch(context.Background(), TypeParams(), "test", &out)
	apiErr := Classify(err)
	assert.Equal(t, CodeUpstream, apiErr.Code)
	assert.Contains(t, apiErr.Message, "disabled")
}

func TestFetchNoDefaultConfigured(t *testing.T) {
	store := newTestRegistry(t, "http://127.0.0.1:0")
	src, err := store.ByName("test")
	require.NoError(t, err)
	zero := 0
	_, err = store.Update(src.ID, registry.UpdateFields{Default: &zero})
	require.NoError(t, err)

	d := NewDispatcher(store, time.Second)
	var out ListResponse
	err = d.Fetch(context.Background(), TypeParams(), "", &out)
	apiErr := Classify(err)
	assert.Equal(t, CodeNotFound, apiErr.Code)
}

func TestFetchUpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	store := newTestRegistry(t, srv.URL)
	d := NewDispatcher(store, time.Second)

	var out ListResponse
	err := d.Fetch(context.Background(), TypeParams(), "test", &out)
	apiErr := Classify(err)
	assert.Equal(t, CodeUpstream, apiErr.Code)
	assert.Contains(t, apiErr.Message, "503")
}

func TestFetchTimeoutUsesPerSourceValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	store := newTestRegistry(t, srv.URL)
	src, err := store.ByName("test")
	require.NoError(t, err)
	short := 100
	_, err = store.Update(src.ID, registry.UpdateFields{Timeout: &short})
	require.NoError(t, err)

	// global timeout is generous; the per-source 100ms must win
	d := NewDispatcher(store, 30*time.Second)

	start := time.Now()
	var out ListResponse
	err = d.Fetch(context.Background(), TypeParams(), "test", &out)
	elapsed := time.Since(start)

	apiErr := Classify(err)
	assert.Equal(t, CodeTimeout, apiErr.Code)
	assert.Less(t, elapsed, time.Second, "deadline not honored")
}

func TestFetchWAFRedirectIsBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/WAF/verify" {
			t.Error("challenge page must not be followed")
			return
		}
		http.Redirect(w, r, "/WAF/verify", http.StatusFound)
	}))
	defer srv.Close()

	store := newTestRegistry(t, srv.URL)
	d := NewDispatcher(store, time.Second)

	var out ListResponse
	err := d.Fetch(context.Background(), TypeParams(), "test", &out)
	apiErr := Classify(err)
	assert.Equal(t, CodeUpstream, apiErr.Code)
	assert.Contains(t, apiErr.Message, "WAF")
}

func TestFetchBadUpstreamJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	store := newTestRegistry(t, srv.URL)
	d := NewDispatcher(store, time.Second)

	var out ListResponse
	err := d.Fetch(context.Background(), TypeParams(), "test", &out)
	apiErr := Classify(err)
	assert.Equal(t, CodeUpstream, apiErr.Code)
}
