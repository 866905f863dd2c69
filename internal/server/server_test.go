package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zyvod/zyapi/internal/config"
	"github.com/zyvod/zyapi/internal/gateway"
	"github.com/zyvod/zyapi/internal/registry"
)

const testAdminKey = "test-admin-key"

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func testConfig() *config.Config {
	return &config.Config{
		Port:              3000,
		UpstreamTimeout:   2 * time.Second,
		DefaultPageSize:   20,
		MaxPageSize:       100,
		RateLimitMax:      1000,
		RateLimitDuration: time.Minute,
		AdminKey:          testAdminKey,
		CORSOrigin:        "*",
	}
}

// newTestStack spins up a fake upstream plus the full gateway router. The
// seeded sources stay; an extra "test" source pointing at the fake upstream
// becomes the default.
func newTestStack(t *testing.T, upstream http.HandlerFunc, cfg *config.Config) (*httptest.Server, *registry.Store) {
	t.Helper()

	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)

	store, err := registry.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	src, err := store.Create("test", up.URL, 0, "fake upstream")
	require.NoError(t, err)
	one := 1
	_, err = store.Update(src.ID, registry.UpdateFields{Default: &one})
	require.NoError(t, err)

	srv := httptest.NewServer(New(cfg, store, gateway.NewDispatcher(store, cfg.UpstreamTimeout)).Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return resp
}

func doJSON(t *testing.T, method, url, token, body string, out any) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
	}
	return resp
}
