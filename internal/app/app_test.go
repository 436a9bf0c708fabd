package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pribylovaa/storefront/internal/config"
	"github.com/pribylovaa/storefront/internal/models"
	"github.com/stretchr/testify/require"
)

func silent() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Env: "local",
		Backend: config.BackendConfig{
			BaseURL:     baseURL,
			UserAgent:   "storefront-test",
			DefaultRole: "customer",
			Paths: config.PathsConfig{
				Login:   "/users/login/",
				Signup:  "/users/signup/",
				Refresh: "/users/api/token/refresh/",
				Cart:    "/cart/getCartItems/",
			},
		},
		Store: config.StoreConfig{
			Driver: config.StoreFile,
			Path:   filepath.Join(t.TempDir(), "tokens.json"),
		},
		Timeouts: config.TimeoutConfig{Request: 5 * time.Second},
	}
}

// Полный путь через собранное приложение: вход, 401 на корзине, refresh, повтор.
func TestNew_WiresSessionHooksIntoStorefront(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/users/login/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Credentials{Access: "a1", Refresh: "r1"})
	})
	r.Post("/users/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.RefreshResponse{Access: "a2"})
	})
	r.Get("/cart/getCartItems/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(models.CartList{Items: []models.CartItem{{ProductID: 1, Quantity: 2}}})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	a, err := New(context.Background(), testConfig(t, srv.URL), silent(), reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	ctx := context.Background()
	_, err = a.Session.Login(ctx, "u@example.com", "pw")
	require.NoError(t, err)

	items, err := a.Shop.Cart(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	creds, ok := a.Session.Credentials()
	require.True(t, ok)
	require.Equal(t, "a2", creds.Access)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	require.True(t, names["storefront_session_events_total"])
	require.True(t, names["storefront_refresh_total"])
	require.True(t, names["storefront_backend_requests_total"])

	n, err := testutil.GatherAndCount(reg, "storefront_refresh_total")
	require.NoError(t, err)
	require.Equal(t, 1, n, "only the success outcome is expected")
}

func TestNew_WithoutRegistry(t *testing.T) {
	a, err := New(context.Background(), testConfig(t, "http://127.0.0.1:1"), silent(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.Nil(t, a.Metrics)
	require.False(t, a.Session.IsAuthenticated())
}

func TestOpenStore_Drivers(t *testing.T) {
	ctx := context.Background()

	fst, err := OpenStore(ctx, config.StoreConfig{Driver: config.StoreFile, Path: filepath.Join(t.TempDir(), "t.json")}, silent())
	require.NoError(t, err)
	require.NoError(t, fst.Close())

	bst, err := OpenStore(ctx, config.StoreConfig{Driver: config.StoreBadger, Dir: t.TempDir(), Key: "tokens"}, silent())
	require.NoError(t, err)
	require.NoError(t, bst.Close())

	_, err = OpenStore(ctx, config.StoreConfig{Driver: "etcd"}, silent())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown store driver")

	_, err = OpenStore(ctx, config.StoreConfig{Driver: config.StoreRedis, RedisURL: "::bad::"}, silent())
	require.Error(t, err)
}

func TestSetupLogger_Levels(t *testing.T) {
	var buf bytes.Buffer

	SetupLogger("prod", &buf).Debug("hidden")
	require.Empty(t, buf.String())

	SetupLogger("prod", &buf).Info("shown")
	require.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	SetupLogger("local", &buf).Debug("dbg")
	require.Contains(t, buf.String(), "msg=dbg")
}
