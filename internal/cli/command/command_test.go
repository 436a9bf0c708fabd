package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/pribylovaa/storefront/internal/app"
	"github.com/pribylovaa/storefront/internal/config"
	apierrors "github.com/pribylovaa/storefront/internal/errors"
	"github.com/pribylovaa/storefront/internal/models"
)

// Тесты shopctl.
//
//  Проверяем:
//  - login сохраняет сессию, следующий запуск её восстанавливает;
//  - защищённые команды без сессии не ходят в бэкенд (ErrNotLoggedIn);
//  - форматы вывода и отсутствие токенов в выводе;
//  - admin update дополняет незаданные поля текущими значениями;
//  - коды завершения по видам ошибок.

// backend — бэкенд магазина на chi.
type backend struct {
	mu        sync.Mutex
	access    string
	protected int
	changes   []models.CartChange
	updates   []models.ProductInput
	deleted   []string
}

func (b *backend) snapshot() (protected int, changes []models.CartChange, updates []models.ProductInput, deleted []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.protected, append([]models.CartChange(nil), b.changes...),
		append([]models.ProductInput(nil), b.updates...), append([]string(nil), b.deleted...)
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	b := &backend{access: access}

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	issue := func(status int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var in models.AuthRequest
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.Email != "u@example.com" || in.Password != "pw" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account"})
				return
			}
			writeJSON(w, status, models.Credentials{Access: b.access, Refresh: "refresh-secret"})
		}
	}

	r := chi.NewRouter()
	r.Post("/users/login/", issue(http.StatusOK))
	r.Post("/users/signup/", issue(http.StatusCreated))

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b.mu.Lock()
				b.protected++
				b.mu.Unlock()

				if r.Header.Get("Authorization") != "Bearer "+b.access {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
			})
		})

		r.Get("/api/categories/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []models.Category{{ID: 1, Name: "Phones"}, {ID: 2, Name: "Laptops"}})
		})
		r.Get("/api/getProduct/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []models.Product{{ID: 7, Name: "P7", Price: 9.5, StockQuantity: 3,
				Category: &models.Category{ID: 1, Name: r.URL.Query().Get("category")}}})
		})
		r.Get("/cart/getCartItems/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, models.CartList{Items: []models.CartItem{{ProductID: 7, ProductName: "P7", Quantity: 3}}})
		})
		r.Post("/cart/addToCart/", func(w http.ResponseWriter, r *http.Request) {
			var in models.CartChange
			_ = json.NewDecoder(r.Body).Decode(&in)
			b.mu.Lock()
			b.changes = append(b.changes, in)
			b.mu.Unlock()
			writeJSON(w, http.StatusOK, models.CartLine{Item: models.CartItem{ProductID: in.ProductID, Quantity: 3 + in.Quantity}})
		})
		r.Post("/orders/makeOrder/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusCreated, models.OrderConfirmation{OrderID: 501})
		})
		r.Get("/orders/getOrders/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, models.OrderList{Orders: []models.Order{{ID: 501, Status: "pending", TotalPrice: 28.5, ShippingAddress: "Main st. 1"}}})
		})
		r.Get("/users/getProfile/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, models.ProfileEnvelope{Profile: models.Profile{Email: "u@example.com", Role: "customer"}})
		})
		r.Get("/api/products/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, []models.Product{{ID: 1, Name: "A"}, {ID: 0, Name: "broken"}})
		})
		r.Get("/api/products/{id}/", func(w http.ResponseWriter, r *http.Request) {
			if chi.URLParam(r, "id") != "1" {
				writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
				return
			}
			writeJSON(w, http.StatusOK, models.Product{ID: 1, Name: "A", Description: "first", Price: 10,
				StockQuantity: 5, Category: &models.Category{ID: 2, Name: "Laptops"}})
		})
		r.Put("/api/products/{id}/", func(w http.ResponseWriter, r *http.Request) {
			var in models.ProductInput
			_ = json.NewDecoder(r.Body).Decode(&in)
			b.mu.Lock()
			b.updates = append(b.updates, in)
			b.mu.Unlock()
			writeJSON(w, http.StatusOK, models.Product{ID: 1, Name: in.Name, Price: in.Price, StockQuantity: in.StockQuantity})
		})
		r.Delete("/api/products/{id}/", func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			b.deleted = append(b.deleted, chi.URLParam(r, "id"))
			b.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return b, srv
}

// builder собирает приложение на тестовый бэкенд с файловым хранилищем storePath.
func builder(baseURL, storePath string) Builder {
	return func(ctx context.Context, _ *cli.Context) (*app.App, error) {
		cfg := &config.Config{
			Env: "local",
			Backend: config.BackendConfig{
				BaseURL:     baseURL,
				UserAgent:   "shopctl-test",
				DefaultRole: "customer",
				Paths: config.PathsConfig{
					Login:         "/users/login/",
					Signup:        "/users/signup/",
					Refresh:       "/users/api/token/refresh/",
					Categories:    "/api/categories/",
					Products:      "/api/getProduct/",
					Cart:          "/cart/getCartItems/",
					AddToCart:     "/cart/addToCart/",
					PlaceOrder:    "/orders/makeOrder/",
					Orders:        "/orders/getOrders/",
					Profile:       "/users/getProfile/",
					AdminProducts: "/api/products/",
				},
			},
			Store:    config.StoreConfig{Driver: config.StoreFile, Path: storePath},
			Timeouts: config.TimeoutConfig{Request: 5 * time.Second},
		}

		return app.New(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	}
}

func run(t *testing.T, build Builder, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	a := NewApp(build)
	a.Writer = &out
	a.ErrWriter = io.Discard

	err := a.Run(append([]string{"shopctl"}, args...))
	return out.String(), err
}

func setup(t *testing.T) (*backend, Builder, string) {
	t.Helper()

	b, srv := newBackend(t)
	storePath := filepath.Join(t.TempDir(), "tokens.json")
	return b, builder(srv.URL, storePath), storePath
}

func loginOK(t *testing.T, build Builder) {
	t.Helper()
	_, err := run(t, build, "login", "--email", "u@example.com", "--password", "pw")
	require.NoError(t, err)
}

func TestApp_Structure(t *testing.T) {
	a := NewApp(nil)

	names := map[string]bool{}
	for _, cmd := range a.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"login", "signup", "logout", "status", "categories", "products",
		"cart", "order", "orders", "profile", "admin"} {
		require.True(t, names[want], "missing command %s", want)
	}

	subs := map[string]bool{}
	for _, sub := range AdminCommand().Subcommands {
		subs[sub.Name] = true
	}
	for _, want := range []string{"list", "get", "create", "update", "delete"} {
		require.True(t, subs[want], "missing admin subcommand %s", want)
	}
}

func TestLogin_PersistsAndStatusRestores(t *testing.T) {
	b, build, storePath := setup(t)

	out, err := run(t, build, "login", "--email", "u@example.com", "--password", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "authenticated")
	require.NotContains(t, out, b.access)
	require.NotContains(t, out, "refresh-secret")

	_, err = os.Stat(storePath)
	require.NoError(t, err)

	// новый процесс: сессия восстанавливается из файла.
	out, err = run(t, build, "--output", "json", "status")
	require.NoError(t, err)

	var st sessionStatus
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	require.True(t, st.Authenticated)
	require.Equal(t, "42", st.Subject)
	require.Equal(t, config.StoreFile, st.Store)
	require.NotNil(t, st.ExpiresAt)
}

func TestLogin_BadCredentials(t *testing.T) {
	_, build, storePath := setup(t)

	_, err := run(t, build, "login", "--email", "u@example.com", "--password", "nope")
	require.Error(t, err)
	require.ErrorIs(t, err, apierrors.ErrAuthenticationFailed)
	require.Equal(t, 2, ExitCode(err))

	_, statErr := os.Stat(storePath)
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestSignup_LogsIn(t *testing.T) {
	_, build, _ := setup(t)

	_, err := run(t, build, "signup", "--email", "u@example.com", "--password", "pw")
	require.NoError(t, err)

	out, err := run(t, build, "-o", "json", "status")
	require.NoError(t, err)
	require.Contains(t, out, `"authenticated": true`)
}

func TestGuardedCommands_WithoutSession(t *testing.T) {
	b, build, _ := setup(t)

	for _, args := range [][]string{
		{"categories"},
		{"products", "--category", "Phones"},
		{"cart"},
		{"cart", "add", "--product", "7"},
		{"order", "--address", "Main st. 1"},
		{"orders"},
		{"profile"},
		{"admin", "list"},
	} {
		_, err := run(t, build, args...)
		require.ErrorIs(t, err, ErrNotLoggedIn, "%v", args)
		require.Equal(t, 2, ExitCode(err))
	}

	protected, _, _, _ := b.snapshot()
	require.Zero(t, protected, "backend must not be called without a session")
}

func TestLogout_ClearsPersistedSession(t *testing.T) {
	_, build, storePath := setup(t)
	loginOK(t, build)

	out, err := run(t, build, "-o", "json", "logout")
	require.NoError(t, err)
	require.Contains(t, out, `"authenticated": false`)

	_, statErr := os.Stat(storePath)
	require.True(t, errors.Is(statErr, os.ErrNotExist))

	_, err = run(t, build, "categories")
	require.ErrorIs(t, err, ErrNotLoggedIn)

	// повторный logout тоже успешен.
	_, err = run(t, build, "logout")
	require.NoError(t, err)
}

func TestCatalog_TableOutput(t *testing.T) {
	_, build, _ := setup(t)
	loginOK(t, build)

	out, err := run(t, build, "categories")
	require.NoError(t, err)
	require.Contains(t, out, "ID  NAME")
	require.Contains(t, out, "Phones")
	require.Contains(t, out, "Laptops")

	out, err = run(t, build, "products", "--category", "Phones")
	require.NoError(t, err)
	require.Contains(t, out, "P7")
	require.Contains(t, out, "9.50")
}

func TestCart_AddAndRemove(t *testing.T) {
	b, build, _ := setup(t)
	loginOK(t, build)

	out, err := run(t, build, "cart")
	require.NoError(t, err)
	require.Contains(t, out, "P7")

	_, err = run(t, build, "cart", "add", "--product", "7", "--qty", "2")
	require.NoError(t, err)

	out, err = run(t, build, "cart", "remove", "--product", "7")
	require.NoError(t, err)
	require.Contains(t, out, "product 7 removed from cart")

	_, changes, _, _ := b.snapshot()
	require.Equal(t, []models.CartChange{{ProductID: 7, Quantity: 2}, {ProductID: 7, Quantity: -3}}, changes)

	_, err = run(t, build, "cart", "remove", "--product", "8")
	require.Error(t, err)
	require.Equal(t, 3, ExitCode(err))
}

func TestOrders_YAMLOutput(t *testing.T) {
	_, build, _ := setup(t)
	loginOK(t, build)

	out, err := run(t, build, "-o", "yaml", "order", "--address", "Main st. 1")
	require.NoError(t, err)
	require.Contains(t, out, "order_id: 501")

	out, err = run(t, build, "-o", "yaml", "orders")
	require.NoError(t, err)
	require.Contains(t, out, "order_status: pending")
	require.Contains(t, out, "shipping_address: Main st. 1")

	_, err = run(t, build, "order", "--address", "   ")
	require.ErrorIs(t, err, apierrors.ErrInvalid)
}

func TestProfile(t *testing.T) {
	_, build, _ := setup(t)
	loginOK(t, build)

	out, err := run(t, build, "profile")
	require.NoError(t, err)
	require.Contains(t, out, "u@example.com")
	require.Contains(t, out, "customer")
}

func TestAdmin_UpdateKeepsUnsetFields(t *testing.T) {
	b, build, _ := setup(t)
	loginOK(t, build)

	_, err := run(t, build, "admin", "update", "--price", "12.5", "1")
	require.NoError(t, err)

	_, _, updates, _ := b.snapshot()
	require.Equal(t, []models.ProductInput{{
		Name:          "A",
		Description:   "first",
		Price:         12.5,
		StockQuantity: 5,
		CategoryID:    2,
	}}, updates)
}

func TestAdmin_ListGetDelete(t *testing.T) {
	b, build, _ := setup(t)
	loginOK(t, build)

	out, err := run(t, build, "-o", "json", "admin", "list")
	require.NoError(t, err)

	var list []models.Product
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1, "records without id are dropped")

	_, err = run(t, build, "admin", "get", "2")
	require.Error(t, err)
	code, ok := apierrors.StatusCode(err)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, code)

	_, err = run(t, build, "admin", "get", "abc")
	require.ErrorIs(t, err, apierrors.ErrInvalid)
	require.Equal(t, 3, ExitCode(err))

	out, err = run(t, build, "admin", "delete", "1")
	require.NoError(t, err)
	require.Contains(t, out, "product 1 deleted")

	_, _, _, deleted := b.snapshot()
	require.Equal(t, []string{"1"}, deleted)
}

func TestUnknownOutputFormat_FailsBeforeBuild(t *testing.T) {
	built := false
	build := func(context.Context, *cli.Context) (*app.App, error) {
		built = true
		return nil, fmt.Errorf("must not be called")
	}

	_, err := run(t, build, "-o", "xml", "status")
	require.Error(t, err)
	require.False(t, built)
}

func TestExitCode(t *testing.T) {
	tcs := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"not_logged_in", ErrNotLoggedIn, 2},
		{"session_expired", fmt.Errorf("x: %w", apierrors.ErrSessionExpired), 2},
		{"auth_failed", apierrors.ErrAuthenticationFailed, 2},
		{"invalid", apierrors.ErrInvalid, 3},
		{"server", apierrors.NewStatusError(http.StatusBadGateway, nil), 1},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}
