package session

// Сквозные сценарии: реальный транспорт, clients.AuthAPI, файловое хранилище
// и тестовый бэкенд на chi.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pribylovaa/storefront/internal/clients"
	"github.com/pribylovaa/storefront/internal/clients/transport"
	"github.com/pribylovaa/storefront/internal/config"
	apierrors "github.com/pribylovaa/storefront/internal/errors"
	"github.com/pribylovaa/storefront/internal/models"
	"github.com/pribylovaa/storefront/internal/storage"
	"github.com/pribylovaa/storefront/internal/storage/file"
	"github.com/stretchr/testify/require"
)

// backend — бэкенд, принимающий на /protected только access из valid.
type backend struct {
	mu         sync.Mutex
	valid      string
	refreshOK  bool
	refreshes  atomic.Int32
	protected  atomic.Int32
	lastAuth   []string
	refreshIn  []string
	alwaysDeny bool
}

func (b *backend) router() http.Handler {
	r := chi.NewRouter()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	r.Post("/users/login/", func(w http.ResponseWriter, r *http.Request) {
		var in models.AuthRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Email != "u@example.com" || in.Password != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found"})
			return
		}
		writeJSON(w, http.StatusOK, models.Credentials{Access: "a1", Refresh: "r1"})
	})
	r.Post("/users/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		b.refreshes.Add(1)
		var in models.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&in)

		b.mu.Lock()
		b.refreshIn = append(b.refreshIn, in.Refresh)
		ok := b.refreshOK
		if ok {
			b.valid = "a2"
		}
		b.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
			return
		}
		writeJSON(w, http.StatusOK, models.RefreshResponse{Access: "a2"})
	})
	r.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
		b.protected.Add(1)
		auth := r.Header.Get("Authorization")

		b.mu.Lock()
		b.lastAuth = append(b.lastAuth, auth)
		ok := !b.alwaysDeny && auth == "Bearer "+b.valid
		b.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
	})

	return r
}

func (b *backend) auths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lastAuth...)
}

func (b *backend) refreshInputs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.refreshIn...)
}

type env struct {
	b         *backend
	m         *Manager
	tr        *clients.AuthAPI
	storePath string
	call      func(ctx context.Context) error
}

func newEnv(t *testing.T, b *backend) *env {
	t.Helper()

	srv := httptest.NewServer(b.router())
	t.Cleanup(srv.Close)

	cfg := config.Config{
		Backend: config.BackendConfig{
			BaseURL: srv.URL,
			Paths: config.PathsConfig{
				Login:   "/users/login/",
				Signup:  "/users/signup/",
				Refresh: "/users/api/token/refresh/",
			},
		},
		Timeouts: config.TimeoutConfig{Request: 5 * time.Second},
	}

	storePath := filepath.Join(t.TempDir(), "tokens.json")
	st, err := file.New(storePath)
	require.NoError(t, err)

	base := clients.New(cfg, silent(), nil)
	authAPI := clients.NewAuthAPI(base, cfg.Backend.Paths)
	m := New(context.Background(), st, authAPI, WithLogger(silent()))
	protected := base.With(m.Hooks())

	return &env{
		b:         b,
		m:         m,
		tr:        authAPI,
		storePath: storePath,
		call: func(ctx context.Context) error {
			req := &transport.Request{Method: http.MethodGet, Path: "/protected"}
			_, err := protected.Do(ctx, req)
			return err
		},
	}
}

func TestFlow_LoginAttachesBearer(t *testing.T) {
	b := &backend{valid: "a1", refreshOK: true}
	e := newEnv(t, b)
	ctx := context.Background()

	creds, err := e.m.Login(ctx, "u@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, models.Credentials{Access: "a1", Refresh: "r1"}, creds)
	require.True(t, e.m.IsAuthenticated())

	require.NoError(t, e.call(ctx))
	require.Equal(t, []string{"Bearer a1"}, b.auths())
	require.Zero(t, b.refreshes.Load())
}

func TestFlow_RefreshThenSingleResubmission(t *testing.T) {
	b := &backend{valid: "expired", refreshOK: true}
	e := newEnv(t, b)
	ctx := context.Background()

	_, err := e.m.Login(ctx, "u@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, e.call(ctx))

	require.EqualValues(t, 1, b.refreshes.Load())
	require.EqualValues(t, 2, b.protected.Load())
	require.Equal(t, []string{"Bearer a1", "Bearer a2"}, b.auths())
	require.Equal(t, []string{"r1"}, b.refreshInputs())

	got, ok := e.m.Credentials()
	require.True(t, ok)
	require.Equal(t, models.Credentials{Access: "a2", Refresh: "r1"}, got)

	// В хранилище тоже новая пара.
	st, err := file.New(e.storePath)
	require.NoError(t, err)
	persisted, err := st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, got, persisted)
}

func TestFlow_SecondUnauthorizedDoesNotRefreshAgain(t *testing.T) {
	b := &backend{valid: "a1", refreshOK: true, alwaysDeny: true}
	e := newEnv(t, b)
	ctx := context.Background()

	_, err := e.m.Login(ctx, "u@example.com", "pw")
	require.NoError(t, err)

	err = e.call(ctx)
	require.ErrorIs(t, err, apierrors.ErrUnauthorized)
	require.Equal(t, apierrors.KindUnauthorized, apierrors.KindOf(err))

	require.EqualValues(t, 1, b.refreshes.Load())
	require.EqualValues(t, 2, b.protected.Load())
}

func TestFlow_RefreshRejected_ForcesLogout(t *testing.T) {
	b := &backend{valid: "expired", refreshOK: false}
	e := newEnv(t, b)
	ctx := context.Background()

	_, err := e.m.Login(ctx, "u@example.com", "pw")
	require.NoError(t, err)

	err = e.call(ctx)
	require.ErrorIs(t, err, apierrors.ErrSessionExpired)

	// Вызывающий получает ошибку refresh, а не исходного запроса.
	var se *apierrors.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "Token is invalid or expired", se.Message)

	require.False(t, e.m.IsAuthenticated())
	require.EqualValues(t, 1, b.protected.Load())

	st, err := file.New(e.storePath)
	require.NoError(t, err)
	_, err = st.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFlow_RestartRestoresPair(t *testing.T) {
	b := &backend{valid: "a1", refreshOK: true}
	e := newEnv(t, b)
	ctx := context.Background()

	_, err := e.m.Login(ctx, "u@example.com", "pw")
	require.NoError(t, err)

	st, err := file.New(e.storePath)
	require.NoError(t, err)
	restarted := New(ctx, st, e.tr, WithLogger(silent()))

	require.True(t, restarted.IsAuthenticated())
	got, _ := restarted.Credentials()
	require.Equal(t, models.Credentials{Access: "a1", Refresh: "r1"}, got)
}

func TestFlow_LogoutClearsDurableState(t *testing.T) {
	b := &backend{valid: "a1", refreshOK: true}
	e := newEnv(t, b)
	ctx := context.Background()

	// Выход в анонимном режиме — не ошибка.
	e.m.Logout(ctx)
	require.False(t, e.m.IsAuthenticated())

	_, err := e.m.Login(ctx, "u@example.com", "pw")
	require.NoError(t, err)
	e.m.Logout(ctx)
	require.False(t, e.m.IsAuthenticated())

	st, err := file.New(e.storePath)
	require.NoError(t, err)
	restarted := New(ctx, st, e.tr, WithLogger(silent()))
	require.False(t, restarted.IsAuthenticated())
}

// Параллельные запросы: у каждого свой бюджет повторов, все завершаются успехом,
// ни один не отправлен больше двух раз.
func TestFlow_ConcurrentRequests_EachRetriesAtMostOnce(t *testing.T) {
	b := &backend{valid: "expired", refreshOK: true}
	e := newEnv(t, b)
	ctx := context.Background()

	_, err := e.m.Login(ctx, "u@example.com", "pw")
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- e.call(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	require.LessOrEqual(t, b.refreshes.Load(), int32(n))
	require.GreaterOrEqual(t, b.refreshes.Load(), int32(1))
	require.LessOrEqual(t, b.protected.Load(), int32(2*n))

	got, _ := e.m.Credentials()
	require.Equal(t, models.Credentials{Access: "a2", Refresh: "r1"}, got)
}
