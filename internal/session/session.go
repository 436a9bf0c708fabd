// session управляет парой токенов текущего пользователя.
//
// Manager:
//   - восстанавливает пару из хранилища при старте (нет/битая/неполная -> анонимный режим);
//   - login/signup: пара сначала сохраняется, потом публикуется в памяти;
//   - logout: безусловно очищает память и хранилище;
//   - AttachCredential — pre-send хук транспорта (Authorization: Bearer <access>);
//   - HandleUnauthorized — post-error хук: один refresh и один повтор на запрос.
//
// Конкурентность: пара хранится за atomic.Pointer и заменяется целиком,
// читатели видят старую или новую пару, но никогда не «половинку».
// Результат refresh устанавливается compare-and-swap'ом относительно той пары,
// из которой он получен. Каждый logout/expire увеличивает эпоху; запись в
// хранилище, за время которой эпоха сменилась, откатывается (reconcile).
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	apierrors "github.com/pribylovaa/storefront/internal/errors"
	"github.com/pribylovaa/storefront/internal/models"
	"github.com/pribylovaa/storefront/internal/storage"
	"github.com/pribylovaa/storefront/pkg/log"
	"github.com/pribylovaa/storefront/pkg/redact"
)

// DefaultRole — роль, с которой регистрируется новый пользователь.
const DefaultRole = "customer"

// Authenticator — эндпойнты аутентификации бэкенда (clients.AuthAPI).
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, secret string) (models.Credentials, error)
	Register(ctx context.Context, identifier, secret, role string) (models.Credentials, error)
	Refresh(ctx context.Context, refresh string) (string, error)
}

// Manager владеет парой токенов: память, хранилище и refresh.
type Manager struct {
	state  holder
	epoch  atomic.Uint64
	store  storage.CredentialStore
	auth   Authenticator
	log    *slog.Logger
	role   string
	notify Notifier
}

// Option настраивает Manager.
type Option func(*Manager)

// WithLogger задаёт логгер менеджера; nil игнорируется.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithDefaultRole задаёт роль для Signup; пустая строка игнорируется.
func WithDefaultRole(role string) Option {
	return func(m *Manager) {
		if role != "" {
			m.role = role
		}
	}
}

// WithNotifier подписывает n на события сессии.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notify = n }
}

// New создаёт Manager и однократно восстанавливает пару из store.
func New(ctx context.Context, store storage.CredentialStore, auth Authenticator, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		auth:  auth,
		log:   slog.Default(),
		role:  DefaultRole,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.restore(ctx)

	return m
}

func (m *Manager) restore(ctx context.Context) {
	creds, err := m.store.Load(ctx)
	switch {
	case err == nil:
		m.state.set(creds)
		m.log.Debug("session_restored")
	case errors.Is(err, storage.ErrNotFound):
		m.log.Debug("session_absent")
	case errors.Is(err, storage.ErrCorrupted):
		m.log.Warn("session_corrupted_dropped", slog.String("err", err.Error()))
		if err := m.store.Delete(ctx); err != nil {
			m.log.Warn("session_delete_failed", slog.String("err", err.Error()))
		}
	default:
		m.log.Warn("session_restore_failed", slog.String("err", err.Error()))
	}
}

// Login аутентифицирует пользователя и устанавливает сессию.
// При ошибке состояние не меняется, ошибка оборачивает ErrAuthenticationFailed.
func (m *Manager) Login(ctx context.Context, identifier, secret string) (models.Credentials, error) {
	const op = "session.Login"

	creds, err := m.auth.Authenticate(ctx, identifier, secret)
	if err != nil {
		m.logger(ctx).Info("login_failed", slog.String("email", redact.Email(identifier)))
		return models.Credentials{}, fmt.Errorf("%s: %w: %w", op, apierrors.ErrAuthenticationFailed, err)
	}

	if err := m.establish(ctx, creds); err != nil {
		return models.Credentials{}, fmt.Errorf("%s: %w", op, err)
	}

	m.logger(ctx).Info("login_ok", slog.String("email", redact.Email(identifier)))
	m.emit(ctx, EventLogin)

	return creds, nil
}

// Signup регистрирует пользователя с ролью по умолчанию; успех равносилен Login.
func (m *Manager) Signup(ctx context.Context, identifier, secret string) (models.Credentials, error) {
	const op = "session.Signup"

	creds, err := m.auth.Register(ctx, identifier, secret, m.role)
	if err != nil {
		m.logger(ctx).Info("signup_failed", slog.String("email", redact.Email(identifier)))
		return models.Credentials{}, fmt.Errorf("%s: %w: %w", op, apierrors.ErrAuthenticationFailed, err)
	}

	if err := m.establish(ctx, creds); err != nil {
		return models.Credentials{}, fmt.Errorf("%s: %w", op, err)
	}

	m.logger(ctx).Info("signup_ok", slog.String("email", redact.Email(identifier)))
	m.emit(ctx, EventSignup)

	return creds, nil
}

// establish сохраняет пару и только после этого публикует её в памяти.
// Если за это время прошёл logout, вход отменяется: ErrSessionExpired.
func (m *Manager) establish(ctx context.Context, creds models.Credentials) error {
	if !creds.Valid() {
		return fmt.Errorf("%w: incomplete credential pair", apierrors.ErrAuthenticationFailed)
	}

	epoch := m.epoch.Load()

	if err := m.store.Save(ctx, creds); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}

	mine := m.state.set(creds)

	if m.epoch.Load() != epoch {
		m.reconcile(ctx, mine)
		return fmt.Errorf("%w: logged out during login", apierrors.ErrSessionExpired)
	}

	return nil
}

// reconcile снимает пару mine, опубликованную после logout, и приводит
// хранилище к состоянию памяти: нет пары — ключ удаляется.
func (m *Manager) reconcile(ctx context.Context, mine *models.Credentials) {
	m.state.drop(mine)

	var err error
	if cur := m.state.get(); cur != nil {
		err = m.store.Save(ctx, *cur)
	} else {
		err = m.store.Delete(ctx)
	}
	if err != nil {
		m.logger(ctx).Warn("session_reconcile_failed", slog.String("err", err.Error()))
		return
	}

	m.logger(ctx).Debug("session_reconciled")
}

// Logout очищает сессию. Всегда успешен и идемпотентен:
// ошибки хранилища только логируются.
func (m *Manager) Logout(ctx context.Context) {
	m.epoch.Add(1)
	prev := m.state.clear()

	if err := m.store.Delete(ctx); err != nil {
		m.logger(ctx).Warn("session_delete_failed", slog.String("err", err.Error()))
	}

	if prev != nil {
		m.emit(ctx, EventLogout)
	}
}

// IsAuthenticated — true, если пара присутствует.
func (m *Manager) IsAuthenticated() bool {
	return m.state.get() != nil
}

// Credentials возвращает копию текущей пары.
func (m *Manager) Credentials() (models.Credentials, bool) {
	c := m.state.get()
	if c == nil {
		return models.Credentials{}, false
	}

	return *c, true
}

// expire — принудительный выход после неудачного refresh.
func (m *Manager) expire(ctx context.Context) {
	m.epoch.Add(1)
	m.state.clear()

	if err := m.store.Delete(ctx); err != nil {
		m.logger(ctx).Warn("session_delete_failed", slog.String("err", err.Error()))
	}

	m.emit(ctx, EventSessionExpired)
}

// logger — логгер запроса из контекста или логгер менеджера.
func (m *Manager) logger(ctx context.Context) *slog.Logger {
	return log.FromOr(ctx, m.log)
}
