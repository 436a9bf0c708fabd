package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/storefront/internal/clients/transport"
	apierrors "github.com/pribylovaa/storefront/internal/errors"
	"github.com/pribylovaa/storefront/internal/models"
)

// RetryState — состояние восстановления одного запроса после 401.
//
//	Initial -> RefreshInFlight -> Retried
//	        \                  \-> GaveUp
//	         \-> GaveUp
//
// Retried и GaveUp терминальны; для одного запроса состояния не повторяются.
type RetryState int

const (
	StateInitial RetryState = iota
	StateRefreshInFlight
	StateRetried
	StateGaveUp
)

func (s RetryState) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateRefreshInFlight:
		return "refresh_in_flight"
	case StateRetried:
		return "retried"
	case StateGaveUp:
		return "gave_up"
	default:
		return "unknown"
	}
}

// Decide — переход из Initial: RefreshInFlight только для первой попытки
// (Attempt == 0), завершившейся ровно 401, при наличии refresh-токена.
// Иначе — GaveUp, ошибка уходит вызывающему без изменений.
func Decide(f transport.Failure, creds *models.Credentials) RetryState {
	switch {
	case f.Attempt != 0:
		return StateGaveUp
	case f.StatusCode() != http.StatusUnauthorized:
		return StateGaveUp
	case creds == nil || creds.Refresh == "":
		return StateGaveUp
	default:
		return StateRefreshInFlight
	}
}

// Hooks — хуки сессии для transport.Transport.With.
func (m *Manager) Hooks() transport.Hooks {
	return transport.Hooks{
		PreSend: []transport.PreSendHook{m.AttachCredential},
		OnError: m.HandleUnauthorized,
	}
}

// AttachCredential ставит Authorization: Bearer <access>, если сессия есть.
func (m *Manager) AttachCredential(_ context.Context, req *transport.Request) error {
	if c := m.state.get(); c != nil {
		if req.Header == nil {
			req.Header = make(http.Header)
		}
		req.Header.Set("Authorization", "Bearer "+c.Access)
	}

	return nil
}

// HandleUnauthorized — post-error хук транспорта.
//
//   - GaveUp: возвращает исходную неудачу как есть;
//   - refresh не удался: сессия очищается (EventSessionExpired), возвращается
//     ошибка refresh, обёрнутая ErrSessionExpired; исходный 401 отбрасывается;
//   - refresh удался: новый access сохраняется (refresh остаётся прежним),
//     запрос повторяется ровно один раз, результат повтора возвращается как есть.
func (m *Manager) HandleUnauthorized(ctx context.Context, f transport.Failure) (*transport.Response, error) {
	const op = "session.HandleUnauthorized"

	creds := m.state.get()
	if Decide(f, creds) != StateRefreshInFlight {
		return f.Response, f.Err
	}

	l := m.logger(ctx)

	// Отмена вызывающего (ушёл браузер) не считается отказом refresh:
	// refresh и запись пары доводятся до конца под таймаутом транспорта.
	rctx := context.WithoutCancel(ctx)

	access, err := m.auth.Refresh(rctx, creds.Refresh)
	if err != nil {
		l.Info("refresh_failed", slog.String("err", err.Error()))
		m.expire(rctx)
		return nil, fmt.Errorf("%s: %w: %w", op, apierrors.ErrSessionExpired, err)
	}

	next, err := m.rotate(rctx, creds, access)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	l.Debug("request_retry", slog.String("state", StateRetried.String()))

	f.Request.Header.Set("Authorization", "Bearer "+next.Access)

	return f.Resend(ctx, f.Request)
}

// rotate устанавливает новый access поверх пары from.
//
// Если пару успели очистить (logout/expire) — ErrSessionExpired, в том числе
// когда logout пришёлся на запись в хранилище.
// Если её заменил новый вход (другой refresh) — побеждает новая пара.
func (m *Manager) rotate(ctx context.Context, from *models.Credentials, access string) (models.Credentials, error) {
	for {
		epoch := m.epoch.Load()
		cur := m.state.get()
		if cur == nil {
			return models.Credentials{}, apierrors.ErrSessionExpired
		}
		if cur.Refresh != from.Refresh {
			return *cur, nil
		}

		mine, ok := m.state.swap(cur, models.Credentials{Access: access, Refresh: cur.Refresh})
		if !ok {
			continue
		}
		next := *mine

		if err := m.store.Save(ctx, next); err != nil {
			m.logger(ctx).Warn("session_persist_failed", slog.String("err", err.Error()))
		}

		if m.epoch.Load() != epoch {
			m.reconcile(ctx, mine)
			return models.Credentials{}, apierrors.ErrSessionExpired
		}

		m.emit(ctx, EventRefreshed)

		return next, nil
	}
}
