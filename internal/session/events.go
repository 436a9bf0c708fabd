package session

import (
	"context"
	"log/slog"
)

// Event — изменение состояния сессии, о котором уведомляются зависимые части
// (метрики, навигация фронта на страницу входа).
type Event int

const (
	EventLogin Event = iota + 1
	EventSignup
	EventRefreshed
	EventLogout
	// EventSessionExpired — refresh не удался, пользователя нужно отправить на вход.
	EventSessionExpired
)

func (e Event) String() string {
	switch e {
	case EventLogin:
		return "login"
	case EventSignup:
		return "signup"
	case EventRefreshed:
		return "refreshed"
	case EventLogout:
		return "logout"
	case EventSessionExpired:
		return "session_expired"
	default:
		return "unknown"
	}
}

// Notifier вызывается синхронно после изменения состояния.
type Notifier func(ctx context.Context, ev Event)

func (m *Manager) emit(ctx context.Context, ev Event) {
	m.logger(ctx).Debug("session_event", slog.String("event", ev.String()))

	if m.notify != nil {
		m.notify(ctx, ev)
	}
}
