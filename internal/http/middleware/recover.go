package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/storefront/internal/errors"
	logctx "github.com/pribylovaa/storefront/pkg/log"
)

// Recover перехватывает panic в хендлерах фронта и отвечает 500/internal.
//
// В лог (уровень Error) уходят путь, шаблон маршрута chi и причина;
// стек — отдельной записью уровня Debug. Клиенту причина не отдаётся.
// Если хендлер успел записать заголовки, ответ не переписывается.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				l := logctx.From(r.Context())
				l.LogAttrs(r.Context(), slog.LevelError, "panic",
					slog.String("path", r.URL.Path),
					slog.String("route", routePattern(r)),
					slog.Any("reason", rec),
				)
				l.Debug("panic_stack", slog.String("stack", string(debug.Stack())))

				if sw.status != 0 {
					return
				}
				apierrors.WriteError(sw, r, fmt.Errorf("panic: %w", apierrors.ErrInternal))
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

// routePattern — шаблон маршрута chi ("/admin/products/{id}") или "" вне chi.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
