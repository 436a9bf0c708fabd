package middleware

import (
	"log/slog"
	"net/http"

	logctx "github.com/pribylovaa/storefront/pkg/log"
)

// RequireSession — route guard: при isAuthenticated() == true пропускает запрос,
// иначе отвечает 303 See Other на loginPath.
func RequireSession(isAuthenticated func() bool, loginPath string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isAuthenticated() {
				next.ServeHTTP(w, r)
				return
			}

			logctx.From(r.Context()).Debug("guard_redirect",
				slog.String("path", r.URL.Path),
				slog.String("to", loginPath),
			)
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
		})
	}
}
