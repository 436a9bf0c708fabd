package interceptors

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/storefront/internal/clients/transport"
	apierrors "github.com/pribylovaa/storefront/internal/errors"
	"github.com/pribylovaa/storefront/pkg/log"
	"github.com/pribylovaa/storefront/pkg/redact"
)

// Logging — логирование попыток запросов к бэкенду.
// Поведение:
//   - берёт X-Request-Id из запроса (или генерирует новый и добавляет);
//   - добавляет поля method/path, прокладывает обогащённый логгер в контекст (pkg/log);
//   - пишет одну финальную запись на попытку: msg="backend", status, dur.
//     Отмена/дедлайн пишутся уровнем Warn, прочие транспортные ошибки — Error.
//
// Безопасность: не логирует тела; от Authorization в лог попадает только схема.
func Logging(base *slog.Logger) transport.Interceptor {
	if base == nil {
		base = slog.Default()
	}

	return func(ctx context.Context, req *transport.Request, next transport.Invoker) (*transport.Response, error) {
		start := time.Now()

		rid := req.Header.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
			req.Header.Set(HeaderRequestID, rid)
		}

		l := base.With(
			slog.String("request_id", rid),
			slog.String("method", req.Method),
			slog.String("path", req.Path),
		)
		if auth := req.Header.Get("Authorization"); auth != "" {
			l = l.With(slog.String("auth", redact.Authorization(auth)))
		}
		ctx = log.Into(ctx, l)

		resp, err := next(ctx, req)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}

		lvl := slog.LevelInfo
		attrs := []any{
			slog.Int("status", status),
			slog.Duration("dur", time.Since(start)),
		}
		if err != nil && resp == nil {
			lvl = slog.LevelError
			if apierrors.IsCanceled(err) {
				lvl = slog.LevelWarn
			}
			attrs = append(attrs, slog.String("err", err.Error()))
		}

		l.Log(ctx, lvl, "backend", attrs...)

		return resp, err
	}
}
