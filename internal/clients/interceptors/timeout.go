package interceptors

import (
	"context"
	"time"

	"github.com/pribylovaa/storefront/internal/clients/transport"
)

// WithTimeout навешивает таймаут d на каждую попытку запроса, если у контекста
// ещё нет дедлайна. Существующий дедлайн не переопределяется.
//
// Контракт:
//  1. d <= 0 — не модифицирует контекст, просто вызывает next;
//  2. у ctx уже есть deadline — оставляет как есть;
//  3. иначе — оборачивает ctx через context.WithTimeout(ctx, d), гарантированно
//     вызывает cancel() и передаёт обёрнутый ctx дальше.
//
// Тело ответа транспорт читает целиком до возврата, поэтому cancel после
// next безопасен.
func WithTimeout(d time.Duration) transport.Interceptor {
	return func(ctx context.Context, req *transport.Request, next transport.Invoker) (*transport.Response, error) {
		if d <= 0 {
			return next(ctx, req)
		}
		if _, ok := ctx.Deadline(); ok {
			return next(ctx, req)
		}

		cctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		return next(cctx, req)
	}
}
