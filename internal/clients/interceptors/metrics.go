package interceptors

import (
	"context"
	"time"

	"github.com/pribylovaa/storefront/internal/clients/transport"
)

// RequestObserver — приёмник метрик попыток (internal/metrics.Metrics).
type RequestObserver interface {
	ObserveBackendRequest(method string, status int, d time.Duration)
}

// WithMetrics учитывает каждую попытку запроса: метод, статус (0 — ответа нет), длительность.
func WithMetrics(obs RequestObserver) transport.Interceptor {
	return func(ctx context.Context, req *transport.Request, next transport.Invoker) (*transport.Response, error) {
		if obs == nil {
			return next(ctx, req)
		}

		start := time.Now()
		resp, err := next(ctx, req)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		obs.ObserveBackendRequest(req.Method, status, time.Since(start))

		return resp, err
	}
}
