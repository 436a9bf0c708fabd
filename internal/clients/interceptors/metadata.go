// interceptors предоставляет набор интерсепторов для исходящих запросов к бэкенду.
package interceptors

import (
	"context"

	"github.com/pribylovaa/storefront/internal/clients/transport"
)

type CtxKey string

const (
	CtxRequestID CtxKey = "request_id"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderUserAgent = "User-Agent"
)

// WithMetadata — добавляет в исходящий запрос заголовки:
//   - X-Request-Id (если есть в контексте и ещё не задан),
//   - User-Agent (если передан параметром).
//
// Authorization здесь не трогается: его ставит pre-send хук сессии.
func WithMetadata(userAgent string) transport.Interceptor {
	return func(ctx context.Context, req *transport.Request, next transport.Invoker) (*transport.Response, error) {
		if v := ctx.Value(CtxRequestID); v != nil {
			if rid, _ := v.(string); rid != "" && req.Header.Get(HeaderRequestID) == "" {
				req.Header.Set(HeaderRequestID, rid)
			}
		}
		if userAgent != "" {
			req.Header.Set(HeaderUserAgent, userAgent)
		}

		return next(ctx, req)
	}
}
