package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/pribylovaa/storefront/internal/clients/interceptors"
)

// RequestID обеспечивает наличие X-Request-Id:
//  1. берёт входящий заголовок, если он есть;
//  2. иначе генерирует UUID;
//  3. пишет id в заголовки ответа и запроса и кладёт в контекст по ключу
//     interceptors.CtxRequestID — оттуда его забирает metadata-интерсептор,
//     так что запросы к бэкенду несут тот же id.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(interceptors.HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
				r.Header.Set(interceptors.HeaderRequestID, id)
			}
			w.Header().Set(interceptors.HeaderRequestID, id)

			ctx := context.WithValue(r.Context(), interceptors.CtxRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
