package clients

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/storefront/internal/clients/interceptors"
	"github.com/pribylovaa/storefront/internal/clients/transport"
	"github.com/pribylovaa/storefront/internal/config"
)

// New собирает базовый транспорт к бэкенду магазина.
// Цепочка интерсепторов: metadata -> timeout -> logging -> metrics.
//
// Хуки сессии сюда не входят: их явно добавляет вызывающий через
// transport.Transport.With. obs может быть nil.
func New(cfg config.Config, log *slog.Logger, obs interceptors.RequestObserver) *transport.Transport {
	chain := []transport.Interceptor{
		interceptors.WithMetadata(cfg.Backend.UserAgent),
		interceptors.WithTimeout(cfg.Timeouts.Request),
		interceptors.Logging(log),
	}
	if obs != nil {
		chain = append(chain, interceptors.WithMetrics(obs))
	}

	// Таймауты задаёт интерсептор, а не http.Client: он уважает дедлайн вызывающего.
	hc := &http.Client{}

	return transport.New(cfg.Backend.BaseURL, hc, chain...)
}

// do — общий путь JSON-вызова: собрать запрос, выполнить, разобрать ответ в out.
func do(ctx context.Context, d transport.Doer, req *transport.Request, out any) error {
	resp, err := d.Do(ctx, req)
	if err != nil {
		return err
	}

	return resp.Decode(out)
}
