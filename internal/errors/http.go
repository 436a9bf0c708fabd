package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
)

// APIError — единый формат ошибок локального фронта.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку клиента витрины в HTTP-статус и тело ответа.
//
// Поведение:
//   - err == nil или ErrInternal — ошибка фронта: 500/internal;
//   - SessionExpired / AuthenticationFailed / Unauthorized -> 401 с разными кодами;
//   - Invalid -> 400;
//   - дедлайн -> 504, отмена -> 499;
//   - StatusError бэкенда: 4xx зеркалируются (400/403/404/409/429), 5xx -> 502;
//   - прочее (транспорт) -> 502/upstream_unavailable.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil || stderrors.Is(err, ErrInternal) {
		return resp(http.StatusInternalServerError, "internal", "internal error")
	}

	switch KindOf(err) {
	case KindSessionExpired:
		return resp(http.StatusUnauthorized, "session_expired", "session expired, login required")
	case KindAuthenticationFailed:
		return resp(http.StatusUnauthorized, "authentication_failed", "authentication failed")
	case KindInvalid:
		return resp(http.StatusBadRequest, "invalid_argument", "invalid argument")
	case KindUnauthorized:
		return resp(http.StatusUnauthorized, "unauthorized", "unauthorized")
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return resp(http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded")
	case stderrors.Is(err, context.Canceled):
		return resp(StatusClientClosedRequest, "canceled", "canceled")
	}

	if code, ok := StatusCode(err); ok {
		return fromBackend(code)
	}

	return resp(http.StatusBadGateway, "upstream_unavailable", "backend unavailable")
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		body.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// fromBackend — маппинг статуса бэкенда в ответ фронта.
func fromBackend(code int) (int, ErrorResponse) {
	switch {
	case code == http.StatusBadRequest:
		return resp(http.StatusBadRequest, "invalid_argument", "invalid argument")
	case code == http.StatusForbidden:
		return resp(http.StatusForbidden, "permission_denied", "permission denied")
	case code == http.StatusNotFound:
		return resp(http.StatusNotFound, "not_found", "not found")
	case code == http.StatusConflict:
		return resp(http.StatusConflict, "conflict", "conflict")
	case code == http.StatusTooManyRequests:
		return resp(http.StatusTooManyRequests, "resource_exhausted", "resource exhausted")
	case code >= 400 && code < 500:
		return resp(code, "rejected", "request rejected by backend")
	default:
		return resp(http.StatusBadGateway, "upstream_unavailable", "backend unavailable")
	}
}

func resp(status int, code, msg string) (int, ErrorResponse) {
	return status, ErrorResponse{Error: APIError{Code: code, Message: msg}}
}
