// errors описывает таксономию ошибок клиента витрины и стандартизирует
// ответы об ошибках локального HTTP-фронта.
//
// Виды ошибок (Kind):
//   - AuthenticationFailed — неверные учётные данные при login/signup;
//   - Unauthorized — 401 на защищённом запросе (запускает refresh-and-retry);
//   - SessionExpired — refresh не удался, сессия сброшена;
//   - NetworkOrServer — всё остальное: транспорт, 5xx, прочие 4xx;
//   - Invalid — локальная проверка входных данных до похода в бэкенд.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

var (
	// ErrAuthenticationFailed — login/signup отклонён бэкендом или не дошёл до него.
	// Состояние сессии при этом не меняется.
	ErrAuthenticationFailed = stderrors.New("authentication failed")

	// ErrUnauthorized — бэкенд ответил 401 на защищённый запрос.
	ErrUnauthorized = stderrors.New("unauthorized")

	// ErrSessionExpired — обновить access-токен не удалось, сессия очищена.
	ErrSessionExpired = stderrors.New("session expired")

	// ErrInvalid — входные данные отклонены локально.
	ErrInvalid = stderrors.New("invalid argument")

	// ErrInternal — ошибка самого фронта (паника, сбой сериализации).
	ErrInternal = stderrors.New("internal error")
)

// Kind — вид ошибки для принятия решений вызывающей стороной.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthenticationFailed
	KindUnauthorized
	KindSessionExpired
	KindNetworkOrServer
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationFailed:
		return "authentication_failed"
	case KindUnauthorized:
		return "unauthorized"
	case KindSessionExpired:
		return "session_expired"
	case KindNetworkOrServer:
		return "network_or_server"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// StatusError — неуспешный HTTP-ответ бэкенда (status >= 400).
// Message — человекочитаемое описание из тела ответа, если бэкенд его прислал.
type StatusError struct {
	StatusCode int
	Message    string
	Body       []byte
}

// NewStatusError собирает StatusError и пытается достать сообщение из тела:
// поддерживаются {"detail": ...}, {"message": ...} и {"error": "..."}.
func NewStatusError(code int, body []byte) *StatusError {
	e := &StatusError{StatusCode: code, Body: body}

	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Detail != "":
			e.Message = payload.Detail
		case payload.Message != "":
			e.Message = payload.Message
		default:
			if s, ok := payload.Error.(string); ok {
				e.Message = s
			}
		}
	}

	return e
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("backend responded %d", e.StatusCode)
}

// Unwrap позволяет проверять 401 через errors.Is(err, ErrUnauthorized).
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	return nil
}

// StatusCode возвращает HTTP-статус бэкенда, если err содержит StatusError.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if stderrors.As(err, &se) {
		return se.StatusCode, true
	}

	return 0, false
}

// KindOf классифицирует ошибку.
// Порядок проверок важен: SessionExpired и AuthenticationFailed оборачивают
// исходные 401, поэтому проверяются раньше Unauthorized.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case stderrors.Is(err, ErrSessionExpired):
		return KindSessionExpired
	case stderrors.Is(err, ErrAuthenticationFailed):
		return KindAuthenticationFailed
	case stderrors.Is(err, ErrInvalid):
		return KindInvalid
	case stderrors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindNetworkOrServer
	}
}

// IsCanceled — ошибка вызвана отменой или дедлайном контекста.
func IsCanceled(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
