// transport — конвейер исходящих HTTP-запросов к бэкенду магазина.
//
// Порядок обработки одного запроса:
//  1. pre-send хуки (Hooks.PreSend) — только для неанонимных запросов;
//  2. цепочка интерсепторов (первый в списке — внешний, как у gRPC chain);
//  3. собственно HTTP-вызов.
//
// Статус >= 400 превращается в *apierrors.StatusError. Ошибка неанонимного
// запроса передаётся в Hooks.OnError вместе с Failure; Failure.Resend повторяет
// попытку через ту же цепочку интерсепторов, но мимо хуков, поэтому повторная
// неудача уже не попадает в OnError.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apierrors "github.com/pribylovaa/storefront/internal/errors"
)

// Request — исходящий запрос. Тело буферизовано, чтобы запрос можно было повторить.
// Anonymous помечает вызовы, которым не нужен bearer-заголовок
// (authenticate/register/refresh): к ним не применяются хуки.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      []byte
	Header    http.Header
	Anonymous bool
}

// NewRequest собирает запрос; in != nil кодируется в JSON-тело.
func NewRequest(method, path string, in any) (*Request, error) {
	const op = "transport.NewRequest"

	req := &Request{Method: method, Path: path, Header: make(http.Header)}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		req.Body = b
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// Response — буферизованный ответ бэкенда.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode разбирает JSON-тело ответа в out. Пустое тело — не ошибка.
func (r *Response) Decode(out any) error {
	if r == nil || out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("transport.Decode: %w", err)
	}

	return nil
}

// Invoker выполняет одну попытку запроса.
type Invoker func(ctx context.Context, req *Request) (*Response, error)

// Interceptor оборачивает попытку запроса (аналог grpc.UnaryClientInterceptor).
type Interceptor func(ctx context.Context, req *Request, next Invoker) (*Response, error)

// PreSendHook изменяет запрос перед первой отправкой.
type PreSendHook func(ctx context.Context, req *Request) error

// ErrorHook получает неудачную попытку и решает, чем она закончится для вызывающего.
type ErrorHook func(ctx context.Context, f Failure) (*Response, error)

// Failure — неудачная попытка запроса.
//
// Attempt — номер попытки: 0 — исходная отправка. Response может быть nil,
// если до бэкенда не дошли. Resend отправляет запрос ещё раз (через интерсепторы,
// без хуков) и возвращает результат как есть.
type Failure struct {
	Request  *Request
	Attempt  int
	Response *Response
	Err      error
	Resend   Invoker
}

// StatusCode — HTTP-статус неудачи или 0, если ответа не было.
func (f Failure) StatusCode() int {
	if f.Response != nil {
		return f.Response.StatusCode
	}
	if code, ok := apierrors.StatusCode(f.Err); ok {
		return code
	}

	return 0
}

// Hooks — явная композиция хуков сессии.
type Hooks struct {
	PreSend []PreSendHook
	OnError ErrorHook
}

// Doer — то, чем пользуются API-клиенты поверх транспорта.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Transport безопасен для конкурентного использования.
type Transport struct {
	baseURL      string
	hc           *http.Client
	interceptors []Interceptor
	hooks        Hooks
}

// New создаёт транспорт поверх baseURL. hc == nil — http.DefaultClient.
func New(baseURL string, hc *http.Client, interceptors ...Interceptor) *Transport {
	if hc == nil {
		hc = http.DefaultClient
	}

	return &Transport{
		baseURL:      strings.TrimRight(baseURL, "/"),
		hc:           hc,
		interceptors: interceptors,
	}
}

// With возвращает копию транспорта с добавленными хуками: pre-send хуки
// дописываются после имеющихся, OnError (если задан) заменяет прежний.
func (t *Transport) With(h Hooks) *Transport {
	cp := *t
	cp.hooks.PreSend = append(append([]PreSendHook(nil), t.hooks.PreSend...), h.PreSend...)
	if h.OnError != nil {
		cp.hooks.OnError = h.OnError
	}

	return &cp
}

// Do выполняет запрос по правилам, описанным в комментарии к пакету.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	const op = "transport.Do"

	if req.Header == nil {
		req.Header = make(http.Header)
	}

	if !req.Anonymous {
		for _, hook := range t.hooks.PreSend {
			if err := hook(ctx, req); err != nil {
				return nil, fmt.Errorf("%s: pre-send: %w", op, err)
			}
		}
	}

	attempt := t.chain()

	resp, err := attempt(ctx, req)
	if err == nil {
		return resp, nil
	}

	if req.Anonymous || t.hooks.OnError == nil {
		return resp, err
	}

	return t.hooks.OnError(ctx, Failure{
		Request:  req,
		Attempt:  0,
		Response: resp,
		Err:      err,
		Resend:   attempt,
	})
}

// chain собирает интерсепторы вокруг send: первый — внешний.
func (t *Transport) chain() Invoker {
	next := t.send
	for i := len(t.interceptors) - 1; i >= 0; i-- {
		ic, inner := t.interceptors[i], next
		next = func(ctx context.Context, req *Request) (*Response, error) {
			return ic(ctx, req, inner)
		}
	}

	return next
}

func (t *Transport) send(ctx context.Context, req *Request) (*Response, error) {
	const op = "transport.send"

	u := t.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if hreq.Header.Get("Accept") == "" {
		hreq.Header.Set("Accept", "application/json")
	}

	hresp, err := t.hc.Do(hreq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer hresp.Body.Close()

	b, err := io.ReadAll(hresp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}

	resp := &Response{StatusCode: hresp.StatusCode, Header: hresp.Header, Body: b}
	if hresp.StatusCode >= http.StatusBadRequest {
		return resp, apierrors.NewStatusError(hresp.StatusCode, b)
	}

	return resp, nil
}
