package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pribylovaa/storefront/internal/clients/transport"
	"github.com/pribylovaa/storefront/internal/config"
	"github.com/pribylovaa/storefront/internal/models"
)

var (
	// ErrIncompleteCredentials — бэкенд ответил успехом, но без полной пары токенов.
	ErrIncompleteCredentials = errors.New("backend returned incomplete credential pair")
	// ErrEmptyAccess — refresh вернул пустой access-токен.
	ErrEmptyAccess = errors.New("backend returned empty access token")
)

// AuthAPI — эндпойнты authenticate/register/refresh.
// Все запросы анонимные: к ним не применяются хуки сессии,
// поэтому 401 от refresh не может запустить ещё один refresh.
type AuthAPI struct {
	t     transport.Doer
	paths config.PathsConfig
}

func NewAuthAPI(t transport.Doer, paths config.PathsConfig) *AuthAPI {
	return &AuthAPI{t: t, paths: paths}
}

// Authenticate — POST {email, password} -> {access, refresh}.
func (a *AuthAPI) Authenticate(ctx context.Context, identifier, secret string) (models.Credentials, error) {
	const op = "clients.AuthAPI.Authenticate"

	creds, err := a.pair(ctx, a.paths.Login, models.AuthRequest{Email: identifier, Password: secret})
	if err != nil {
		return models.Credentials{}, fmt.Errorf("%s: %w", op, err)
	}

	return creds, nil
}

// Register — POST {email, password, role} -> {access, refresh}.
func (a *AuthAPI) Register(ctx context.Context, identifier, secret, role string) (models.Credentials, error) {
	const op = "clients.AuthAPI.Register"

	creds, err := a.pair(ctx, a.paths.Signup, models.AuthRequest{Email: identifier, Password: secret, Role: role})
	if err != nil {
		return models.Credentials{}, fmt.Errorf("%s: %w", op, err)
	}

	return creds, nil
}

// Refresh — POST {refresh} -> {access}.
func (a *AuthAPI) Refresh(ctx context.Context, refresh string) (string, error) {
	const op = "clients.AuthAPI.Refresh"

	req, err := transport.NewRequest(http.MethodPost, a.paths.Refresh, models.RefreshRequest{Refresh: refresh})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Anonymous = true

	var out models.RefreshResponse
	if err := do(ctx, a.t, req, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if out.Access == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyAccess)
	}

	return out.Access, nil
}

func (a *AuthAPI) pair(ctx context.Context, path string, in models.AuthRequest) (models.Credentials, error) {
	req, err := transport.NewRequest(http.MethodPost, path, in)
	if err != nil {
		return models.Credentials{}, err
	}
	req.Anonymous = true

	var creds models.Credentials
	if err := do(ctx, a.t, req, &creds); err != nil {
		return models.Credentials{}, err
	}
	if !creds.Valid() {
		return models.Credentials{}, ErrIncompleteCredentials
	}

	return creds, nil
}
