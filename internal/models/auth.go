// Входные/выходные модели эндпойнтов аутентификации бэкенда.
package models

// AuthRequest — тело authenticate/register.
// Role заполняется только при регистрации.
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// RefreshRequest — тело запроса на обновление access-токена.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse — ответ refresh: бэкенд выдаёт только новый access.
type RefreshResponse struct {
	Access string `json:"access"`
}
