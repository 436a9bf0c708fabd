package models

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials — пара токенов текущей сессии.
//
// Описание:
//   - Access — короткоживущий bearer-токен для авторизации запросов;
//   - Refresh — долгоживущий токен, используется только для выпуска нового Access.
//
// Пара атомарна: валидным считается только состояние, где заданы оба токена.
type Credentials struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Valid сообщает, что обе части пары присутствуют.
func (c Credentials) Valid() bool {
	return c.Access != "" && c.Refresh != ""
}

// TokenClaims — поля access-токена, полезные для отображения состояния сессии.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// Claims разбирает access-токен как JWT без проверки подписи.
// Непрозрачный (не JWT) токен даёт ok == false.
//
// Результат используется только для отображения: решение об обновлении
// токена принимается исключительно по ответу 401 от бэкенда.
func (c Credentials) Claims() (TokenClaims, bool) {
	if c.Access == "" {
		return TokenClaims{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.Access, claims); err != nil {
		return TokenClaims{}, false
	}

	var out TokenClaims
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		out.Subject = sub
	} else if uid, ok := claims["user_id"]; ok {
		// simplejwt кладёт идентификатор в user_id, а не в sub.
		out.Subject = fmt.Sprint(uid)
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time.UTC()
	}

	return out, true
}
