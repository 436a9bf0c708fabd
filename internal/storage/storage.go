// storage задаёт контракт долговременного хранения пары токенов:
// один ключ, в котором лежит сериализованная пара (или ничего — анонимный режим).
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pribylovaa/storefront/internal/models"
)

var (
	// ErrNotFound — сохранённой пары нет.
	ErrNotFound = errors.New("credentials not found")
	// ErrCorrupted — значение не разбирается или пара неполная.
	ErrCorrupted = errors.New("credentials corrupted")
)

// CredentialStore — долговременное хранилище пары токенов.
type CredentialStore interface {
	// Load читает пару; ErrNotFound, если ключа нет; ErrCorrupted, если значение битое.
	Load(ctx context.Context) (models.Credentials, error)
	// Save атомарно заменяет сохранённую пару.
	Save(ctx context.Context, creds models.Credentials) error
	// Delete удаляет ключ; отсутствие ключа ошибкой не считается.
	Delete(ctx context.Context) error
	// Close освобождает ресурсы бэкенда хранения.
	Close() error
}

// Encode сериализует пару в JSON. Неполная пара не сохраняется.
func Encode(creds models.Credentials) ([]byte, error) {
	const op = "storage.Encode"

	if !creds.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrCorrupted)
	}

	b, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// Decode разбирает сохранённое значение.
func Decode(b []byte) (models.Credentials, error) {
	const op = "storage.Decode"

	var creds models.Credentials
	if err := json.Unmarshal(b, &creds); err != nil {
		return models.Credentials{}, fmt.Errorf("%s: %w: %v", op, ErrCorrupted, err)
	}

	if !creds.Valid() {
		return models.Credentials{}, fmt.Errorf("%s: %w", op, ErrCorrupted)
	}

	return creds, nil
}
