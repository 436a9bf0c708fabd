// file хранит пару токенов в одном JSON-файле; запись через временный файл и rename.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pribylovaa/storefront/internal/models"
	"github.com/pribylovaa/storefront/internal/storage"
)

type Store struct {
	path string
	mu   sync.Mutex
}

// New готовит хранилище; каталог файла создаётся с правами 0700.
func New(path string) (*Store, error) {
	const op = "storage.file.New"

	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{path: path}, nil
}

func (s *Store) Load(_ context.Context) (models.Credentials, error) {
	const op = "storage.file.Load"

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Credentials{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return models.Credentials{}, fmt.Errorf("%s: %w", op, err)
	}

	creds, err := storage.Decode(b)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("%s: %w", op, err)
	}

	return creds, nil
}

// Save пишет во временный файл рядом и переименовывает его поверх старого,
// так что читатель видит либо прежнюю пару, либо новую.
func (s *Store) Save(_ context.Context, creds models.Credentials) error {
	const op = "storage.file.Save"

	b, err := storage.Encode(creds)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tokens-*")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Delete(_ context.Context) error {
	const op = "storage.file.Delete"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Close() error { return nil }

// Проверка на соответствие интерфейсу CredentialStore.
var _ storage.CredentialStore = (*Store)(nil)
