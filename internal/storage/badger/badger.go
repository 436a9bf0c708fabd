// badger хранит пару токенов под одним ключом встроенной БД Badger.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	badgerdb "github.com/dgraph-io/badger/v3"

	"github.com/pribylovaa/storefront/internal/models"
	"github.com/pribylovaa/storefront/internal/storage"
)

// Options — параметры открытия БД.
// InMemory игнорирует Dir (используется в тестах).
type Options struct {
	Dir      string
	Key      string
	InMemory bool
}

type Store struct {
	db  *badgerdb.DB
	key []byte
}

// New открывает (или создаёт) БД в каталоге opts.Dir.
func New(opts Options, log *slog.Logger) (*Store, error) {
	const op = "storage.badger.New"

	if log == nil {
		log = slog.Default()
	}

	if opts.Key == "" {
		return nil, fmt.Errorf("%s: empty key", op)
	}

	var bo badgerdb.Options
	switch {
	case opts.InMemory:
		bo = badgerdb.DefaultOptions("").WithInMemory(true)
	case opts.Dir != "":
		bo = badgerdb.DefaultOptions(opts.Dir)
	default:
		return nil, fmt.Errorf("%s: dir is required", op)
	}
	bo.Logger = &badgerLogger{logger: log.With(slog.String("component", "badger"))}

	db, err := badgerdb.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{db: db, key: []byte(opts.Key)}, nil
}

func (s *Store) Load(_ context.Context) (models.Credentials, error) {
	const op = "storage.badger.Load"

	var raw []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(s.key)
		if err != nil {
			return err
		}

		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return models.Credentials{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return models.Credentials{}, fmt.Errorf("%s: %w", op, err)
	}

	creds, err := storage.Decode(raw)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("%s: %w", op, err)
	}

	return creds, nil
}

func (s *Store) Save(_ context.Context, creds models.Credentials) error {
	const op = "storage.badger.Save"

	b, err := storage.Encode(creds)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(s.key, b)
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Delete(_ context.Context) error {
	const op = "storage.badger.Delete"

	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(s.key)
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// badgerLogger адаптирует slog.Logger к интерфейсу логгера Badger.
// Info Badger слишком болтлив для клиента, поэтому понижен до Debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

var _ storage.CredentialStore = (*Store)(nil)
