package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerSlots persists the session in an embedded badger database.
type BadgerSlots struct {
	db   *badger.DB
	keys Keys
}

// NewBadgerSlots opens (or creates) the database in dir. An empty dir opens
// an in-memory database.
func NewBadgerSlots(dir string, keys Keys) (*BadgerSlots, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session database failed: %w", err)
	}
	return &BadgerSlots{db: db, keys: keys}, nil
}

func (s *BadgerSlots) Load(_ context.Context) (Credentials, bool, error) {
	var creds Credentials
	err := s.db.View(func(txn *badger.Txn) error {
		token, err := readSlot(txn, s.keys.Token)
		if err != nil {
			return err
		}
		username, err := readSlot(txn, s.keys.Username)
		if err != nil {
			return err
		}
		creds = Credentials{Token: token, Username: username}
		return nil
	})
	if err != nil {
		return Credentials{}, false, fmt.Errorf("read session slots failed: %w", err)
	}
	if !creds.complete() {
		if creds.Token != "" || creds.Username != "" {
			if err := s.Clear(context.Background()); err != nil {
				return Credentials{}, false, err
			}
		}
		return Credentials{}, false, nil
	}
	return creds, true, nil
}

func (s *BadgerSlots) Save(_ context.Context, creds Credentials) error {
	if !creds.complete() {
		return ErrEmptyCredentials
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(s.keys.Token), []byte(creds.Token)); err != nil {
			return err
		}
		return txn.Set([]byte(s.keys.Username), []byte(creds.Username))
	})
	if err != nil {
		return fmt.Errorf("write session slots failed: %w", err)
	}
	return nil
}

func (s *BadgerSlots) Clear(_ context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(s.keys.Token)); err != nil {
			return err
		}
		return txn.Delete([]byte(s.keys.Username))
	})
	if err != nil {
		return fmt.Errorf("clear session slots failed: %w", err)
	}
	return nil
}

func (s *BadgerSlots) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func readSlot(txn *badger.Txn, key string) (string, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}
