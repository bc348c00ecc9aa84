package storage

import (
	"context"
	"sync"
)

// MemorySlots keeps the session for the lifetime of the process only.
type MemorySlots struct {
	mu     sync.Mutex
	keys   Keys
	values map[string]string
}

func NewMemorySlots(keys Keys) *MemorySlots {
	return &MemorySlots{keys: keys, values: make(map[string]string)}
}

func (s *MemorySlots) Load(_ context.Context) (Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := Credentials{Token: s.values[s.keys.Token], Username: s.values[s.keys.Username]}
	if !creds.complete() {
		delete(s.values, s.keys.Token)
		delete(s.values, s.keys.Username)
		return Credentials{}, false, nil
	}
	return creds, true, nil
}

func (s *MemorySlots) Save(_ context.Context, creds Credentials) error {
	if !creds.complete() {
		return ErrEmptyCredentials
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[s.keys.Token] = creds.Token
	s.values[s.keys.Username] = creds.Username
	return nil
}

func (s *MemorySlots) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, s.keys.Token)
	delete(s.values, s.keys.Username)
	return nil
}

// Set writes a single raw slot. It exists so tests can model a half-written store.
func (s *MemorySlots) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *MemorySlots) Close() error { return nil }
