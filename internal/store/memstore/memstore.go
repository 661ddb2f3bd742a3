// Package memstore keeps contacts in memory. It serves unit tests and short-lived demo servers.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
)

// Store is an in-memory contact store. Contacts are kept in insertion order, so "first match"
// means the oldest contact with an id.
type Store struct {
	mu       sync.Mutex
	contacts []model.Contact
	err      error
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// WithError makes all subsequent calls fail with err. A nil err restores normal operation.
func (s *Store) WithError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

// Insert stores a copy of c under a fresh key.
func (s *Store) Insert(_ context.Context, c model.Contact) (model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.Contact{}, s.err
	}
	c = clone(c)
	c.Key = uuid.NewString()
	s.contacts = append(s.contacts, c)
	return clone(c), nil
}

// FindAll returns copies of all contacts.
func (s *Store) FindAll(_ context.Context) ([]model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	contacts := make([]model.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		contacts = append(contacts, clone(c))
	}
	return contacts, nil
}

// FindOne returns the first contact with the given id.
func (s *Store) FindOne(_ context.Context, id int64) (model.Contact, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.Contact{}, false, s.err
	}
	i := s.indexOfId(id)
	if i < 0 {
		return model.Contact{}, false, nil
	}
	return clone(s.contacts[i]), true, nil
}

// DeleteOne removes the first contact with the given id.
func (s *Store) DeleteOne(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	i := s.indexOfId(id)
	if i < 0 {
		return 0, nil
	}
	s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
	return 1, nil
}

// Replace overwrites the contact stored under the key of c.
func (s *Store) Replace(_ context.Context, c model.Contact) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	for i := range s.contacts {
		if s.contacts[i].Key == c.Key {
			s.contacts[i] = clone(c)
			return true, nil
		}
	}
	return false, nil
}

// Ping fails only if an error has been configured.
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Len returns the number of stored contacts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts)
}

func (s *Store) indexOfId(id int64) int {
	for i, c := range s.contacts {
		if c.Id != nil && *c.Id == id {
			return i
		}
	}
	return -1
}

// clone copies c including the id it points to, so callers never share state with the store.
func clone(c model.Contact) model.Contact {
	if c.Id != nil {
		c.Id = model.Int64(*c.Id)
	}
	return c
}
