// Package contact implements the rules of the contact lifecycle on top of an exchangeable store.
package contact

import (
	"context"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
)

// Repository is the store of contacts. Lookups use the caller-supplied id of a contact, never the
// key that the store assigns. If several contacts share an id, the first one wins.
type Repository interface {
	// Insert persists a new contact and returns it together with the key assigned by the store.
	Insert(ctx context.Context, c model.Contact) (model.Contact, error)
	// FindAll returns all contacts.
	FindAll(ctx context.Context) ([]model.Contact, error)
	// FindOne returns the first contact with the given id. The boolean is false if there is none.
	FindOne(ctx context.Context, id int64) (model.Contact, bool, error)
	// DeleteOne removes the first contact with the given id and returns the number of removed
	// contacts.
	DeleteOne(ctx context.Context, id int64) (int64, error)
	// Replace overwrites the stored contact that has the key of c. The boolean is false if no
	// contact has this key any more.
	Replace(ctx context.Context, c model.Contact) (bool, error)
	// Ping checks that the store can be reached.
	Ping(ctx context.Context) error
}

// Service offers the operations on contacts.
type Service struct {
	repo   Repository
	schema *Schema
	logger log.Logger
}

// NewService creates a contact service working on the given repository.
func NewService(repo Repository, logger log.Logger) (*Service, error) {
	schema, err := NewSchema()
	if err != nil {
		return nil, err
	}
	return &Service{repo: repo, schema: schema, logger: logger}, nil
}

// ListContacts returns all contacts. An empty store is reported as a *NotFoundError rather than
// an empty list.
func (s *Service) ListContacts(ctx context.Context) ([]model.Contact, error) {
	contacts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list contacts", Err: err}
	}
	if len(contacts) == 0 {
		return nil, errNotFound
	}
	return contacts, nil
}

// CreateContact validates and persists a new contact. The caller-supplied id is stored as it is.
func (s *Service) CreateContact(ctx context.Context, candidate model.Contact) (model.Contact, error) {
	level.Debug(s.logger).Log("msg", "creating contact", "id", formatId(candidate.Id))
	candidate.Key = ""
	if err := s.schema.Check(candidate); err != nil {
		level.Warn(s.logger).Log("msg", "contact rejected", "err", err)
		return model.Contact{}, err
	}
	saved, err := s.repo.Insert(ctx, candidate)
	if err != nil {
		level.Error(s.logger).Log("msg", "creating contact failed", "err", err)
		return model.Contact{}, &StoreError{Op: "create contact", Err: err}
	}
	level.Debug(s.logger).Log("msg", "contact created", "key", saved.Key, "id", formatId(saved.Id))
	return saved, nil
}

// GetContactById returns the first contact with the given id.
func (s *Service) GetContactById(ctx context.Context, id int64) (model.Contact, error) {
	c, found, err := s.repo.FindOne(ctx, id)
	if err != nil {
		return model.Contact{}, &StoreError{Op: "find contact", Err: err}
	}
	if !found {
		return model.Contact{}, errNotFound
	}
	return c, nil
}

// DeleteContactById removes the first contact with the given id. Deleting an id a second time
// fails with a *NotFoundError.
func (s *Service) DeleteContactById(ctx context.Context, id int64) (model.DeleteResult, error) {
	deleted, err := s.repo.DeleteOne(ctx, id)
	if err != nil {
		return model.DeleteResult{}, &StoreError{Op: "delete contact", Err: err}
	}
	if deleted == 0 {
		return model.DeleteResult{}, errNotFound
	}
	return model.DeleteResult{Acknowledged: true, DeletedCount: deleted}, nil
}

// UpdateContact loads the first contact with the given id, overwrites the fields present in the
// patch and saves the result. The merged contact has to pass the schema; otherwise nothing is
// written.
func (s *Service) UpdateContact(ctx context.Context, id int64, patch model.Patch) (model.Contact, error) {
	level.Debug(s.logger).Log("msg", "updating contact", "id", id)
	existing, found, err := s.repo.FindOne(ctx, id)
	if err != nil {
		return model.Contact{}, &StoreError{Op: "find contact", Err: err}
	}
	if !found {
		level.Info(s.logger).Log("msg", "contact to update not found", "id", id)
		return model.Contact{}, notFoundId(id)
	}

	merged := existing.Merge(patch)
	if err := s.schema.Check(merged); err != nil {
		level.Warn(s.logger).Log("msg", "update rejected", "id", id, "err", err)
		return model.Contact{}, err
	}
	replaced, err := s.repo.Replace(ctx, merged)
	if err != nil {
		level.Error(s.logger).Log("msg", "updating contact failed", "id", id, "err", err)
		return model.Contact{}, &StoreError{Op: "update contact", Err: err}
	}
	if !replaced {
		return model.Contact{}, notFoundId(id)
	}
	return merged, nil
}

// Ping checks the connection to the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func notFoundId(id int64) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf("Contact with ID %q not found", fmt.Sprint(id))}
}

func formatId(id *int64) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(*id)
}
