package contact

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ValidationError reports fields of a candidate contact that the schema rejects.
type ValidationError struct {
	// Fields maps the field name to the reason. Only failing fields are listed.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	messages := make([]string, 0, len(names))
	for _, name := range names {
		messages = append(messages, e.Fields[name])
	}
	return strings.Join(messages, ". ")
}

// NotFoundError is returned when no contact matches an id, or when there are no contacts at all.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// StoreError wraps a failure of the underlying contact store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// errNotFound is the message of all lookups that come back empty.
var errNotFound = &NotFoundError{Message: "Not Found"}

// StatusCode translates an error of the service into the HTTP status code of the response.
func StatusCode(err error) int {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var storeErr *StoreError
	switch {
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &validationErr), errors.As(err, &storeErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
