// Package form implements the create and edit forms for contacts. A form holds a draft of text
// values, recomputes all field errors on every change and submits the draft through the contact
// API.
package form

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
	"gitlab.com/dirk.krummacker/contact-details/pkg/validation"
)

var (
	// ErrInvalid is returned by Submit if at least one field has an error message.
	ErrInvalid = errors.New("form has invalid fields")
	// ErrBusy is returned by Submit while a previous submission is still running.
	ErrBusy = errors.New("form is already submitting")
	// ErrClosed is returned for any change after a successful submission.
	ErrClosed = errors.New("form is closed")
	// ErrNoId is returned by NewEdit for a contact without id, which cannot be addressed.
	ErrNoId = errors.New("contact has no id")
)

// State is the stage of a form.
type State int

const (
	Editing State = iota
	Validating
	Submitting
	Closed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Submitter is the part of the contact API the forms need. *client.Client implements it.
type Submitter interface {
	CreateContact(ctx context.Context, candidate model.Contact) (model.Contact, error)
	UpdateContact(ctx context.Context, id int64, patch model.Patch) (model.Contact, error)
}

type kind int

const (
	create kind = iota
	edit
)

var (
	createFields = []string{"id", "FirstName", "LastName", "Email", "Phone"}
	editFields   = []string{"FirstName", "LastName", "Email", "Phone"}
)

// Form is a create or edit form. It is safe for concurrent use.
type Form struct {
	kind      kind
	api       Submitter
	logger    log.Logger
	onSuccess func(model.Contact)
	// validated lists the fields that are checked; only these can be changed with Set
	validated []string
	target    int64

	mu     sync.Mutex
	state  State
	draft  map[string]string
	errors validation.Errors
}

// NewCreate returns an empty create form. onCreated, if not nil, receives the contact returned
// by the server after a successful submission.
func NewCreate(api Submitter, logger log.Logger, onCreated func(model.Contact)) *Form {
	f := &Form{
		kind:      create,
		api:       api,
		logger:    logger,
		onSuccess: onCreated,
		validated: createFields,
		draft: map[string]string{
			"id": "", "FirstName": "", "LastName": "", "Email": "", "Phone": "",
		},
	}
	f.errors = f.validate()
	return f
}

// NewEdit returns a form filled with the values of c. onUpdated, if not nil, receives the
// contact returned by the server after a successful submission.
func NewEdit(api Submitter, logger log.Logger, c model.Contact, onUpdated func(model.Contact)) (*Form, error) {
	if c.Id == nil {
		return nil, ErrNoId
	}
	f := &Form{
		kind:      edit,
		api:       api,
		logger:    logger,
		onSuccess: onUpdated,
		validated: editFields,
		target:    *c.Id,
		draft:     c.Fields(),
	}
	f.errors = f.validate()
	return f, nil
}

// Set changes a field of the draft and recomputes the errors of all fields. It returns the new
// errors.
func (f *Form) Set(field, value string) (validation.Errors, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Closed {
		return nil, ErrClosed
	}
	if !f.accepts(field) {
		return nil, fmt.Errorf("unknown field %q", field)
	}
	f.draft[field] = value
	f.recheck()
	return f.errors.Copy(), nil
}

// SetPicture stores an uploaded image as data URL in PictureUrl. Only the edit form has a
// picture.
func (f *Form) SetPicture(mimeType string, data []byte) error {
	return f.setPictureUrl(DataURL(mimeType, data))
}

// RemovePicture clears PictureUrl.
func (f *Form) RemovePicture() error {
	return f.setPictureUrl("")
}

// Submit sends the draft to the server. It fails with ErrInvalid without sending anything if a
// field has an error, and with ErrBusy while another submission is running. After a successful
// submission the form is closed. After a failed one it can be edited again; the failure is
// logged and returned.
func (f *Form) Submit(ctx context.Context) (model.Contact, error) {
	f.mu.Lock()
	switch f.state {
	case Submitting:
		f.mu.Unlock()
		return model.Contact{}, ErrBusy
	case Closed:
		f.mu.Unlock()
		return model.Contact{}, ErrClosed
	}
	f.recheck()
	if !f.errors.Valid() {
		f.mu.Unlock()
		return model.Contact{}, ErrInvalid
	}
	f.setState(Submitting)
	draft := make(map[string]string, len(f.draft))
	for k, v := range f.draft {
		draft[k] = v
	}
	f.mu.Unlock()

	saved, err := f.send(ctx, draft)

	f.mu.Lock()
	if err != nil {
		f.setState(Editing)
		f.mu.Unlock()
		level.Error(f.logger).Log("msg", f.action()+" contact error", "err", err)
		return model.Contact{}, err
	}
	f.setState(Closed)
	f.mu.Unlock()
	if f.onSuccess != nil {
		f.onSuccess(saved)
	}
	return saved, nil
}

// State returns the stage the form is in.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Busy reports whether a submission is running.
func (f *Form) Busy() bool {
	return f.State() == Submitting
}

// Errors returns the error message of every validated field; "" means valid.
func (f *Form) Errors() validation.Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors.Copy()
}

// Value returns the current text of a field of the draft.
func (f *Form) Value(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft[field]
}

// Fields returns the names of the fields that can be changed with Set, in display order.
func (f *Form) Fields() []string {
	return append([]string(nil), f.validated...)
}

// DataURL encodes data as a base64 data URL with the given MIME type.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (f *Form) setPictureUrl(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.kind != edit {
		return errors.New("only the edit form has a picture")
	}
	if f.state == Closed {
		return ErrClosed
	}
	f.draft["PictureUrl"] = url
	return nil
}

func (f *Form) accepts(field string) bool {
	for _, name := range f.validated {
		if name == field {
			return true
		}
	}
	return false
}

// recheck recomputes all errors against the whole draft. The caller holds the lock.
func (f *Form) recheck() {
	previous := f.state
	f.setState(Validating)
	f.errors = f.validate()
	f.setState(previous)
}

func (f *Form) validate() validation.Errors {
	candidate := make(map[string]string, len(f.validated))
	for _, field := range f.validated {
		candidate[field] = f.draft[field]
	}
	return validation.Validate(candidate)
}

func (f *Form) setState(s State) {
	if f.state != s {
		level.Debug(f.logger).Log("msg", "form state", "form", f.action(), "from", f.state, "to", s)
	}
	f.state = s
}

func (f *Form) send(ctx context.Context, draft map[string]string) (model.Contact, error) {
	if f.kind == edit {
		return f.api.UpdateContact(ctx, f.target, patchOf(f.target, draft))
	}
	candidate, err := contactOf(draft)
	if err != nil {
		return model.Contact{}, err
	}
	return f.api.CreateContact(ctx, candidate)
}

func (f *Form) action() string {
	if f.kind == edit {
		return "update"
	}
	return "create"
}

// contactOf converts the draft of the create form. An empty id is left out.
func contactOf(draft map[string]string) (model.Contact, error) {
	c := model.Contact{
		FirstName: draft["FirstName"],
		LastName:  draft["LastName"],
		Email:     draft["Email"],
		Phone:     draft["Phone"],
	}
	if s := draft["id"]; s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return model.Contact{}, fmt.Errorf("converting id %q: %w", s, err)
		}
		c.Id = model.Int64(id)
	}
	return c, nil
}

// patchOf converts the draft of the edit form. All fields are sent.
func patchOf(id int64, draft map[string]string) model.Patch {
	return model.Patch{
		Id:         model.Int64(id),
		FirstName:  model.String(draft["FirstName"]),
		LastName:   model.String(draft["LastName"]),
		Email:      model.String(draft["Email"]),
		Phone:      model.String(draft["Phone"]),
		PictureUrl: model.String(draft["PictureUrl"]),
	}
}
