package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
)

// fakeAPI records what the forms submit.
type fakeAPI struct {
	created   []model.Contact
	updatedId int64
	patch     model.Patch
	err       error
	// block, if set, is waited on before a request is answered
	block chan struct{}
}

func (f *fakeAPI) CreateContact(_ context.Context, candidate model.Contact) (model.Contact, error) {
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return model.Contact{}, f.err
	}
	f.created = append(f.created, candidate)
	candidate.Key = "k1"
	return candidate, nil
}

func (f *fakeAPI) UpdateContact(_ context.Context, id int64, patch model.Patch) (model.Contact, error) {
	if f.err != nil {
		return model.Contact{}, f.err
	}
	f.updatedId = id
	f.patch = patch
	return model.Contact{Id: model.Int64(id)}.Merge(patch), nil
}

func fill(t *testing.T, f *Form, values map[string]string) {
	for field, value := range values {
		_, err := f.Set(field, value)
		require.NoError(t, err)
	}
}

func TestNewCreateHasNoErrors(t *testing.T) {
	f := NewCreate(&fakeAPI{}, log.NewNopLogger(), nil)
	assert.Equal(t, Editing, f.State())
	assert.True(t, f.Errors().Valid())
	assert.Equal(t, []string{"id", "FirstName", "LastName", "Email", "Phone"}, f.Fields())
}

// TestSetRecomputesAllErrors expects an error of one field to survive changes of another field.
func TestSetRecomputesAllErrors(t *testing.T) {
	f := NewCreate(&fakeAPI{}, log.NewNopLogger(), nil)

	errs, err := f.Set("Phone", "123")
	require.NoError(t, err)
	assert.Equal(t, "Phone number must be 10 digits", errs["Phone"])

	errs, _ = f.Set("FirstName", "Erika")
	assert.Equal(t, "Phone number must be 10 digits", errs["Phone"])
	assert.Equal(t, "", errs["FirstName"])

	errs, _ = f.Set("Phone", "0123456789")
	assert.True(t, errs.Valid())
	assert.Equal(t, Editing, f.State())
}

func TestSetUnknownField(t *testing.T) {
	f := NewCreate(&fakeAPI{}, log.NewNopLogger(), nil)
	_, err := f.Set("PictureUrl", "x")
	assert.Error(t, err)
}

func TestCreateSubmit(t *testing.T) {
	api := &fakeAPI{}
	var received model.Contact
	f := NewCreate(api, log.NewNopLogger(), func(c model.Contact) { received = c })
	fill(t, f, map[string]string{
		"id": "29", "FirstName": "Erika", "LastName": "Mustermann",
		"Email": "erika@example.com", "Phone": "0123456789",
	})

	saved, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, api.created, 1)
	assert.Equal(t, int64(29), *api.created[0].Id)
	assert.Equal(t, "k1", saved.Key)
	assert.Equal(t, saved, received)
	assert.Equal(t, Closed, f.State())

	_, err = f.Set("FirstName", "Rudi")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCreateSubmitWithoutId(t *testing.T) {
	api := &fakeAPI{}
	f := NewCreate(api, log.NewNopLogger(), nil)
	fill(t, f, map[string]string{"FirstName": "Erika"})

	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Nil(t, api.created[0].Id)
}

// TestEmptyRequiredFieldsAreSent expects empty fields to pass the form and to be left to the
// server.
func TestEmptyRequiredFieldsAreSent(t *testing.T) {
	api := &fakeAPI{}
	f := NewCreate(api, log.NewNopLogger(), nil)

	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Contact{}, api.created[0])
}

func TestSubmitBlockedByErrors(t *testing.T) {
	api := &fakeAPI{}
	f := NewCreate(api, log.NewNopLogger(), nil)
	fill(t, f, map[string]string{"id": "abc", "Email": "bad-email"})

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Empty(t, api.created)
	assert.Equal(t, Editing, f.State())
	assert.Equal(t, "ID must be a number", f.Errors()["id"])
	assert.Equal(t, "Please enter a valid email address", f.Errors()["Email"])
}

func TestSubmitFailureReturnsToEditing(t *testing.T) {
	api := &fakeAPI{err: errors.New("HTTP error! status: 400, message: Email is required")}
	f := NewCreate(api, log.NewNopLogger(), nil)

	_, err := f.Submit(context.Background())
	assert.EqualError(t, err, "HTTP error! status: 400, message: Email is required")
	assert.Equal(t, Editing, f.State())

	api.err = nil
	_, err = f.Submit(context.Background())
	assert.NoError(t, err)
}

func TestSubmitWhileSubmitting(t *testing.T) {
	api := &fakeAPI{block: make(chan struct{})}
	f := NewCreate(api, log.NewNopLogger(), nil)

	done := make(chan error)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	require.Eventually(t, f.Busy, time.Second, time.Millisecond)

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	_, err = f.Set("FirstName", "Erika")
	assert.NoError(t, err, "the draft can still be changed")

	close(api.block)
	assert.NoError(t, <-done)
	assert.Len(t, api.created, 1)
}

func TestNewEditRequiresId(t *testing.T) {
	_, err := NewEdit(&fakeAPI{}, log.NewNopLogger(), model.Contact{FirstName: "Erika"}, nil)
	assert.ErrorIs(t, err, ErrNoId)
}

// TestEditSendsFullDraft changes one field and expects all fields in the request.
func TestEditSendsFullDraft(t *testing.T) {
	api := &fakeAPI{}
	stored := model.Contact{
		Key: "k1", Id: model.Int64(29), FirstName: "Erika", LastName: "Mustermann",
		Email: "erika@example.com", Phone: "0123456789",
	}
	var received model.Contact
	f, err := NewEdit(api, log.NewNopLogger(), stored, func(c model.Contact) { received = c })
	require.NoError(t, err)
	assert.Equal(t, "Erika", f.Value("FirstName"))
	assert.Equal(t, []string{"FirstName", "LastName", "Email", "Phone"}, f.Fields())

	_, err = f.Set("FirstName", "Rudi")
	require.NoError(t, err)
	_, err = f.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(29), api.updatedId)
	assert.Equal(t, "Rudi", *api.patch.FirstName)
	assert.Equal(t, "Mustermann", *api.patch.LastName)
	assert.Equal(t, "erika@example.com", *api.patch.Email)
	assert.Equal(t, "0123456789", *api.patch.Phone)
	assert.Equal(t, int64(29), *api.patch.Id)
	assert.Equal(t, "Rudi", received.FirstName)
	assert.Equal(t, Closed, f.State())
}

// TestEditDoesNotValidateId uses an edit form, which has no id field.
func TestEditDoesNotValidateId(t *testing.T) {
	f, err := NewEdit(&fakeAPI{}, log.NewNopLogger(), model.Contact{Id: model.Int64(1)}, nil)
	require.NoError(t, err)
	_, hasId := f.Errors()["id"]
	assert.False(t, hasId)
	_, err = f.Set("id", "2")
	assert.Error(t, err)
}

func TestEditPicture(t *testing.T) {
	api := &fakeAPI{}
	f, err := NewEdit(api, log.NewNopLogger(), model.Contact{Id: model.Int64(1), PictureUrl: "data:old"}, nil)
	require.NoError(t, err)

	require.NoError(t, f.SetPicture("image/png", []byte("abc")))
	assert.Equal(t, "data:image/png;base64,YWJj", f.Value("PictureUrl"))

	require.NoError(t, f.RemovePicture())
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", *api.patch.PictureUrl)
}

func TestCreateHasNoPicture(t *testing.T) {
	f := NewCreate(&fakeAPI{}, log.NewNopLogger(), nil)
	assert.Error(t, f.SetPicture("image/png", []byte("abc")))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "validating", Validating.String())
	assert.Equal(t, "unknown", State(9).String())
}
