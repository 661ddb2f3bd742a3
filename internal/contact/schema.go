package contact

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
	"gitlab.com/dirk.krummacker/contact-details/pkg/validation"
)

// document is the shape a contact must have before it may be persisted. The struct field names
// equal the JSON field names, which keeps the error messages in the user's vocabulary.
type document struct {
	Id        string `validate:"omitempty,contact_id"`
	FirstName string `validate:"required,contact_firstname"`
	LastName  string `validate:"required,contact_lastname"`
	Email     string `validate:"required,contact_email"`
	Phone     string `validate:"required,contact_phone"`
}

// Schema checks contacts against the persistence rules.
type Schema struct {
	validate *validator.Validate
}

// NewSchema creates a schema with the shared contact rules registered.
func NewSchema() (*Schema, error) {
	v := validator.New()
	if err := validation.RegisterRules(v); err != nil {
		return nil, err
	}
	return &Schema{validate: v}, nil
}

// Check returns a *ValidationError if the contact cannot be persisted, or nil otherwise.
func (s *Schema) Check(c model.Contact) error {
	doc := document{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
	}
	if c.Id != nil {
		doc.Id = strconv.FormatInt(*c.Id, 10)
	}

	err := s.validate.Struct(doc)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	return &ValidationError{Fields: fieldMessages(fieldErrs)}
}

// fieldMessages turns validator errors into messages a user understands.
func fieldMessages(fieldErrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if field == "Id" {
			field = "id"
		}
		if fe.Tag() == "required" {
			fields[field] = fmt.Sprintf("%s is required", field)
			continue
		}
		if rule, ok := validation.RuleForTag(fe.Tag()); ok {
			fields[field] = rule.Message
			continue
		}
		fields[field] = fmt.Sprintf("validation failed on field %s", field)
	}
	return fields
}
