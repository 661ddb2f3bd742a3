// Package validation holds the field rules for contacts. The same table is used by the server
// schema and by the client forms so that both sides accept exactly the same values.
package validation

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Rule describes how a single contact field is checked. Rules only apply to non-empty values;
// whether a field must be present at all is decided elsewhere.
type Rule struct {
	// Field is the field name as it appears in JSON and in the forms.
	Field string
	// Tag is the name under which the rule is registered with the validator.
	Tag string
	// Pattern must match the complete value.
	Pattern *regexp.Regexp
	// Message is shown to the user if the pattern does not match.
	Message string
}

// Rules lists the rule for every validated field. PictureUrl is not validated.
var Rules = []Rule{
	{
		Field:   "id",
		Tag:     "contact_id",
		Pattern: regexp.MustCompile(`^\d+$`),
		Message: "ID must be a number",
	},
	{
		Field:   "FirstName",
		Tag:     "contact_firstname",
		Pattern: regexp.MustCompile(`^[A-Za-z\s]+$`),
		Message: "First name must contain only alphabetic characters and spaces",
	},
	{
		Field:   "LastName",
		Tag:     "contact_lastname",
		Pattern: regexp.MustCompile(`^[A-Za-z\s]+$`),
		Message: "Last name must contain only alphabetic characters and spaces",
	},
	{
		Field:   "Email",
		Tag:     "contact_email",
		Pattern: regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`),
		Message: "Please enter a valid email address",
	},
	{
		Field:   "Phone",
		Tag:     "contact_phone",
		Pattern: regexp.MustCompile(`^\d{10}$`),
		Message: "Phone number must be 10 digits",
	},
}

// Errors maps a field name to its error message. An empty message means the field is valid.
type Errors map[string]string

// Valid reports whether no field carries an error message.
func (e Errors) Valid() bool {
	for _, msg := range e {
		if msg != "" {
			return false
		}
	}
	return true
}

// Copy returns an independent copy of e.
func (e Errors) Copy() Errors {
	c := make(Errors, len(e))
	for field, msg := range e {
		c[field] = msg
	}
	return c
}

// Check applies the rule to a single value. Empty values always pass.
func (r Rule) Check(value string) string {
	if value == "" || r.Pattern.MatchString(value) {
		return ""
	}
	return r.Message
}

// Validate checks every field of the candidate that has a rule. The result contains an entry for
// each of these fields, so a form can clear messages of fields that became valid. Fields without
// a rule and rules without a field in the candidate are ignored.
func Validate(candidate map[string]string) Errors {
	errs := Errors{}
	for _, rule := range Rules {
		value, ok := candidate[rule.Field]
		if !ok {
			continue
		}
		errs[rule.Field] = rule.Check(value)
	}
	return errs
}

// RuleFor returns the rule of a field.
func RuleFor(field string) (Rule, bool) {
	for _, rule := range Rules {
		if rule.Field == field {
			return rule, true
		}
	}
	return Rule{}, false
}

// RuleForTag returns the rule registered under the given validator tag.
func RuleForTag(tag string) (Rule, bool) {
	for _, rule := range Rules {
		if rule.Tag == tag {
			return rule, true
		}
	}
	return Rule{}, false
}

// RegisterRules makes every rule available as a custom validator tag, so struct schemas can refer
// to them, e.g. `validate:"required,contact_phone"`.
func RegisterRules(v *validator.Validate) error {
	for _, rule := range Rules {
		rule := rule
		err := v.RegisterValidation(rule.Tag, func(fl validator.FieldLevel) bool {
			return rule.Check(fl.Field().String()) == ""
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", rule.Tag, err)
		}
	}
	return nil
}
