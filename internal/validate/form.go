package validate

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// FieldError names the offending input. It matches common.ErrorValidation
// via errors.Is.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return common.ErrorValidation }

// Profile normalizes raw form values into UserFields.
//
// Every field must be IsStorableText. Name and location must be non-empty
// after trimming, email must pass IsValidEmail, hobbies are optional.
// Overlong name, hobbies and location are truncated rather than rejected.
// The email is checked before truncation so an oversized address is refused
// instead of being cut into another one.
func Profile(name, email, hobbies, location string) (models.UserFields, error) {
	for _, in := range []struct{ field, value string }{
		{"name", name}, {"email", email}, {"hobbies", hobbies}, {"location", location},
	} {
		if !IsStorableText(in.value) {
			return models.UserFields{}, &FieldError{Field: in.field, Reason: "contains invalid characters"}
		}
	}

	if !IsValidEmail(email) {
		return models.UserFields{}, &FieldError{Field: "email", Reason: "must look like name@example.com"}
	}

	f := models.UserFields{
		Name:     NormalizeText(name, MaxNameLen),
		Email:    NormalizeText(email, MaxEmailLen),
		Hobbies:  NormalizeText(hobbies, MaxHobbiesLen),
		Location: NormalizeText(location, MaxLocationLen),
	}

	switch {
	case !IsNonEmptyString(f.Name):
		return models.UserFields{}, &FieldError{Field: "name", Reason: "required"}
	case !IsNonEmptyString(f.Location):
		return models.UserFields{}, &FieldError{Field: "location", Reason: "required"}
	}

	return f, nil
}

// Identifier checks a record id before any store lookup and returns it in
// the lowercase form the stores key records by.
func Identifier(id string) (string, error) {
	if !IsValidIdentifier(id) {
		return "", &FieldError{Field: "id", Reason: "must be 24 hex characters"}
	}
	return strings.ToLower(id), nil
}
