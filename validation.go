package accounts

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// bcrypt truncates beyond 72 bytes, so longer passwords are rejected
// instead of silently clipped.
const (
	minPasswordLength = 8
	maxPasswordLength = 72

	maxNameLength    = 120
	maxAddressLength = 500
)

type registerInput struct {
	Name     string
	Email    string
	Password string
}

func (r registerInput) Validate() error {
	return wrapValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLength, maxPasswordLength)),
	))
}

func validateNewPassword(password string) error {
	return wrapValidation(validation.Validate(password,
		validation.Required.Error("cannot be blank"),
		validation.Length(minPasswordLength, maxPasswordLength),
	), "password")
}

// ProfilePatch carries the mutable profile fields. They have no invariants
// beyond size limits; phone numbers are normalized to E.164.
type ProfilePatch struct {
	DisplayName string
	Phone       string
	Address     string
	// DefaultRegion is the ISO region used to parse national numbers.
	DefaultRegion string
}

func (p ProfilePatch) Validate() error {
	err := wrapValidation(validation.ValidateStruct(&p,
		validation.Field(&p.DisplayName, validation.Length(0, maxNameLength)),
		validation.Field(&p.Address, validation.Length(0, maxAddressLength)),
	))
	if err != nil {
		return err
	}

	if p.Phone != "" {
		if _, err := p.normalizedPhone(); err != nil {
			return ValidationFailed("phone", "not a valid phone number")
		}
	}
	return nil
}

func (p ProfilePatch) normalizedPhone() (string, error) {
	region := p.DefaultRegion
	if region == "" {
		region = "US"
	}

	num, err := phonenumbers.Parse(p.Phone, region)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ValidationFailed("phone", "not a valid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// wrapValidation converts ozzo validation output into the ValidationFailed
// error kind, keyed by the first offending field.
func wrapValidation(err error, field ...string) error {
	if err == nil {
		return nil
	}

	if errs, ok := err.(validation.Errors); ok {
		fields := make([]string, 0, len(errs))
		for f := range errs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		if len(fields) > 0 {
			f := fields[0]
			return ValidationFailed(f, errs[f].Error())
		}
	}

	name := "input"
	if len(field) > 0 {
		name = field[0]
	}
	return ValidationFailed(name, err.Error())
}
