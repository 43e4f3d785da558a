// Package suggestion validates feature suggestions before they are stored.
package suggestion

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// User-facing messages
const (
	MsgInvalidName    = "Please provide a name under 50 characters."
	MsgInvalidDetails = "Please provide details between 10 and 1000 characters."
	MsgSubmitFailed   = "Failed to submit request. Please try again later."
)

// Request is a suggestion form submission. Website is a hidden field that
// only automated submitters fill in.
type Request struct {
	UserName string `json:"user_name" form:"user_name" validate:"required,max=50"`
	Details  string `json:"details" form:"details" validate:"required,min=10,max=1000"`
	Website  string `json:"website" form:"website"`
}

// Normalize returns the request with its text fields trimmed
func (r Request) Normalize() Request {
	return Request{
		UserName: strings.TrimSpace(r.UserName),
		Details:  strings.TrimSpace(r.Details),
		Website:  r.Website,
	}
}

// IsBot reports whether the honeypot field was filled in
func IsBot(r Request) bool {
	return r.Website != ""
}

// ValidationError is a rejected submission with a message fit for the user
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validator applies the field-length rules
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new suggestion validator
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate trims the request and checks it. Both bounds are inclusive
// and count characters, not bytes.
func (v *Validator) Validate(r Request) (Request, error) {
	r = r.Normalize()

	err := v.validate.Struct(&r)
	if err == nil {
		return r, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return r, err
	}

	// report the first failing field, name before details
	switch fieldErrs[0].Field() {
	case "UserName":
		return r, &ValidationError{Field: "user_name", Message: MsgInvalidName}
	default:
		return r, &ValidationError{Field: "details", Message: MsgInvalidDetails}
	}
}

// UserMessage maps a submission error to the text shown to the user.
// Anything but a validation failure becomes the generic failure message.
func UserMessage(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return MsgSubmitFailed
}
