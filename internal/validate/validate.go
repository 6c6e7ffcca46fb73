// Package validate implements field validation for the signup and profile
// flows. Structural rules (presence, lengths, email shape) are expressed as
// validator tags; the password composition policy is an ordered check so the
// first missing character class wins, and its messages are stable API copy.
package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// passwordSymbols is the punctuation set accepted by the password policy.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// Password policy messages. These are user-facing API copy; do not reword.
const (
	msgPasswordLowercase = "Password must contain at least one lowercase letter."
	msgPasswordUppercase = "Password must contain at least one uppercase letter."
	msgPasswordDigit     = "Password must contain at least one digit."
	msgPasswordSymbol    = "Password must contain at least one special character."
	msgPasswordMismatch  = "Passwords does not match."
)

// FieldErrors maps field names to their first violation message.
type FieldErrors map[string]string

// Error implements the error interface.
func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// SignupInput carries the raw signup form fields.
type SignupInput struct {
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Gender    string `json:"gender" validate:"required,oneof=male female other"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Confirm   string `json:"confirm" validate:"required"`
}

// UpdateProfileInput carries a partial profile update. Nil fields are left
// untouched.
type UpdateProfileInput struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Username  *string `json:"username" validate:"omitempty,min=3,max=150"`
	Gender    *string `json:"gender" validate:"omitempty,oneof=male female other"`
}

// Validator validates API inputs.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator.
func New() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Signup checks all signup fields and aggregates violations per field.
// Returns nil when the input is valid.
func (v *Validator) Signup(input SignupInput) FieldErrors {
	errs := v.structErrors(input)

	// The password policy only applies once the structural checks pass
	// for that field, so a too-short password reports length first.
	if _, seen := errs["password"]; !seen {
		if msg := PasswordPolicy(input.Password); msg != "" {
			errs["password"] = msg
		}
	}
	if _, seen := errs["confirm"]; !seen && input.Confirm != input.Password {
		errs["confirm"] = msgPasswordMismatch
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// UpdateProfile checks a partial profile update.
// Returns nil when the input is valid.
func (v *Validator) UpdateProfile(input UpdateProfileInput) FieldErrors {
	errs := v.structErrors(input)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Password length bounds, matching the signup struct tags.
const (
	passwordMinLen = 8
	passwordMaxLen = 128
)

// Password checks a standalone password against the same rules signup
// applies through struct tags: length bounds first, then the composition
// policy. Returns the first violation's message, or "" when it passes.
// Used by flows that accept a password outside a signup form, such as
// password reset.
func Password(password string) string {
	if len(password) < passwordMinLen {
		return fmt.Sprintf("Must be at least %d characters.", passwordMinLen)
	}
	if len(password) > passwordMaxLen {
		return fmt.Sprintf("Must be at most %d characters.", passwordMaxLen)
	}
	return PasswordPolicy(password)
}

// PasswordPolicy checks the composition policy in a fixed order and returns
// the first violation's message, or "" when the password passes.
func PasswordPolicy(password string) string {
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}

	switch {
	case !lower:
		return msgPasswordLowercase
	case !upper:
		return msgPasswordUppercase
	case !digit:
		return msgPasswordDigit
	case !symbol:
		return msgPasswordSymbol
	}
	return ""
}

// structErrors runs tag validation and maps violations to field messages.
func (v *Validator) structErrors(input any) FieldErrors {
	errs := FieldErrors{}

	err := v.validate.Struct(input)
	if err == nil {
		return errs
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["_"] = "invalid input"
		return errs
	}

	for _, fe := range validationErrors {
		field := jsonField(fe.Field())
		if _, seen := errs[field]; seen {
			continue
		}
		errs[field] = tagMessage(fe)
	}

	return errs
}

// tagMessage renders a violation message for a failed tag.
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Must be at least " + fe.Param() + " characters."
	case "max":
		return "Must be at most " + fe.Param() + " characters."
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ") + "."
	default:
		return "Invalid value."
	}
}

// jsonField converts the Go field name to its JSON form.
func jsonField(name string) string {
	switch name {
	case "FirstName":
		return "first_name"
	case "LastName":
		return "last_name"
	case "Username":
		return "username"
	case "Email":
		return "email"
	case "Gender":
		return "gender"
	case "Password":
		return "password"
	case "Confirm":
		return "confirm"
	default:
		return strings.ToLower(name)
	}
}
