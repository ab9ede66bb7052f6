package auth

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	apperrors "docmorph/pkg/errors"
)

// The provider enforces its own rules; this shape check only keeps
// obviously malformed input off the network.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type credentials struct {
	Email    string
	Password string
}

// validateCredentials checks email shape and password length locally,
// before any provider call.
func validateCredentials(email, password string) error {
	creds := credentials{Email: email, Password: password}
	err := validation.ValidateStruct(&creds,
		validation.Field(&creds.Email,
			validation.Required,
			validation.Match(emailPattern).Error("must look like name@example.com"),
		),
		validation.Field(&creds.Password,
			validation.Required,
			validation.Length(6, 0).Error("must be at least 6 characters"),
		),
	)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

// validateSignUp additionally requires the confirmation field to match
// the password exactly.
func validateSignUp(email, password, confirm string) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	if confirm != password {
		return apperrors.NewValidationError("password confirmation does not match")
	}
	return nil
}
