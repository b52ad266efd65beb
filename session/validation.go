package session

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	apperrors "github.com/opencampus/vitrine/internal/errors"
)

// RegisterRequest is the registration form. Confirmation is checked locally;
// the backend only ever sees the password once.
type RegisterRequest struct {
	Name            string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Role            string
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func (m *Manager) validateLogin(email, password string) error {
	err := m.validate.Struct(loginInput{Email: email, Password: password})
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].Field() {
		case "Email":
			return apperrors.ErrInvalidEmail
		case "Password":
			return errors.Wrap(apperrors.ErrValidation, "password is required")
		}
	}
	return apperrors.ErrValidation
}

func (m *Manager) validateRegister(req RegisterRequest) error {
	err := m.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch {
		case fe.Field() == "Email":
			return apperrors.ErrInvalidEmail
		case fe.Field() == "Password" && fe.Tag() == "min":
			return apperrors.ErrPasswordTooShort
		case fe.Field() == "ConfirmPassword" && fe.Tag() == "eqfield":
			return apperrors.ErrPasswordMismatch
		case fe.Field() == "Name":
			return errors.Wrap(apperrors.ErrValidation, "name is required")
		}
	}
	return apperrors.ErrValidation
}
