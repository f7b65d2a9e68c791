package auth

import (
	stderrors "errors"
	"fmt"
	"safe-space/domain"
	"safe-space/errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RegisterRequest is the self-service registration payload.
// Admin accounts cannot be registered, only seeded.
type RegisterRequest struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=12,max=72"`
	Role     domain.Role `json:"role" validate:"required,oneof=survivor counsellor legal"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func ValidateRegister(req RegisterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		var fieldErrors validator.ValidationErrors
		if stderrors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			switch fieldErrors[0].Field() {
			case "Password":
				return errors.ErrInvalidPassword
			case "Role":
				return errors.ErrInvalidRole
			}
			return fmt.Errorf("%w: %s failed on %s", errors.ErrValidation, fieldErrors[0].Field(), fieldErrors[0].Tag())
		}
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}

	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func ValidateLogin(req LoginRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
