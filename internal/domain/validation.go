package domain

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// basicEmailPattern простая проверка вида local@domain.tld
var basicEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewValidator создает валидатор с правилами, которые используют DTO домена.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Ошибка возможна только при пустом теге, поэтому игнорируем
	_ = v.RegisterValidation("basicemail", func(fl validator.FieldLevel) bool {
		return basicEmailPattern.MatchString(fl.Field().String())
	})
	return v
}
