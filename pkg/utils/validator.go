package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	if err := validate.RegisterValidation("phone", validatePhone); err != nil {
		panic(err)
	}
}

func ValidateStruct(s any) error {
	return validate.Struct(s)
}

// validatePhone accepts international numbers written with the usual
// separators, e.g. "+1 (555) 010-0199".
func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(phoneSeparators.Replace(fl.Field().String()))
}
