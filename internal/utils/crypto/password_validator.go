package crypto

import "github.com/go-playground/validator/v10"

// PasswordTag is the struct tag that applies IsStrong to sign-up passwords.
const PasswordTag = "password"

// RegisterPasswordValidator adds the PasswordTag rule to v. Registering again
// replaces the previous rule.
func RegisterPasswordValidator(v *validator.Validate) error {
	return v.RegisterValidation(PasswordTag, func(fl validator.FieldLevel) bool {
		return IsStrong(fl.Field().String())
	})
}
