package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewNotificationValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("object_key", objectKeyValidator),
		},
		{
			Rule: registerFn("bucket_name", bucketNameValidator),
		},
	}
}

// objectKeyValidator rejects keys that cannot name a stored object.
func objectKeyValidator(fl validator.FieldLevel) bool {
	key := fl.Field().String()
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	return !strings.Contains(key, "..")
}

func bucketNameValidator(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return name != "" && !strings.ContainsAny(name, " /")
}
