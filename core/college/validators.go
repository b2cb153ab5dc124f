package college

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/upskillway/crm/core"
)

var (
	statusTag  = "collegestatus"
	statusText = "invalid college status"

	typeTag  = "collegetype"
	typeText = "invalid college type"
)

// InitValidators registers this package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, oneOfValidation(AllStatuses))
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)

	_ = validate.RegisterValidation(typeTag, oneOfValidation(AllTypes))
	core.RegisterCustomTranslation(validate, translator, typeTag, typeText)
}

func oneOfValidation(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, a := range allowed {
			if val == a {
				return true
			}
		}
		return false
	}
}
