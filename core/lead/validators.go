package lead

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/upskillway/crm/core"
)

var (
	statusTag  = "leadstatus"
	statusText = "invalid lead status"
)

// InitValidators registers this package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// statusValidation checks that a provided status is in AllStatuses
func statusValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, s := range AllStatuses {
		if val == s {
			return true
		}
	}
	return false
}
