package content

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/upskillway/crm/core"
)

var (
	kindTag  = "contentkind"
	kindText = "invalid content kind"

	faqAnswerTag  = "faqanswer"
	faqAnswerText = "an answer is required for FAQ items"
)

// InitValidators registers this package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(kindTag, kindValidation)
	core.RegisterCustomTranslation(validate, translator, kindTag, kindText)

	validate.RegisterStructValidation(newItemStructValidation, NewItem{})
	core.RegisterCustomTranslation(validate, translator, faqAnswerTag, faqAnswerText)
}

// kindValidation checks that a provided kind is in AllKinds
func kindValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, k := range AllKinds {
		if val == k {
			return true
		}
	}
	return false
}

// newItemStructValidation does NewItem's struct level validation
func newItemStructValidation(sl validator.StructLevel) {
	if ni, ok := sl.Current().Interface().(NewItem); ok {
		if ni.Kind == KindFAQ && ni.Answer == "" {
			sl.ReportError(ni.Answer, "answer", "Answer", faqAnswerTag, "")
		}
	}
}
