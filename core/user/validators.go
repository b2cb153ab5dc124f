package user

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/upskillway/crm/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"

	usernameOrEmailTag  = "username_or_email"
	usernameOrEmailText = "one of username or email is required"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim     = .7
	pwdAttrSimTag = "pwdtoosim"
	pwdAttrSimTxt = "password cannot be similar to user attributes"
)

// InitValidators registers this package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(validate, translator, allRolesTag, allRolesText)

	validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	validate.RegisterStructValidation(updateUserStructValidation, UpdateUser{})
	core.RegisterCustomTranslation(validate, translator, usernameOrEmailTag, usernameOrEmailText)
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdComplexityTag, pwdComplexityText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimTxt)
}

// Custom Validators

// allRolesValidation checks that provided user roles are all in AllRoles
func allRolesValidation(fl validator.FieldLevel) bool {
	if roles, ok := fl.Field().Interface().([]string); ok {
		all := append([]string(nil), AllRoles...)
		sort.Strings(all)
		for _, role := range roles {
			idx := sort.SearchStrings(all, role)
			if idx >= len(all) || all[idx] != role {
				return false
			}
		}
		return true
	}
	return false
}

// newUserStructValidation does NewUser's struct level validation
func newUserStructValidation(sl validator.StructLevel) {
	if nu, ok := sl.Current().Interface().(NewUser); ok {
		// one of Username or Email is required
		if len(nu.Username) == 0 && len(nu.Email) == 0 {
			sl.ReportError(nu.Username, "username", "Username", usernameOrEmailTag, "")
			sl.ReportError(nu.Email, "email", "Email", usernameOrEmailTag, "")
		}
		validatePassword(sl, nu.Password, "password", "Password", nu.Name, nu.Username, nu.Email)
	}
}

// updateUserStructValidation does UpdateUser's struct level validation
func updateUserStructValidation(sl validator.StructLevel) {
	if uu, ok := sl.Current().Interface().(UpdateUser); ok {
		if uu.Password != "" {
			validatePassword(sl, uu.Password, "password", "Password", uu.Name, uu.Username, uu.Email)
		}
	}
}

// validatePassword enforces the password policy:
// min length, no whitespace, not all-numeric, complexity mix
// and no similarity to the user's own attributes.
func validatePassword(sl validator.StructLevel, pwd, fld, structFld string, attrs ...string) {
	if len(pwd) < pwdMinLen {
		sl.ReportError(pwd, fld, structFld, pwdMinLenTag, "")
	}
	if strings.IndexFunc(pwd, unicode.IsSpace) >= 0 {
		sl.ReportError(pwd, fld, structFld, pwdNoSpaceTag, "")
	}

	var hasUpper, hasLower, hasDigit, allNum bool
	allNum = true
	for _, r := range pwd {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
			allNum = false
		case unicode.IsLower(r):
			hasLower = true
			allNum = false
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			allNum = false
		}
	}
	if allNum && pwd != "" {
		sl.ReportError(pwd, fld, structFld, pwdNotAllNumTag, "")
	}
	if !(hasUpper && hasLower && hasDigit && specialRegex.MatchString(pwd)) {
		sl.ReportError(pwd, fld, structFld, pwdComplexityTag, "")
	}

	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		m := difflib.NewMatcher(splitChars(strings.ToLower(pwd)), splitChars(strings.ToLower(attr)))
		if m.QuickRatio() >= pwdMaxSim {
			sl.ReportError(pwd, fld, structFld, pwdAttrSimTag, "")
			break
		}
	}
}

func splitChars(s string) []string {
	chars := make([]string, 0, len(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return chars
}
