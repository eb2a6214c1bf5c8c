package http

import (
	"strings"
	"unicode"

	"storeapi/internal/core/model/response"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validator  *validator.Validate
	Translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)

	var found bool
	Translator, found = uni.GetTranslator("en")

	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(Validator, Translator); err != nil {
		panic(err)
	}

	if err := Validator.RegisterValidation("password", validatePassword); err != nil {
		panic(err)
	}

	if err := Validator.RegisterValidation("name", validateName); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

// validatePassword requires at least 8 characters with an upper case letter,
// a lower case letter, a digit and a symbol.
func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSymbol
}

// validateName rejects digits and punctuation, allowing letters, spaces,
// apostrophes and hyphens.
func validateName(fl validator.FieldLevel) bool {
	name := fl.Field().String()

	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsSpace(r) || r == '\'' || r == '-' {
			continue
		}
		return false
	}

	return true
}

func addCustomTranslations() {
	Validator.RegisterTranslation("password", Translator, func(ut ut.Translator) error {
		return ut.Add("password", "{0} must be at least 8 characters and contain upper case, lower case, a digit and a symbol", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("password", getFieldName(fe.Field()))
		return t
	})

	Validator.RegisterTranslation("name", Translator, func(ut ut.Translator) error {
		return ut.Add("name", "{0} may only contain letters, spaces, apostrophes and hyphens", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("name", getFieldName(fe.Field()))
		return t
	})
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"FirstName":   "First name",
		"LastName":    "Last name",
		"Email":       "Email",
		"Password":    "Password",
		"Role":        "Role",
		"AddressName": "Address name",
		"Country":     "Country",
		"City":        "City",
		"Address":     "Address",
		"PostalCode":  "Postal code",
		"PhoneNumber": "Phone number",
	}

	if name, exists := fieldNames[field]; exists {
		return name
	}

	return field
}

func FormatValidationErrors(err error) []response.ValidationError {
	var errors []response.ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			errors = append(errors, response.ValidationError{
				Field:   strings.ToLower(fieldError.Field()),
				Message: fieldError.Translate(Translator),
			})
		}
	}

	return errors
}
