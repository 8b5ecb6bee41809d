package library

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Input payloads. Field rules mirror the registration and catalog forms:
// names are letters/spaces/hyphens, phone is the 11-digit local mobile
// format and optional, ISBN accepts ISBN-10 or ISBN-13.
type (
	NewStudent struct {
		FirstName string `validate:"required,personname"`
		LastName  string `validate:"required,personname"`
		Email     string `validate:"required,email"`
		Phone     string `validate:"omitempty,phoneph"`
	}

	NewBook struct {
		Title         string `validate:"required,min=2,max=100"`
		Author        string `validate:"required,personname"`
		ISBN          string `validate:"required,isbn"`
		Category      string `validate:"omitempty,max=50"`
		ShelfLocation string `validate:"omitempty,max=50"`
		Year          int    `validate:"required,pastyear"`
		Quantity      int    `validate:"gte=0"`
	}

	NewLibrarian struct {
		FirstName string `validate:"required,personname"`
		LastName  string `validate:"required,personname"`
		Email     string `validate:"required,email"`
		Username  string `validate:"required,username"`
		Password  string `validate:"required,strongpw"`
	}
)

var (
	nameRE     = regexp.MustCompile(`^[A-Za-z\s-]{2,50}$`)
	phoneRE    = regexp.MustCompile(`^[0-9]{11}$`)
	usernameRE = regexp.MustCompile(`^[A-Za-z0-9_]{4,30}$`)

	weakPasswords = map[string]struct{}{
		"password": {}, "12345678": {}, "qwerty": {},
		"letmein": {}, "admin": {}, "11111111": {},
	}

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return nameRE.MatchString(strings.TrimSpace(fl.Field().String()))
	}))
	must(v.RegisterValidation("phoneph", func(fl validator.FieldLevel) bool {
		return phoneRE.MatchString(strings.TrimSpace(fl.Field().String()))
	}))
	must(v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRE.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("strongpw", func(fl validator.FieldLevel) bool {
		return passwordOK(fl.Field().String())
	}))
	must(v.RegisterValidation("pastyear", func(fl validator.FieldLevel) bool {
		y := int(fl.Field().Int())
		return y >= 1800 && y <= time.Now().Year()
	}))
	return v
}

// passwordOK requires at least 8 characters with an upper-case letter, a
// lower-case letter and a digit, and rejects a short list of common picks.
func passwordOK(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	if _, weak := weakPasswords[strings.ToLower(pw)]; weak {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// fieldMessages maps struct field names to operator-facing rejection text.
var fieldMessages = map[string]string{
	"FirstName":     "first name must contain only letters and be at least 2 characters",
	"LastName":      "last name must contain only letters and be at least 2 characters",
	"Author":        "author name must contain only letters and be at least 2 characters",
	"Email":         "invalid email format",
	"Phone":         "phone number must be exactly 11 digits",
	"Title":         "book title must be between 2 and 100 characters",
	"ISBN":          "ISBN must be a valid ISBN-10 or ISBN-13",
	"Year":          "year must be between 1800 and the current year",
	"Quantity":      "quantity cannot be negative",
	"Username":      "username must be 4-30 characters: letters, numbers, underscores",
	"Password":      "password must be at least 8 characters with an upper-case letter, a lower-case letter and a number",
	"Category":      "category is too long",
	"ShelfLocation": "shelf location is too long",
}

// checkInput runs validator rules over the payload and converts the first
// failure into a ValidationError with a readable message.
func checkInput(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if ok := errors.As(err, &verrs); ok && len(verrs) > 0 {
		fe := verrs[0]
		if msg, known := fieldMessages[fe.StructField()]; known {
			return &ValidationError{Message: msg}
		}
		return validationErrorf("invalid value for %s", fe.StructField())
	}
	return validationErrorf("invalid input: %v", err)
}
