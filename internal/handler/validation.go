package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	msgValidationFailed = "Validation failed"
	msgInvalidJSON      = "Invalid JSON format in request body"
	msgBodyRequired     = "Request body is required"
)

var (
	upperRe      = regexp.MustCompile(`[A-Z]`)
	lowerRe      = regexp.MustCompile(`[a-z]`)
	digitRe      = regexp.MustCompile(`\d`)
	personNameRe = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	phoneRe      = regexp.MustCompile(`^\+?[\d\s()-]+$`)
	slugRe       = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	registerOnce sync.Once
)

// RegisterValidators installs the custom rules on gin's validator and makes
// field errors report the json, form or uri name. Safe to call repeatedly.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin validator engine is not go-playground/validator")
		}
		v.RegisterTagNameFunc(fieldName)
		mustRegister(v, "password", validatePassword)
		mustRegister(v, "personname", validatePersonName)
		mustRegister(v, "phone", validatePhone)
		mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
			return slugRe.MatchString(fl.Field().String())
		})
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func validatePassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) >= 8 && upperRe.MatchString(s) && lowerRe.MatchString(s) && digitRe.MatchString(s)
}

func validatePersonName(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	n := utf8.RuneCountInString(s)
	return n >= 2 && n <= 50 && personNameRe.MatchString(s)
}

func validatePhone(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return len(s) >= 10 && len(s) <= 20 && phoneRe.MatchString(s)
}

var fieldLabels = map[string]string{
	"email":        "Email",
	"password":     "Password",
	"firstName":    "First name",
	"lastName":     "Last name",
	"phone":        "Phone",
	"refreshToken": "Refresh token",
	"id":           "Product ID",
	"slug":         "Slug",
	"format":       "Format",
}

// fieldMessages override the message for any non-required failure of a field.
var fieldMessages = map[string]string{
	"refreshToken": "Invalid refresh token format",
	"categoryId":   "Category ID must be a valid UUID",
	"search":       "Search query must be between 1 and 100 characters",
	"minPrice":     "Minimum price must be a positive number",
	"maxPrice":     "Maximum price must be a positive number",
	"page":         "Page must be a positive integer no greater than 1000000",
	"limit":        "Limit must be between 1 and 100",
	"sortBy":       "Sort field must be one of: name, price, createdAt",
	"sortOrder":    "Sort order must be either asc or desc",
	"id":           "Product ID must be a valid UUID",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

func messageFor(fe validator.FieldError) string {
	field := fe.Field()
	if fe.Tag() == "required" {
		return label(field) + " is required"
	}
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}

	value, _ := fe.Value().(string)
	value = strings.TrimSpace(value)
	switch fe.Tag() {
	case "email":
		return "Please provide a valid email address"
	case "password":
		if len(value) < 8 {
			return "Password must be at least 8 characters long"
		}
		return "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	case "personname":
		if n := utf8.RuneCountInString(value); n < 2 || n > 50 {
			return label(field) + " must be between 2 and 50 characters"
		}
		return label(field) + " can only contain letters, spaces, hyphens, and apostrophes"
	case "phone":
		if len(value) < 10 || len(value) > 20 {
			return "Phone number must be between 10 and 20 characters"
		}
		return "Please provide a valid phone number"
	case "slug":
		return label(field) + " can only contain letters, numbers, hyphens, and underscores"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label(field), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label(field), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return label(field) + " is invalid"
	}
}

// bindError writes a 400 describing why binding the request failed.
func (r *Responder) bindError(c *gin.Context, err error) {
	var (
		verrs     validator.ValidationErrors
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		numErr    *strconv.NumError
	)
	switch {
	case errors.As(err, &verrs):
		errs := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			errs = append(errs, FieldError{Field: fe.Field(), Message: messageFor(fe)})
		}
		r.Fail(c, http.StatusBadRequest, msgValidationFailed, errs...)
	case errors.Is(err, io.EOF):
		r.Fail(c, http.StatusBadRequest, msgBodyRequired)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		r.Fail(c, http.StatusBadRequest, msgInvalidJSON)
	case errors.As(err, &typeErr):
		r.Fail(c, http.StatusBadRequest, msgValidationFailed,
			FieldError{Field: typeErr.Field, Message: label(typeErr.Field) + " has an invalid type"})
	case errors.As(err, &numErr):
		r.Fail(c, http.StatusBadRequest, msgValidationFailed,
			FieldError{Field: "unknown", Message: fmt.Sprintf("%q is not a valid value", numErr.Num)})
	default:
		r.Fail(c, http.StatusBadRequest, msgValidationFailed, FieldError{Field: "unknown", Message: err.Error()})
	}
}
