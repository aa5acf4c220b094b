package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/salesdash/backend/internal/interfaces/http/dto"
)

// SetupValidator makes binding errors name fields the way clients send
// them: the json key, else the form key.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})
}

// HandleValidationError answers 400 with one detail per failed field.
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// FormatValidationErrors builds the error envelope for a binding error.
// Errors that did not come from the validator produce no details.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details = make([]dto.ValidationDetail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: getValidationMessage(fe)})
		}
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

var validationMessages = map[string]func(param string, isString bool) string{
	"required": func(string, bool) string { return "This field is required" },
	"min":      bound("Must be at least "),
	"max":      bound("Must be at most "),
	"len":      func(p string, _ bool) string { return "Must be exactly " + p + " characters" },
	"oneof":    func(p string, _ bool) string { return "Must be one of: " + p },
	"gte":      func(p string, _ bool) string { return "Must be greater than or equal to " + p },
	"lte":      func(p string, _ bool) string { return "Must be less than or equal to " + p },
	"gt":       func(p string, _ bool) string { return "Must be greater than " + p },
	"lt":       func(p string, _ bool) string { return "Must be less than " + p },
	"url":      func(string, bool) string { return "Invalid URL format" },
	"numeric":  func(string, bool) string { return "Must be numeric" },
}

// bound words min and max limits as a length for strings.
func bound(prefix string) func(string, bool) string {
	return func(p string, isString bool) string {
		if isString {
			return prefix + p + " characters"
		}
		return prefix + p
	}
}

func getValidationMessage(fe validator.FieldError) string {
	msg, ok := validationMessages[fe.Tag()]
	if !ok {
		return "Invalid value"
	}
	return msg(fe.Param(), fe.Kind() == reflect.String)
}
