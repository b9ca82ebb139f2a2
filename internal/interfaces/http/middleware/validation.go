package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// moneyPattern is the wire format for monetary amounts
var moneyPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

var setupOnce sync.Once

// SetupValidator configures gin's validator: JSON field names in errors and the money tag
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("money", validateMoney)
	})
}

// validateMoney accepts non-negative amounts with at most two fractional digits
func validateMoney(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return moneyPattern.MatchString(fl.Field().String())
}

// IsMoney reports whether s is a well-formed monetary amount
func IsMoney(s string) bool {
	return moneyPattern.MatchString(s)
}

// FormatValidationErrors turns binding errors into field details.
// Errors that are not validator errors produce no details.
func FormatValidationErrors(err error) []shared.ErrorDetail {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make([]shared.ErrorDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, shared.ErrorDetail{
			Field:   fieldPath(e),
			Message: getValidationMessage(e),
		})
	}
	return details
}

// fieldPath drops the top-level struct name, so items[0].quantity rather than CheckoutRequest.items[0].quantity
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// HandleBindError answers a failed ShouldBind* call with the validation envelope
func HandleBindError(c *gin.Context, err error) {
	message := "Request validation failed"
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxErr):
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
			dto.NewErrorResponse(dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size").
				WithRequestID(GetRequestID(c)))
		return
	case errors.Is(err, io.EOF):
		message = "Request body is required"
	case errors.As(err, &syntaxErr):
		message = "Request body is not valid JSON"
	case errors.As(err, &typeErr):
		c.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewErrorResponse(shared.CodeValidation, message).
				WithRequestID(GetRequestID(c)).
				WithErrors([]shared.ErrorDetail{{Field: typeErr.Field, Message: "Must be of type " + typeErr.Type.String()}}))
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewErrorResponse(shared.CodeValidation, message).
			WithRequestID(GetRequestID(c)).
			WithErrors(FormatValidationErrors(err)))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "money":
		return "Must be a decimal amount with at most 2 fractional digits"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " item(s)"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	default:
		return "Invalid value"
	}
}
