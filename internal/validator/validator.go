package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/movie-booking-api/internal/domain"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterTagNameFunc(jsonFieldName)

	validator.RegisterValidation("seat", validateSeat)
	validator.RegisterValidation("slot", validateSlot)
	validator.RegisterValidation("booking_status", validateBookingStatus)
	validator.RegisterValidation("nonneg", validateNonNegative)
	validator.RegisterValidation("price", validatePrice)
	validator.RegisterValidation("past_date", validatePastDate)

	return validator
}

// jsonFieldName reports fields by their wire name so violations match the request body.
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}

	return name
}

func validateSeat(fl validator.FieldLevel) bool {
	return domain.IsValidSeat(fl.Field().String())
}

func validateSlot(fl validator.FieldLevel) bool {
	_, err := domain.ParseSlot(fl.Field().String())
	return err == nil
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	_, err := domain.ParseBookingStatus(fl.Field().String())
	return err == nil
}

func validateNonNegative(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return !v.IsNegative()
	case int:
		return v >= 0
	case float64:
		return v >= 0
	default:
		return false
	}
}

func validatePrice(fl validator.FieldLevel) bool {
	price, ok := fl.Field().Interface().(decimal.Decimal)
	return ok && domain.IsValidPrice(price)
}

func validatePastDate(fl validator.FieldLevel) bool {
	var date time.Time

	switch v := fl.Field().Interface().(type) {
	case openapi_types.Date:
		date = v.Time
	case time.Time:
		date = v
	case string:
		parsed, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			return false
		}
		date = parsed
	default:
		return false
	}

	return !domain.CalendarDate(date).After(domain.CalendarDate(time.Now()))
}

// Violations flattens validator errors into domain violations. Errors that did not
// come from the validator are returned as they are.
func Violations(err error) ([]domain.Violation, error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}

	violations := make([]domain.Violation, len(validationErrors))
	for i, fe := range validationErrors {
		violations[i] = domain.Violation{
			Field: fieldPath(fe),
			Issue: ValidationMessage(fe),
		}
	}

	return violations, nil
}

// fieldPath drops the top level struct name from the namespace, "CreateBookingRequest.seats[1].seatNumber"
// becomes "seats[1].seatNumber".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}

	return fe.Field()
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid identifier"
	case "url":
		return "must be a valid URL"
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", "YYYY-MM-DD")
	case "min":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", err.Param())
		}
		if err.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", err.Param())
		}
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", err.Param())
		}
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", err.Param())
	case "seat":
		return "must be an uppercase letter followed by one or two digits"
	case "slot":
		return "must be one of morning, noon, evening, night"
	case "booking_status":
		return "must be one of pending, confirmed, cancelled"
	case "price":
		return fmt.Sprintf("must have at most %d decimal places and be less than %s", domain.PriceScale, domain.MaxPrice)
	case "nonneg":
		return "must not be negative"
	case "past_date":
		return "must not be in the future"
	default:
		return "is invalid"
	}
}
