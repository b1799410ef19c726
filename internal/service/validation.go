package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	quantityTooLarge = "Quantity must be at most 99"
)

var (
	validate     = newValidator()
	phoneChars   = regexp.MustCompile(`^\+?[0-9 ()\-.]+$`)
	currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)
)

// messages maps "<json field>.<tag>" to the text shown next to the field.
var messages = map[string]string{
	"name.required":          "Name is required",
	"name.max":               "Name must be at most 100 characters",
	"email.required":         "Email is required",
	"email.email":            "Please enter a valid email address",
	"phone.required":         "Phone number is required",
	"phone.phone":            "Please enter a valid phone number",
	"orderType.required":     "Please choose delivery or pickup",
	"orderType.oneof":        "Order type must be delivery or pickup",
	"paymentMethod.required": "Please choose a payment method",
	"paymentMethod.oneof":    "Payment method must be card or cash",
	"notes.max":              "Notes must be at most 500 characters",
	"items.required":         "Your cart is empty",
	"items.min":              "Your cart is empty",
	"menuItemId.required":    "Menu item is required",
	"quantity.min":           "Quantity must be at least 1",
	"quantity.max":           quantityTooLarge,
	"date.required":          "Date is required",
	"date.isodate":           "Date must use the YYYY-MM-DD format",
	"time.required":          "Time is required",
	"time.clock":             "Time must use the HH:MM format",
	"guests.min":             "Party size must be between 1 and 10",
	"guests.max":             "Party size must be between 1 and 10",
	"specialRequests.max":    "Special requests must be at most 500 characters",
	"code.required":          "Currency code is required",
	"code.currency":          "Currency code must be three upper-case letters",
	"symbol.required":        "Currency symbol is required",
	"symbol.max":             "Currency symbol must be at most 5 characters",
	"status.required":        "Status is required",
	"price.gt":               "Price must be greater than zero",
	"categoryId.required":    "Category is required",
	"description.max":        "Description must be at most 1000 characters",
	"imageUrl.url":           "Image URL must be a valid URL",
	"password.required":      "Password is required",
	"password.min":           "Password must be at least 8 characters",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return validPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(timeLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return currencyCode.MatchString(fl.Field().String())
	})
	return v
}

// validPhone accepts 7 to 15 digits with common separators.
func validPhone(value string) bool {
	if !phoneChars.MatchString(value) {
		return false
	}
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

// checkStruct runs the tag rules and returns every failing field. It never
// stops at the first error.
func checkStruct(input any) []FieldError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Path: "body", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		out = append(out, FieldError{Path: fieldPath(fe.Namespace()), Message: fieldMessage(fe)})
	}
	return out
}

// fieldPath drops the struct name: "OrderInput.items[0].quantity" -> "items[0].quantity".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if fe.Tag() == "required" {
		return fe.Field() + " is required"
	}
	return fe.Field() + " is invalid"
}
