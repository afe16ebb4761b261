package main

import (
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/apavering/user-directory/app/dto"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// validateRequest validates a request DTO. On failure it returns a 400
// envelope carrying the formatted field errors and ok=false.
func validateRequest(req interface{}) (dto.Envelope, bool) {
	if err := validate.Struct(req); err != nil {
		return formatValidationErrors(err), false
	}
	return dto.Envelope{}, true
}

// formatValidationErrors formats validator errors into user-friendly messages
func formatValidationErrors(err error) dto.Envelope {
	var messages []string

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			messages = append(messages, formatFieldError(fieldError))
		}
	} else {
		return dto.Fail(http.StatusBadRequest, err.Error())
	}

	return dto.Fail(http.StatusBadRequest, strings.Join(messages, "; "))
}

// formatFieldError formats a single field validation error
func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// sanitizeText trims whitespace, strips null bytes and non-printable
// control characters, and caps length in runes (0 = no limit).
func sanitizeText(input string, maxLength int) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var builder strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}
	input = builder.String()

	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		runes := []rune(input)
		input = string(runes[:maxLength])
	}

	return input
}

// sanitizeEmail sanitizes email input (trims and normalizes)
func sanitizeEmail(email string, maxLength int) string {
	// Email addresses are case-insensitive.
	return strings.ToLower(sanitizeText(email, maxLength))
}
