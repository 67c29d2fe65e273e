package handler

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// phone accepts the loose formats attendees type on a device keyboard:
// digits, an optional leading +, and common separators. At least seven
// digits are required.
func phone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	digits := 0
	for i, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= 7
}

func RegisterValidation() error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		return v.RegisterValidation("phone", phone)
	}
	return fmt.Errorf("error getting validation engine")
}
