package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo.Context.Validate.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}

// validationMessage turns validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fieldName(fe)))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fieldName(fe)))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fieldName(fe)))
		}
	}
	return strings.Join(msgs, "; ")
}

var fieldNames = map[string]string{
	"UserID":  "user_id",
	"ItemID":  "item_id",
	"Email":   "email",
	"Name":    "name",
	"Lat":     "lat",
	"Lng":     "lng",
	"Radius":  "radius",
	"ShowAll": "show_all",
}

func fieldName(fe validator.FieldError) string {
	if n, ok := fieldNames[fe.Field()]; ok {
		return n
	}
	return strings.ToLower(fe.Field())
}
