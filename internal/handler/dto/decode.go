package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hpnchanel/usersvc/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON keys rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode reads a JSON body into dst and runs its validate tags.
// Every failure is a validation error whose message is safe to return.
func Decode(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation(decodeMessage(err), err)
	}
	if dec.More() {
		return apperr.Validation("Request body must contain a single JSON object", nil)
	}

	if err := validate.Struct(dst); err != nil {
		return apperr.Validation(validationMessage(err), err)
	}
	return nil
}

func decodeMessage(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return "Request body is empty"
	case errors.As(err, &maxBytesErr):
		return "Request body too large"
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "Request body is not valid JSON"
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Sprintf("Field %q has the wrong type", typeErr.Field)
		}
		return "Request body has a value of the wrong type"
	default:
		return "Invalid request body"
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	if fe.Tag() == "required" {
		return fmt.Sprintf("Field %q is required", fe.Field())
	}
	return fmt.Sprintf("Field %q is invalid", fe.Field())
}
