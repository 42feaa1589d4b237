package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	nonstandard "github.com/go-playground/validator/v10/non-standard/validators"

	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("notblank", nonstandard.NotBlank)
	_ = v.RegisterValidation("nonzero", func(fl validator.FieldLevel) bool {
		n, ok := fl.Field().Interface().(Number)
		return ok && !n.IsZero()
	})
	_ = v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
		n, ok := fl.Field().Interface().(Number)
		return ok && n.Set && n.Value.IsPositive()
	})
	return v
}

// messenger lets a request type pick the top-level message of its
// validation error.
type messenger interface {
	ValidationMessage() string
}

// DecodeJSONBody decodes r's body into dest and runs struct validation.
// Unknown fields are ignored; storefront clients send whole documents.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return Struct(dest)
}

// Struct validates dest with its validate tags. When dest implements
// ValidationMessage, that message heads the error; details stay per field.
func Struct(dest any) error {
	if err := validate.Struct(dest); err != nil {
		message := "validation failed"
		if m, ok := dest.(messenger); ok {
			message = m.ValidationMessage()
		}
		return formatValidationErrors(message, err)
	}
	return nil
}

func formatValidationErrors(message string, err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Namespace()[strings.Index(fieldErr.Namespace(), ".")+1:]] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, message)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank", "nonzero":
		return "is required"
	case "positive":
		return "must be greater than 0"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid id"
	}
	return "is invalid"
}
