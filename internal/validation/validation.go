package validation

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"portfolio/internal/types"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var validate = newValidator()

var plain = validator.New()

func urlRule(s string) bool {
	return plain.Var(s, "url") == nil
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
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	// image accepts an absolute URL or a path returned by the upload endpoints
	_ = v.RegisterValidation("image", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if strings.HasPrefix(s, "/uploads/") && !strings.Contains(s, "..") {
			return true
		}
		return urlRule(s)
	})
	return v
}

// Struct validates v and converts failures into a VALIDATION_ERROR.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.BadRequest(err.Error())
	}
	return types.Validation("Validation failed", FieldErrors(verrs))
}

func FieldErrors(verrs validator.ValidationErrors) []types.FieldError {
	out := make([]types.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, types.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// fieldPath drops the root struct name, leaving e.g. "orders[0].id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return "Invalid email address"
	case "url":
		return "Invalid url"
	case "image":
		return "Must be a URL or an uploaded file path"
	case "uuid", "uuid4":
		return "Invalid ID format"
	case "slug":
		return "Slug must be lowercase with hyphens"
	case "oneof":
		return fmt.Sprintf("Invalid enum value. Expected %s", strings.ReplaceAll(fe.Param(), " ", " | "))
	case "min":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("%s must contain at least %s item(s)", name, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", name, fe.Param())
	case "max":
		if isCollection(fe.Kind()) {
			return fmt.Sprintf("%s must contain at most %s item(s)", name, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", name, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", name)
}

func isCollection(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array || k == reflect.Map
}

// DecodeJSON reads a JSON body into dst and validates it.
func DecodeJSON(r io.Reader, dst any) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return types.BadRequest("Request body is required")
		}
		return types.BadRequest("Invalid JSON body")
	}
	return Struct(dst)
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose body may be omitted.
func DecodeOptionalJSON(r io.Reader, dst any) error {
	err := json.NewDecoder(r).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return types.BadRequest("Invalid JSON body")
	}
	return Struct(dst)
}

// ParseID parses a path id; anything but a UUID is a validation error.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, types.Validation("Invalid ID format", []types.FieldError{
			{Field: "id", Message: "Invalid ID format"},
		})
	}
	return id, nil
}
