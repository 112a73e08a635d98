package validator

import (
	"context"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator"
)

var (
	global     *validator.Validate
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const (
	ErrFieldRequired     = "Obrigatório"
	ErrInvalidFormat     = "Inválido"
	ErrUnknownValidation = "Valor não aceite"
)

// statusChecker is implemented by enum fields that know their accepted values.
type statusChecker interface {
	Valid() bool
}

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("rsvpemail", validateEmail)
	_ = v.RegisterValidation("rsvpstatus", validateStatus)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

// Errors maps a json field name to the message shown next to that field.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func validateEmail(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

func validateStatus(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(statusChecker); ok {
		return s.Valid()
	}
	return false
}

// IsEmail reports whether s has the local@domain.tld shape accepted by the form.
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// Validate checks structure and returns Errors when any field fails.
func Validate(ctx context.Context, structure any) error {
	if errs := parseValidationErrors(Validator().StructCtx(ctx, structure)); len(errs) > 0 {
		return errs
	}
	return nil
}

func parseValidationErrors(err error) Errors {
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrors) == 0 {
		return nil
	}
	out := make(Errors, len(vErrors))
	for _, ve := range vErrors {
		var msg string
		switch ve.Tag() {
		case "required":
			msg = ErrFieldRequired
		case "rsvpemail", "rsvpstatus":
			msg = ErrInvalidFormat
		default:
			msg = ErrUnknownValidation
		}
		if _, seen := out[ve.Field()]; !seen {
			out[ve.Field()] = msg
		}
	}
	return out
}
