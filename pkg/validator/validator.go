// Package validator turns go-playground/validator failures into
// human-readable field messages. Structs describe themselves with
// `validate` rules and a `label` tag naming the field for people.
package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// FieldError is one broken rule, addressed by its JSON path
type FieldError struct {
	Field   string
	Message string
}

// Error collects every broken rule of a single Struct call
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, f.Message)
	}
	return strings.Join(messages, ", ")
}

// Enum is implemented by typed enums that know their valid members
type Enum interface {
	IsValid() bool
	Options() []string
}

var (
	once     sync.Once
	validate *validator.Validate
)

// Get returns the shared validator with the custom rules registered
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			e, ok := fl.Field().Interface().(Enum)
			return ok && e.IsValid()
		})
	})
	return validate
}

// Struct validates s and returns *Error when any rule fails
func Struct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	root := reflect.TypeOf(s)
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		path, label := describe(root, fe.StructNamespace())
		msg := message(fe, label)
		// required and min on the same slice produce the same sentence
		if seen[path+msg] {
			continue
		}
		seen[path+msg] = true
		out.Fields = append(out.Fields, FieldError{Field: path, Message: msg})
	}
	return out
}

func message(fe validator.FieldError, label string) string {
	kind := fe.Kind()
	switch fe.Tag() {
	case "required", "notblank":
		if kind == reflect.Slice {
			return fmt.Sprintf("At least one %s is required", strings.ToLower(label))
		}
		return label + " is required"
	case "min":
		if kind == reflect.Slice {
			return fmt.Sprintf("At least one %s is required", strings.ToLower(label))
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "enum":
		if e, ok := fe.Value().(Enum); ok {
			return fmt.Sprintf("%s must be one of: %s", label, strings.Join(e.Options(), ", "))
		}
	case "hexcolor":
		return label + " must be a hex color such as #1a73e8"
	case "url", "http_url":
		return label + " must be a valid URL"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	}
	return label + " is invalid"
}

// describe maps a Go namespace such as "Receipt.FeeItems[0].Amount" to the
// JSON path "feeItems[0].amount" and the label of the final field.
func describe(root reflect.Type, namespace string) (string, string) {
	t := root
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	path := make([]string, 0, len(parts))
	label := ""
	for _, part := range parts {
		name, index := part, ""
		if i := strings.IndexByte(part, '['); i >= 0 {
			name, index = part[:i], part[i:]
		}

		if t.Kind() != reflect.Struct {
			path = append(path, part)
			label = name
			continue
		}
		sf, ok := t.FieldByName(name)
		if !ok {
			path = append(path, part)
			label = name
			continue
		}

		jsonName := strings.Split(sf.Tag.Get("json"), ",")[0]
		if jsonName == "" || jsonName == "-" {
			jsonName = sf.Name
		}
		path = append(path, jsonName+index)

		label = sf.Tag.Get("label")
		if label == "" {
			label = jsonName
		}

		t = sf.Type
		for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
			t = t.Elem()
		}
	}

	return strings.Join(path, "."), label
}
