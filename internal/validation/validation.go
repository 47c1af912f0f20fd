package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymlog/pkg"

	"github.com/go-playground/validator/v10"
)

const (
	MsgRequired        = "This field is required."
	MsgInvalid         = "Invalid value."
	MsgInvalidUUID     = "Must be a valid UUID."
	MsgInvalidDuration = "Duration has wrong format. Use one of these formats instead: [DD] [HH:[MM:]]ss[.uuuuuu]."
	MsgInvalidDatetime = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm:ss[.uuuuuu]Z|+HH:MM."
	MsgInvalidJSON     = "Malformed JSON body."
	MsgInvalidUsername = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)

var usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		mustRegister(v, "duration", func(fl validator.FieldLevel) bool {
			_, err := pkg.ParseDuration(fl.Field().String())
			return err == nil
		})
		mustRegister(v, "username", func(fl validator.FieldLevel) bool {
			return usernameRegex.MatchString(fl.Field().String())
		})
		mustRegister(v, "rfc3339", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(time.RFC3339Nano, fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %s", tag, err))
	}
}

// Struct runs the `validate` struct tags of s and translates failures
// into field path keyed messages. Returns nil if s is valid.
func Struct(s any) Errors {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{NonFieldErrorsKey: {err.Error()}}
	}

	errs := Errors{}
	for _, fe := range fieldErrs {
		errs.Add(fieldPath(fe.Namespace()), message(fe))
	}
	return errs
}

// fieldPath drops the top level struct name from the namespace:
// "RoutineInput.routineExercises[0].order" -> "routineExercises[0].order"
func fieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return path
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "gte", "min":
		if isString(fe.Kind()) {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte", "max":
		if isString(fe.Kind()) {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "uuid":
		return MsgInvalidUUID
	case "duration":
		return MsgInvalidDuration
	case "rfc3339":
		return MsgInvalidDatetime
	case "username":
		return MsgInvalidUsername
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	default:
		return MsgInvalid
	}
}

func isString(kind reflect.Kind) bool {
	return kind == reflect.String
}

// DecodeJSON decodes a request body into dst. Syntax and type errors are
// returned as Errors so handlers can report them like any other field error.
func DecodeJSON(body io.Reader, dst any) Errors {
	err := json.NewDecoder(body).Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return Errors{typeErr.Field: {typeMessage(typeErr.Type)}}
	}
	return Errors{NonFieldErrorsKey: {MsgInvalidJSON}}
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.Float32, reflect.Float64:
		return "A valid number is required."
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.String:
		return "Not a valid string."
	case reflect.Slice, reflect.Array:
		return "Expected a list of items."
	case reflect.Struct, reflect.Map:
		return "Invalid data. Expected a dictionary."
	default:
		return MsgInvalid
	}
}

// CheckUniqueOrders reports every item whose order collides with another item in the same list.
// orders[i] is the order of the i-th item under listPath.
func CheckUniqueOrders(listPath string, orders []int) Errors {
	seen := make(map[int]int, len(orders))
	for _, o := range orders {
		seen[o]++
	}

	errs := Errors{}
	for i, o := range orders {
		if seen[o] > 1 {
			errs.Add(Path(listPath, i, "order"), fmt.Sprintf("Order %d is used more than once.", o))
		}
	}
	return errs
}
