package service

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/ntwari02/proviQuiz/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

const invalidData = "Invalid data"

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// imageUrl is validated as the string it will be stored as.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if img := normalizeImage(field.Interface().(models.NullableString)); img != nil {
			return *img
		}
		return ""
	}, models.NullableString{})
	if err := v.RegisterValidation("httpurl", isHTTPURL); err != nil {
		panic(err)
	}
	return v
}

func isHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// check runs the validate tags of s. Issue paths start with prefix.
func check(s any, prefix ...any) []Issue {
	return collect(validate.Struct(s), prefix)
}

// checkPresent is check for partial updates: fields left out of the body are skipped.
func checkPresent(s any, prefix ...any) []Issue {
	present := presentFields(s)
	return collect(validate.StructFiltered(s, func(ns []byte) bool {
		field := string(ns)
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if strings.ContainsAny(field, ".[") {
			return false
		}
		return !present[field]
	}), prefix)
}

func presentFields(s any) map[string]bool {
	v := reflect.Indirect(reflect.ValueOf(s))
	present := make(map[string]bool, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		switch f.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
			present[v.Type().Field(i).Name] = !f.IsNil()
		default:
			if ns, ok := f.Interface().(models.NullableString); ok {
				present[v.Type().Field(i).Name] = ns.Set
				continue
			}
			present[v.Type().Field(i).Name] = true
		}
	}
	return present
}

func collect(err error, prefix []any) []Issue {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Issue{{Path: append([]any{}, prefix...), Message: err.Error()}}
	}
	list := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := append(append([]any{}, prefix...), issuePath(fe.Namespace())...)
		list = append(list, Issue{Path: path, Message: issueMessage(fe)})
	}
	return list
}

// issuePath turns "SubmitExamRequest.answers[0].questionId" into [answers 0 questionId].
func issuePath(namespace string) []any {
	segments := strings.Split(namespace, ".")
	var path []any
	for _, seg := range segments[1:] {
		name, rest, _ := strings.Cut(seg, "[")
		if name != "" {
			path = append(path, name)
		}
		for rest != "" {
			var key string
			key, rest, _ = strings.Cut(rest, "]")
			rest = strings.TrimPrefix(rest, "[")
			if n, err := strconv.Atoi(key); err == nil {
				path = append(path, n)
			} else {
				path = append(path, key)
			}
		}
	}
	return path
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "httpurl":
		return "Invalid url"
	case "oneof":
		allowed := strings.Fields(fe.Param())
		for i, a := range allowed {
			allowed[i] = "'" + a + "'"
		}
		return fmt.Sprintf("Invalid enum value. Expected %s, received '%v'", strings.Join(allowed, " | "), fe.Value())
	case "min", "gte":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
		case reflect.Slice, reflect.Array:
			return fmt.Sprintf("Array must contain at least %s element(s)", fe.Param())
		}
		return "Number must be greater than or equal to " + fe.Param()
	case "max", "lte":
		return "Number must be less than or equal to " + fe.Param()
	case "gt":
		return "Number must be greater than " + fe.Param()
	}
	return "Invalid value"
}

// invalid wraps a non-empty issue list.
func invalid(message string, list []Issue) error {
	if len(list) == 0 {
		return nil
	}
	return &ValidationError{Message: message, Issues: list}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
