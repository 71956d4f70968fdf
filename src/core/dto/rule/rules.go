package rule

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"dtokit/src/core/dto/enum"
)

func init() {
	Register("required", noArgs(Required))
	Register("accepted", noArgs(Accepted))
	Register("boolean", noArgs(Boolean))
	Register("email", noArgs(Email))
	Register("integer", noArgs(Integer))
	Register("numeric", noArgs(Numeric))
	Register("phone", noArgs(PhoneNumber))
	Register("text", noArgs(Text))
	Register("url", noArgs(URL))
	Register("uuid", noArgs(UUID))
	Register("date", func(args []string, _ reflect.Type) (Rule, error) {
		return Date(args...), nil
	})
	Register("min", func(args []string, _ reflect.Type) (Rule, error) {
		n, err := oneNumber(args)
		if err != nil {
			return nil, err
		}
		return Min(n), nil
	})
	Register("max", func(args []string, _ reflect.Type) (Rule, error) {
		n, err := oneNumber(args)
		if err != nil {
			return nil, err
		}
		return Max(n), nil
	})
	Register("regex", func(args []string, _ reflect.Type) (Rule, error) {
		if len(args) != 1 {
			return nil, errors.New("regex takes exactly one pattern")
		}
		return compileRegex(args[0])
	})
	Register("in", func(args []string, _ reflect.Type) (Rule, error) {
		if len(args) == 0 {
			return nil, errors.New("in needs at least one value")
		}
		return In(strings2any(args)...), nil
	})
	Register("enum", func(args []string, t reflect.Type) (Rule, error) {
		if len(args) > 0 {
			return Enum(strings2any(args)...), nil
		}
		for t != nil && t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if !enum.IsEnum(t) {
			return nil, fmt.Errorf("field type %v is not an enumeration", t)
		}
		return EnumOf(t), nil
	})
	Register("confirmed", func(args []string, _ reflect.Type) (Rule, error) {
		if len(args) != 1 || args[0] == "" {
			return nil, errors.New("confirmed needs the sibling field name")
		}
		return Confirmed(args[0]), nil
	})
}

func noArgs(fn func() Rule) Factory {
	return func(args []string, _ reflect.Type) (Rule, error) {
		if len(args) > 0 {
			return nil, errors.New("takes no arguments")
		}
		return fn(), nil
	}
}

func oneNumber(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, errors.New("takes exactly one number")
	}
	return strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
}

func strings2any(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// Required fails on nil and on strings that are blank after trimming.
// "0" is a valid value.
func Required() Rule { return requiredRule{} }

type requiredRule struct{}

func (requiredRule) Name() string { return "required" }

func (requiredRule) Validate(v any, _ map[string]any) Result {
	if isNil(v) {
		return Fail("is required")
	}
	if s, ok := asString(v); ok && strings.TrimSpace(s) == "" {
		return Fail("is required")
	}
	return Pass()
}

// Accepted passes for true, 1, "1", "yes", "on" and "true".
func Accepted() Rule {
	return Func("accepted", func(v any, _ map[string]any) Result {
		switch x := v.(type) {
		case bool:
			if x {
				return Pass()
			}
		case string:
			switch strings.ToLower(x) {
			case "yes", "on", "1", "true":
				return Pass()
			}
		default:
			if n, ok := number(v); ok && n == 1 {
				return Pass()
			}
		}
		return Fail("must be accepted")
	})
}

// Boolean passes for booleans and for 0, 1, "0", "1", "true", "false".
func Boolean() Rule {
	return Func("boolean", func(v any, _ map[string]any) Result {
		switch x := v.(type) {
		case bool:
			return Pass()
		case string:
			switch x {
			case "0", "1", "true", "false":
				return Pass()
			}
		default:
			if n, ok := number(v); ok && (n == 0 || n == 1) {
				return Pass()
			}
		}
		return Fail("must be true or false")
	})
}

// Date passes for time.Time values and strings in one of layouts. With no
// layouts RFC3339, DateOnly and DateTime are tried.
func Date(layouts ...string) Rule {
	if len(layouts) == 0 {
		layouts = []string{time.RFC3339, time.DateOnly, time.DateTime}
	}
	return Func("date", func(v any, _ map[string]any) Result {
		switch x := v.(type) {
		case time.Time:
			if !x.IsZero() {
				return Pass()
			}
		case *time.Time:
			if x != nil && !x.IsZero() {
				return Pass()
			}
		default:
			if s, ok := asString(v); ok {
				for _, l := range layouts {
					if _, err := time.Parse(l, s); err == nil {
						return Pass()
					}
				}
			}
		}
		return Fail("is not a valid date")
	})
}

var checker = validator.New()

// Email checks the stringified value with the validator "email" tag.
func Email() Rule {
	return Func("email", func(v any, _ map[string]any) Result {
		s, ok := asString(v)
		if !ok || checker.Var(s, "required,email") != nil {
			return Fail("must be a valid email address")
		}
		return Pass()
	})
}

// URL checks the stringified value with the validator "url" tag.
func URL() Rule {
	return Func("url", func(v any, _ map[string]any) Result {
		s, ok := asString(v)
		if !ok || checker.Var(s, "required,url") != nil {
			return Fail("must be a valid URL")
		}
		return Pass()
	})
}

// UUID passes for uuid.UUID values and parseable UUID strings.
func UUID() Rule {
	return Func("uuid", func(v any, _ map[string]any) Result {
		switch x := v.(type) {
		case uuid.UUID:
			return Pass()
		case *uuid.UUID:
			if x != nil {
				return Pass()
			}
		default:
			if s, ok := asString(v); ok {
				if _, err := uuid.Parse(s); err == nil {
					return Pass()
				}
			}
		}
		return Fail("must be a valid UUID")
	})
}

// Enum passes iff the value is strictly one of values: same dynamic type and
// equal. Enum("a", "b") rejects "A".
func Enum(values ...any) Rule {
	set := append([]any(nil), values...)
	return Func("enum", func(v any, _ map[string]any) Result {
		for _, want := range set {
			if strictEqual(v, want) {
				return Pass()
			}
		}
		return Fail("must be one of %s", joinValues(set))
	})
}

// EnumOf passes iff the value resolves to a case of the enumeration type t,
// first through native resolution and then through the key-or-value lookup of
// a library definition. Library enumerations list their display keys in the
// failure message.
func EnumOf(t reflect.Type) Rule {
	def, declared := enum.DefinitionOf(t)
	return Func("enum", func(v any, _ map[string]any) Result {
		if _, ok := enum.TryFrom(t, v); ok {
			return Pass()
		}
		if declared {
			if def.Has(v) {
				return Pass()
			}
			return Fail("must be one of %s", strings.Join(def.DisplayKeys(), ", "))
		}
		return Fail("is not a valid %s", strings.ToLower(t.Name()))
	})
}

// In passes iff the stringified value equals one of the stringified values.
func In(values ...any) Rule {
	set := make([]string, len(values))
	for i, v := range values {
		set[i] = fmt.Sprint(v)
	}
	return Func("in", func(v any, _ map[string]any) Result {
		if !isNil(v) {
			got := stringify(v)
			for _, want := range set {
				if got == want {
					return Pass()
				}
			}
		}
		return Fail("must be one of %s", strings.Join(set, ", "))
	})
}

// Integer passes for integer kinds, integral floats and strings holding a
// base-10 integer.
func Integer() Rule {
	return Func("integer", func(v any, _ map[string]any) Result {
		if s, ok := asString(v); ok {
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				return Pass()
			}
			return Fail("must be an integer")
		}
		rv := reflect.ValueOf(v)
		switch {
		case !rv.IsValid():
		case rv.CanInt(), rv.CanUint():
			return Pass()
		case rv.CanFloat():
			if f := rv.Float(); f == float64(int64(f)) {
				return Pass()
			}
		}
		return Fail("must be an integer")
	})
}

// Numeric passes for numbers and numeric strings.
func Numeric() Rule {
	return Func("numeric", func(v any, _ map[string]any) Result {
		if _, ok := number(v); ok {
			return Pass()
		}
		return Fail("must be a number")
	})
}

// Min fails when the numeric value is below n. Non-numeric values fail.
func Min(n float64) Rule {
	return Func("min", func(v any, _ map[string]any) Result {
		x, ok := number(v)
		if !ok {
			return Fail("must be a number")
		}
		if x < n {
			return Fail("must be at least %s", formatNumber(n))
		}
		return Pass()
	})
}

// Max fails when the numeric value is above n. Non-numeric values fail.
func Max(n float64) Rule {
	return Func("max", func(v any, _ map[string]any) Result {
		x, ok := number(v)
		if !ok {
			return Fail("must be a number")
		}
		if x > n {
			return Fail("must not be greater than %s", formatNumber(n))
		}
		return Pass()
	})
}

// Regex fails when the stringified value does not match pattern. It panics
// if pattern does not compile.
func Regex(pattern string) Rule {
	r, err := compileRegex(pattern)
	if err != nil {
		panic(err)
	}
	return r
}

func compileRegex(pattern string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return Func("regex", func(v any, _ map[string]any) Result {
		if isNil(v) || !re.MatchString(stringify(v)) {
			return Fail("format is invalid")
		}
		return Pass()
	}), nil
}

// Text passes for string values.
func Text() Rule {
	return Func("text", func(v any, _ map[string]any) Result {
		if _, ok := asString(v); ok {
			return Pass()
		}
		return Fail("must be a string")
	})
}

// Confirmed requires fields[field] to exist and equal the field's own raw
// input, so casters on the field do not affect the comparison.
func Confirmed(field string) Rule {
	return confirmedRule{field: field}
}

type confirmedRule struct {
	field string
}

func (confirmedRule) Name() string { return "confirmed" }

func (r confirmedRule) Validate(v any, fields map[string]any) Result {
	other, ok := fields[r.field]
	if !ok || !reflect.DeepEqual(v, other) {
		return Fail("confirmation does not match")
	}
	return Pass()
}

// RawInput marks confirmedRule as checking the uncast input.
func (confirmedRule) RawInput() bool { return true }

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// asString returns the string held by v, following one pointer and accepting
// named string types.
func asString(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// number converts numeric kinds and numeric strings to float64.
func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch {
	case !rv.IsValid():
		return 0, false
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	case rv.CanFloat():
		return rv.Float(), true
	case rv.Kind() == reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		return f, err == nil
	}
	return 0, false
}

func stringify(v any) string {
	if s, ok := asString(v); ok {
		return s
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() || !ra.Comparable() {
		return false
	}
	return ra.Equal(rb)
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
