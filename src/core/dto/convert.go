package dto

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"dtokit/src/core/dto/enum"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
	uuidType     = reflect.TypeOf(uuid.UUID{})
)

// assign stores v into dst, converting between compatible kinds. nil stores
// the zero value.
func assign(dst reflect.Value, v any) bool {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return true
	}
	out, ok := convertValue(reflect.ValueOf(v), dst.Type())
	if !ok {
		return false
	}
	dst.Set(out)
	return true
}

// convertValue converts src to t without losing information: floats must be
// integral to become integers, and numbers must fit the target kind.
func convertValue(src reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if !src.IsValid() {
		return reflect.Zero(t), true
	}
	if src.Type().AssignableTo(t) {
		return src, true
	}
	if src.Kind() == reflect.Interface {
		if src.IsNil() {
			return reflect.Zero(t), true
		}
		return convertValue(src.Elem(), t)
	}
	if t.Kind() == reflect.Pointer {
		if src.Kind() == reflect.Pointer && src.IsNil() {
			return reflect.Zero(t), true
		}
		if src.Kind() == reflect.Pointer {
			src = src.Elem()
		}
		inner, ok := convertValue(src, t.Elem())
		if !ok {
			return reflect.Value{}, false
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, true
	}
	if src.Kind() == reflect.Pointer {
		if src.IsNil() {
			return reflect.Zero(t), true
		}
		return convertValue(src.Elem(), t)
	}

	switch {
	case isNumberKind(src.Kind()) && isNumberKind(t.Kind()):
		return convertNumber(src, t)
	case src.Kind() == reflect.String && t.Kind() == reflect.String,
		src.Kind() == reflect.Bool && t.Kind() == reflect.Bool:
		return src.Convert(t), true
	case src.Kind() == reflect.Slice && t.Kind() == reflect.Slice,
		src.Kind() == reflect.Array && t.Kind() == reflect.Slice:
		out := reflect.MakeSlice(t, src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			el, ok := convertValue(src.Index(i), t.Elem())
			if !ok {
				return reflect.Value{}, false
			}
			out.Index(i).Set(el)
		}
		return out, true
	case src.Kind() == reflect.Map && t.Kind() == reflect.Map:
		out := reflect.MakeMapWithSize(t, src.Len())
		iter := src.MapRange()
		for iter.Next() {
			k, ok := convertValue(iter.Key(), t.Key())
			if !ok {
				return reflect.Value{}, false
			}
			v, ok := convertValue(iter.Value(), t.Elem())
			if !ok {
				return reflect.Value{}, false
			}
			out.SetMapIndex(k, v)
		}
		return out, true
	}
	return reflect.Value{}, false
}

func convertNumber(src reflect.Value, t reflect.Type) (reflect.Value, bool) {
	probe := reflect.New(t).Elem()
	switch {
	case src.CanFloat():
		f := src.Float()
		switch {
		case probe.CanFloat():
			if probe.OverflowFloat(f) {
				return reflect.Value{}, false
			}
		case probe.CanInt():
			if f != math.Trunc(f) || probe.OverflowInt(int64(f)) {
				return reflect.Value{}, false
			}
		case probe.CanUint():
			if f != math.Trunc(f) || f < 0 || probe.OverflowUint(uint64(f)) {
				return reflect.Value{}, false
			}
		}
	case src.CanInt():
		n := src.Int()
		switch {
		case probe.CanInt():
			if probe.OverflowInt(n) {
				return reflect.Value{}, false
			}
		case probe.CanUint():
			if n < 0 || probe.OverflowUint(uint64(n)) {
				return reflect.Value{}, false
			}
		}
	case src.CanUint():
		n := src.Uint()
		switch {
		case probe.CanInt():
			if n > math.MaxInt64 || probe.OverflowInt(int64(n)) {
				return reflect.Value{}, false
			}
		case probe.CanUint():
			if probe.OverflowUint(n) {
				return reflect.Value{}, false
			}
		}
	}
	return src.Convert(t), true
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// parseDefault turns a `default` tag into a value of t. Kinds that cannot be
// parsed from text keep the raw string and rely on the field caster.
func parseDefault(t reflect.Type, raw string) (any, error) {
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	v := reflect.New(base).Elem()
	switch {
	case base == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		v.SetInt(int64(d))
	case base.Kind() == reflect.String:
		v.SetString(raw)
	case base.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		v.SetBool(b)
	case v.CanInt():
		n, err := strconv.ParseInt(raw, 10, base.Bits())
		if err != nil {
			return nil, err
		}
		v.SetInt(n)
	case v.CanUint():
		n, err := strconv.ParseUint(raw, 10, base.Bits())
		if err != nil {
			return nil, err
		}
		v.SetUint(n)
	case v.CanFloat():
		f, err := strconv.ParseFloat(raw, base.Bits())
		if err != nil {
			return nil, err
		}
		v.SetFloat(f)
	default:
		return raw, nil
	}
	return v.Interface(), nil
}

func describeValue(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

// describeType names what a field of type t accepts, in words fit for an
// API client: "an integer", "a UUID", "one of kids, teens, everyone".
func describeType(t reflect.Type) string {
	t = derefType(t)
	switch {
	case t == uuidType:
		return "a UUID"
	case t == timeType:
		return "a timestamp"
	case t == durationType:
		return "a duration"
	case enum.IsEnum(t):
		if def, ok := enum.DefinitionOf(t); ok {
			return "one of " + strings.Join(def.DisplayKeys(), ", ")
		}
		return "a valid " + strings.ToLower(t.Name())
	case isDeclarer(t):
		return "an object"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "a non-negative integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "a list"
	case reflect.Map, reflect.Struct:
		return "an object"
	}
	return "a value"
}
