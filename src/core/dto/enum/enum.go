// Package enum describes the two enumeration shapes the DTO engine understands.
//
// Native enumerations are named scalar types that know their own cases:
//
//	type Category string
//
//	func (c Category) Valid() bool    { ... }
//	func (c Category) String() string { return string(c) }
//
// Library enumerations are named scalar types backed by a Definition, which
// lists ordered key/value cases:
//
//	var audiences = enum.Define("audience",
//	    enum.Case{Key: "Kids", Value: "kids"},
//	    enum.Case{Key: "Everyone", Value: "all"},
//	)
//
//	type Audience string
//
//	func (Audience) EnumDefinition() *enum.Definition { return audiences }
//
// Both shapes are detected by capability, never by type name.
package enum

import (
	"fmt"
	"reflect"
	"strings"
)

// Native is implemented by self-describing enumeration types.
type Native interface {
	fmt.Stringer
	Valid() bool
}

// Declared is implemented by enumeration types backed by a Definition.
type Declared interface {
	EnumDefinition() *Definition
}

// Case is one member of a Definition.
type Case struct {
	Key   string
	Value any
}

// Definition is an ordered, immutable list of cases.
type Definition struct {
	name  string
	cases []Case
}

// Define builds a Definition. Keys must be unique.
func Define(name string, cases ...Case) *Definition {
	seen := make(map[string]struct{}, len(cases))
	for _, c := range cases {
		if _, dup := seen[c.Key]; dup {
			panic(fmt.Sprintf("enum %s: duplicate key %q", name, c.Key))
		}
		seen[c.Key] = struct{}{}
	}
	return &Definition{name: name, cases: append([]Case(nil), cases...)}
}

// Name returns the definition name.
func (d *Definition) Name() string { return d.name }

// Cases returns a copy of the cases in declaration order.
func (d *Definition) Cases() []Case {
	return append([]Case(nil), d.cases...)
}

// Resolve finds the case whose value equals v, falling back to a case whose
// key equals v, then to a case-insensitive key match. Strings never match
// numeric values: 1 and "1" are different.
func (d *Definition) Resolve(v any) (Case, bool) {
	if v == nil {
		return Case{}, false
	}
	for _, c := range d.cases {
		if sameValue(c.Value, v) {
			return c, true
		}
	}
	if s, ok := stringOf(v); ok {
		for _, c := range d.cases {
			if c.Key == s {
				return c, true
			}
		}
		// display keys are lowered
		for _, c := range d.cases {
			if strings.EqualFold(c.Key, s) {
				return c, true
			}
		}
	}
	return Case{}, false
}

// Has reports whether v matches a key or a value of the definition.
func (d *Definition) Has(v any) bool {
	_, ok := d.Resolve(v)
	return ok
}

// DisplayKeys returns the lowered keys of all cases, in declaration order.
func (d *Definition) DisplayKeys() []string {
	out := make([]string, len(d.cases))
	for i, c := range d.cases {
		out[i] = strings.ToLower(c.Key)
	}
	return out
}

// DisplayKey returns the lowered key of the case matching v.
func (d *Definition) DisplayKey(v any) (string, bool) {
	c, ok := d.Resolve(v)
	if !ok {
		return "", false
	}
	return strings.ToLower(c.Key), true
}

var (
	nativeType   = reflect.TypeOf((*Native)(nil)).Elem()
	declaredType = reflect.TypeOf((*Declared)(nil)).Elem()
)

// IsNative reports whether t is a native enumeration type.
func IsNative(t reflect.Type) bool {
	return t != nil && isScalar(t) && t.Implements(nativeType)
}

// IsDeclared reports whether t is a library enumeration type.
func IsDeclared(t reflect.Type) bool {
	return t != nil && isScalar(t) && t.Implements(declaredType)
}

// IsEnum reports whether t is either kind of enumeration.
func IsEnum(t reflect.Type) bool {
	return IsNative(t) || IsDeclared(t)
}

// DefinitionOf returns the Definition backing t, if any.
func DefinitionOf(t reflect.Type) (*Definition, bool) {
	if !IsDeclared(t) {
		return nil, false
	}
	d := reflect.Zero(t).Interface().(Declared).EnumDefinition()
	return d, d != nil
}

// TryFrom performs native resolution: v is converted to t and accepted if the
// result reports itself valid.
func TryFrom(t reflect.Type, v any) (any, bool) {
	if !IsNative(t) || v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return v, v.(Native).Valid()
	}
	if !sameKindFamily(rv.Kind(), t.Kind()) || !rv.Type().ConvertibleTo(t) {
		return nil, false
	}
	if isFloat(rv.Kind()) && !isFloat(t.Kind()) && rv.Float() != float64(int64(rv.Float())) {
		return nil, false
	}
	out := rv.Convert(t).Interface()
	if !out.(Native).Valid() {
		return nil, false
	}
	return out, true
}

// Resolve turns a raw value into a value of enumeration type t, trying native
// resolution first and the backing Definition second.
func Resolve(t reflect.Type, v any) (any, bool) {
	if out, ok := TryFrom(t, v); ok {
		return out, true
	}
	def, ok := DefinitionOf(t)
	if !ok {
		return nil, false
	}
	c, ok := def.Resolve(v)
	if !ok {
		return nil, false
	}
	cv := reflect.ValueOf(c.Value)
	if !cv.IsValid() || !cv.Type().ConvertibleTo(t) {
		return nil, false
	}
	return cv.Convert(t).Interface(), true
}

// DisplayKey returns the lowered display key for an enumeration value.
func DisplayKey(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	t := reflect.TypeOf(v)
	if IsNative(t) {
		return strings.ToLower(v.(Native).String()), true
	}
	if def, ok := DefinitionOf(t); ok {
		// cases hold plain values; compare against the underlying scalar
		return def.DisplayKey(underlying(reflect.ValueOf(v)))
	}
	return "", false
}

func underlying(v reflect.Value) any {
	switch {
	case v.Kind() == reflect.String:
		return v.String()
	case isInt(v.Kind()):
		return int(v.Int())
	case isUint(v.Kind()):
		return uint(v.Uint())
	case isFloat(v.Kind()):
		return v.Float()
	case v.Kind() == reflect.Bool:
		return v.Bool()
	}
	return v.Interface()
}

func sameValue(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() {
		return false
	}
	// decoded JSON numbers are float64; compare numbers by magnitude
	if isNumber(ra.Kind()) && isNumber(rb.Kind()) {
		return toFloat(ra) == toFloat(rb)
	}
	if ra.Kind() != rb.Kind() || !ra.Comparable() || !rb.Comparable() {
		return false
	}
	return underlying(ra) == underlying(rb)
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isInt(v.Kind()):
		return float64(v.Int())
	case isUint(v.Kind()):
		return float64(v.Uint())
	}
	return v.Float()
}

func stringOf(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func isScalar(t reflect.Type) bool {
	k := t.Kind()
	return k == reflect.String || k == reflect.Bool || isInt(k) || isUint(k) || isFloat(k)
}

func sameKindFamily(a, b reflect.Kind) bool {
	switch {
	case a == reflect.String || b == reflect.String:
		return a == b
	case a == reflect.Bool || b == reflect.Bool:
		return a == b
	}
	return isNumber(a) && isNumber(b)
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
