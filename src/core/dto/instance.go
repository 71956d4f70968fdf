package dto

import (
	"fmt"
	"reflect"

	"github.com/goccy/go-json"

	"dtokit/src/core/dto/enum"
)

// Instance is a constructed, validated DTO of type T. Its data never changes
// after construction; Only and Except return new views over the same data.
type Instance[T any] struct {
	class  *Class
	data   *T
	values map[string]any
	input  map[string]any
	origin map[string]any

	only   map[string]struct{} // nil means no include filter
	except map[string]struct{}
}

// Make builds a T from args keyed by external field names.
//
// Every declared field is assigned its input value, its default or nil,
// after the field caster ran. Construction fails with an InputTypeError, an
// UnknownFieldsError (strict types) or a ValidationError, and never returns a
// partially valid instance.
func Make[T any](args map[string]any) (*Instance[T], error) {
	return build[T](args, nil)
}

// ArrayOf builds one instance per map, keeping order. The first failing item
// aborts the batch; its error is wrapped in an ItemError.
func ArrayOf[T any](items []map[string]any) ([]*Instance[T], error) {
	out := make([]*Instance[T], 0, len(items))
	for i, args := range items {
		inst, err := Make[T](args)
		if err != nil {
			return nil, &ItemError{Index: i, Err: err}
		}
		out = append(out, inst)
	}
	return out, nil
}

func build[T any](args, origin map[string]any) (*Instance[T], error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, &DefinitionError{Type: t.String(), Err: fmt.Errorf("DTO type must be a struct, got %v", t.Kind())}
	}
	class, err := Describe(t)
	if err != nil {
		return nil, err
	}
	ptr, values, err := class.build(args)
	if err != nil {
		logger().Debug("dto construction rejected", "type", class.Name, "error", err)
		return nil, err
	}
	return &Instance[T]{
		class:  class,
		data:   ptr.Interface().(*T),
		values: values,
		input:  cloneMap(args),
		origin: origin,
	}, nil
}

// Data returns a copy of the constructed value.
func (i *Instance[T]) Data() T {
	return *i.data
}

// Class returns the descriptor of T.
func (i *Instance[T]) Class() *Class {
	return i.class
}

// Origin returns a copy of the normalized source map the instance was built
// from by From. It is nil for instances built by Make.
func (i *Instance[T]) Origin() map[string]any {
	if i.origin == nil {
		return nil
	}
	out := make(map[string]any, len(i.origin))
	for k, v := range i.origin {
		out[k] = v
	}
	return out
}

// Get returns the live value of a field by Go or external name.
func (i *Instance[T]) Get(name string) (any, bool) {
	p, ok := i.class.Property(name)
	if !ok {
		return nil, false
	}
	if i.values[p.Name] == nil {
		return nil, true
	}
	return reflect.ValueOf(i.data).Elem().FieldByIndex(p.index).Interface(), true
}

// Has reports whether name is a declared field holding a non-nil value.
func (i *Instance[T]) Has(name string) bool {
	p, ok := i.class.Property(name)
	return ok && i.values[p.Name] != nil
}

// With returns a new instance with one field replaced, running the whole
// construction pipeline again over the original input. A nil value unsets the
// field, so its default applies. The receiver is left untouched.
func (i *Instance[T]) With(name string, value any) (*Instance[T], error) {
	p, ok := i.class.Property(name)
	if !ok {
		return nil, &UnknownFieldsError{Type: i.class.Name, Fields: []string{name}}
	}
	args := cloneMap(i.input)
	delete(args, p.External)
	if value != nil {
		args[p.External] = value
	}
	return build[T](args, i.origin)
}

// Only returns a view that serializes just the given external keys. Calls
// narrow each other.
func (i *Instance[T]) Only(keys ...string) *Instance[T] {
	next := i.clone()
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if i.only == nil {
			set[k] = struct{}{}
			continue
		}
		if _, ok := i.only[k]; ok {
			set[k] = struct{}{}
		}
	}
	next.only = set
	return next
}

// Except returns a view that leaves out the given external keys. Calls
// accumulate.
func (i *Instance[T]) Except(keys ...string) *Instance[T] {
	next := i.clone()
	set := make(map[string]struct{}, len(i.except)+len(keys))
	for k := range i.except {
		set[k] = struct{}{}
	}
	for _, k := range keys {
		set[k] = struct{}{}
	}
	next.except = set
	return next
}

func (i *Instance[T]) clone() *Instance[T] {
	next := *i
	return &next
}

// ToArray serializes the instance into a map keyed by external names, with
// enumeration values replaced by their lowered display keys. The include
// filter applies before the exclude filter.
func (i *Instance[T]) ToArray() map[string]any {
	out := i.class.serialize(reflect.ValueOf(i.data).Elem(), i.values)
	if i.only != nil {
		for k := range out {
			if _, keep := i.only[k]; !keep {
				delete(out, k)
			}
		}
	}
	for k := range i.except {
		delete(out, k)
	}
	return out
}

// All is an alias of ToArray.
func (i *Instance[T]) All() map[string]any {
	return i.ToArray()
}

// ToJSON encodes ToArray as JSON.
func (i *Instance[T]) ToJSON() ([]byte, error) {
	return json.Marshal(i.ToArray())
}

// MarshalJSON implements json.Marshaler.
func (i *Instance[T]) MarshalJSON() ([]byte, error) {
	return i.ToJSON()
}

// serialize reads the own fields of v. values, when set, marks fields that
// resolved to nil during construction.
func (c *Class) serialize(v reflect.Value, values map[string]any) map[string]any {
	out := make(map[string]any, len(c.Properties))
	for _, p := range c.Properties {
		if values != nil && values[p.Name] == nil {
			out[p.External] = nil
			continue
		}
		out[p.External] = exportValue(v.FieldByIndex(p.index), p.isEnum)
	}
	return out
}

func exportValue(v reflect.Value, isEnum bool) any {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if isEnum || enum.IsEnum(v.Type()) {
		if key, ok := enum.DisplayKey(v.Interface()); ok {
			return key
		}
	}
	if isDeclarer(v.Type()) {
		if class, err := Describe(v.Type()); err == nil {
			return class.serialize(v, nil)
		}
	}
	if v.Kind() == reflect.Slice && !v.IsNil() {
		el := derefType(v.Type().Elem())
		if isDeclarer(el) || enum.IsEnum(el) {
			items := make([]any, v.Len())
			for i := range items {
				items[i] = exportValue(v.Index(i), false)
			}
			return items
		}
	}
	return v.Interface()
}
