package dto

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"dtokit/src/core/dto/enum"
)

// Caster converts a raw input value into the representation of its field.
// Casters never see nil: null input bypasses them.
type Caster interface {
	Cast(value any) (any, error)
}

// CasterFunc adapts a function into a Caster.
type CasterFunc func(value any) (any, error)

// Cast implements Caster.
func (f CasterFunc) Cast(value any) (any, error) { return f(value) }

// CasterFactory builds a Caster for a field. args are the extra arguments of
// a `cast` tag.
type CasterFactory func(p *Property, args ...string) (Caster, error)

// CasterProvider is implemented by field types that know how to cast raw
// input into themselves.
type CasterProvider interface {
	DTOCaster(p *Property) Caster
}

// DefaultCaster is a type-level caster directive. The first entry whose
// When accepts a field supplies that field's caster.
type DefaultCaster struct {
	When func(p *Property) bool
	Use  CasterFactory
}

var (
	castersMu sync.RWMutex
	casters   = map[string]CasterFactory{}
)

// RegisterCaster makes a caster available to `cast` tags under name.
func RegisterCaster(name string, f CasterFactory) {
	castersMu.Lock()
	defer castersMu.Unlock()
	casters[name] = f
}

// RegisteredCasters returns the sorted names of registered casters.
func RegisteredCasters() []string {
	castersMu.RLock()
	defer castersMu.RUnlock()
	names := make([]string, 0, len(casters))
	for n := range casters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func casterFactory(name string) (CasterFactory, bool) {
	castersMu.RLock()
	defer castersMu.RUnlock()
	f, ok := casters[name]
	return f, ok
}

// Cast returns a factory for the registered caster name, bound to args. It is
// meant for DefaultCaster.Use.
func Cast(name string, args ...string) CasterFactory {
	return func(p *Property, _ ...string) (Caster, error) {
		f, ok := casterFactory(name)
		if !ok {
			return nil, fmt.Errorf("unknown caster %q", name)
		}
		return f(p, args...)
	}
}

// TypeIs matches fields whose type, pointers stripped, is t.
func TypeIs(t reflect.Type) func(p *Property) bool {
	return func(p *Property) bool { return p.BaseType() == t }
}

// KindIs matches fields whose kind, pointers stripped, is k.
func KindIs(k reflect.Kind) func(p *Property) bool {
	return func(p *Property) bool { return p.BaseType().Kind() == k }
}

func init() {
	RegisterCaster("uuid", func(*Property, ...string) (Caster, error) {
		return CasterFunc(castUUID), nil
	})
	RegisterCaster("time", func(_ *Property, args ...string) (Caster, error) {
		layout := time.RFC3339
		if len(args) > 0 && args[0] != "" {
			layout = args[0]
		}
		return CasterFunc(func(v any) (any, error) { return castTime(v, layout) }), nil
	})
	RegisterCaster("duration", func(*Property, ...string) (Caster, error) {
		return CasterFunc(castDuration), nil
	})
	RegisterCaster("int", func(*Property, ...string) (Caster, error) {
		return CasterFunc(castInt), nil
	})
	RegisterCaster("float", func(*Property, ...string) (Caster, error) {
		return CasterFunc(castFloat), nil
	})
	RegisterCaster("string", func(*Property, ...string) (Caster, error) {
		return CasterFunc(castString), nil
	})
	RegisterCaster("trim", stringCaster(strings.TrimSpace))
	RegisterCaster("lower", stringCaster(strings.ToLower))
	RegisterCaster("upper", stringCaster(strings.ToUpper))
	RegisterCaster("split", func(_ *Property, args ...string) (Caster, error) {
		sep := ","
		if len(args) > 0 && args[0] != "" {
			sep = args[0]
		}
		return CasterFunc(func(v any) (any, error) { return castSplit(v, sep) }), nil
	})
	RegisterCaster("json", func(p *Property, _ ...string) (Caster, error) {
		return jsonCaster{t: p.Type}, nil
	})
	RegisterCaster("list", func(p *Property, _ ...string) (Caster, error) {
		if p.Type.Kind() != reflect.Slice || !isDeclarer(derefType(p.Type.Elem())) {
			return nil, fmt.Errorf("list caster needs a slice of DTOs, got %v", p.Type)
		}
		return listCaster{t: p.Type}, nil
	})
}

func castUUID(v any) (any, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case []byte:
		if len(x) == 16 {
			return uuid.FromBytes(x)
		}
		return uuid.ParseBytes(x)
	case string:
		return uuid.Parse(x)
	}
	return nil, fmt.Errorf("cannot cast %T to uuid", v)
}

func castTime(v any, layout string) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return time.Parse(layout, x)
	}
	return nil, fmt.Errorf("cannot cast %T to time", v)
}

func castDuration(v any) (any, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case string:
		return time.ParseDuration(x)
	}
	if n, err := castInt(v); err == nil {
		return time.Duration(n.(int64)), nil
	}
	return nil, fmt.Errorf("cannot cast %T to duration", v)
}

func castInt(v any) (any, error) {
	if s, ok := v.(string); ok {
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	}
	out, ok := convertValue(reflect.ValueOf(v), reflect.TypeOf(int64(0)))
	if !ok {
		return nil, fmt.Errorf("cannot cast %T to int", v)
	}
	return out.Interface(), nil
}

func castFloat(v any) (any, error) {
	if s, ok := v.(string); ok {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	out, ok := convertValue(reflect.ValueOf(v), reflect.TypeOf(float64(0)))
	if !ok {
		return nil, fmt.Errorf("cannot cast %T to float", v)
	}
	return out.Interface(), nil
}

func castString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Struct, reflect.Array:
		return nil, fmt.Errorf("cannot cast %T to string", v)
	}
	return fmt.Sprint(v), nil
}

// castSplit turns "a, b,,c" into [a b c]. Lists pass through.
func castSplit(v any, sep string) (any, error) {
	switch x := v.(type) {
	case []string:
		return x, nil
	case string:
		var out []string
		for _, part := range strings.Split(x, sep) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot split %T", v)
}

func stringCaster(fn func(string) string) CasterFactory {
	return func(*Property, ...string) (Caster, error) {
		return CasterFunc(func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", v)
			}
			return fn(s), nil
		}), nil
	}
}

// jsonCaster decodes JSON text into the field type.
type jsonCaster struct {
	t reflect.Type
}

func (c jsonCaster) Cast(v any) (any, error) {
	var data []byte
	switch x := v.(type) {
	case string:
		data = []byte(x)
	case []byte:
		data = x
	default:
		return v, nil
	}
	out := reflect.New(c.t)
	if err := json.Unmarshal(data, out.Interface()); err != nil {
		return nil, err
	}
	return out.Elem().Interface(), nil
}

// enumCaster resolves raw input into an enumeration case. Values matching no
// case pass through unchanged and are left to the enum rule.
type enumCaster struct {
	t reflect.Type
}

func (c enumCaster) Cast(v any) (any, error) {
	if out, ok := enum.Resolve(c.t, v); ok {
		return out, nil
	}
	return v, nil
}

// nestedCaster builds a nested DTO from a map.
type nestedCaster struct {
	t reflect.Type // struct type, or pointer to it
}

func (c nestedCaster) Cast(v any) (any, error) {
	base := derefType(c.t)
	rv := reflect.ValueOf(v)
	if rv.Type() == c.t || rv.Type() == base {
		return v, nil
	}
	args, err := Normalize(v)
	if err != nil {
		return nil, err
	}
	class, err := Describe(base)
	if err != nil {
		return nil, err
	}
	ptr, _, err := class.build(args)
	if err != nil {
		return nil, err
	}
	if c.t.Kind() == reflect.Pointer {
		return ptr.Interface(), nil
	}
	return ptr.Elem().Interface(), nil
}

// listCaster builds a slice of nested DTOs, preserving order.
type listCaster struct {
	t reflect.Type // slice type
}

func (c listCaster) Cast(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Type() == c.t {
		return v, nil
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	el := nestedCaster{t: c.t.Elem()}
	out := reflect.MakeSlice(c.t, rv.Len(), rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item, err := el.Cast(rv.Index(i).Interface())
		if err != nil {
			return nil, &ItemError{Index: i, Err: err}
		}
		out.Index(i).Set(reflect.ValueOf(item))
	}
	return out.Interface(), nil
}

var errNoCaster = errors.New("no caster")

// resolveCaster applies the caster priority order to p.
func resolveCaster(p *Property, spec string, defaults []DefaultCaster) (Caster, error) {
	// explicit directive
	if spec != "" {
		parts := strings.Split(spec, "|")
		f, ok := casterFactory(parts[0])
		if !ok {
			return nil, fmt.Errorf("unknown caster %q", parts[0])
		}
		return f(p, parts[1:]...)
	}

	// cast-aware field type
	if c, err := typeCaster(p); err == nil {
		return c, nil
	}

	// type-level defaults, declaration order
	for _, d := range defaults {
		if d.When != nil && d.Use != nil && d.When(p) {
			return d.Use(p)
		}
	}
	return nil, nil
}

var (
	providerType = reflect.TypeOf((*CasterProvider)(nil)).Elem()
)

func typeCaster(p *Property) (Caster, error) {
	base := p.BaseType()
	switch {
	case base.Implements(providerType):
		return reflect.Zero(base).Interface().(CasterProvider).DTOCaster(p), nil
	case reflect.PointerTo(base).Implements(providerType):
		return reflect.New(base).Interface().(CasterProvider).DTOCaster(p), nil
	case enum.IsEnum(base):
		return enumCaster{t: base}, nil
	case isDeclarer(base):
		return nestedCaster{t: p.Type}, nil
	}
	return nil, errNoCaster
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
