package dto

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"dtokit/src/core/dto/rule"
)

// Strictness controls what happens to input keys no field declares.
type Strictness int

const (
	// InheritStrictness defers to embedded types; lenient if none decides.
	InheritStrictness Strictness = iota
	// RejectUnknown fails construction with an UnknownFieldsError.
	RejectUnknown
	// IgnoreUnknown drops unknown keys silently.
	IgnoreUnknown
)

// Options holds the type-level directives of a DTO.
type Options struct {
	Strictness Strictness

	// MapName names every field that has no `dto` name of its own.
	MapName NameMapper

	// Defaults are tried in order for fields with no explicit or type caster.
	Defaults []DefaultCaster

	// Rules adds rule objects to fields, keyed by Go field name. They run
	// after the rules of the `validate` tag.
	Rules map[string][]rule.Rule
}

// Declarer is implemented by DTO types. The method is called on the zero
// value.
type Declarer interface {
	DTO() Options
}

// Strict can be embedded to make a DTO reject unknown input keys.
type Strict struct{}

// DTO implements Declarer.
func (Strict) DTO() Options { return Options{Strictness: RejectUnknown} }

var declarerType = reflect.TypeOf((*Declarer)(nil)).Elem()

func isDeclarer(t reflect.Type) bool {
	return t.Kind() == reflect.Struct &&
		(t.Implements(declarerType) || reflect.PointerTo(t).Implements(declarerType))
}

func optionsOf(t reflect.Type) (Options, bool) {
	switch {
	case t.Implements(declarerType):
		return reflect.Zero(t).Interface().(Declarer).DTO(), true
	case reflect.PointerTo(t).Implements(declarerType):
		return reflect.New(t).Interface().(Declarer).DTO(), true
	}
	return Options{}, false
}

// Class is the resolved descriptor of a DTO type.
type Class struct {
	Type       reflect.Type
	Name       string
	Properties []*Property
	Strict     bool

	byName map[string]*Property
}

type classEntry struct {
	class *Class
	err   error
}

var classes sync.Map // reflect.Type -> *classEntry

// Describe returns the descriptor of the struct type t, resolving and caching
// it on first use. Pointer types are dereferenced.
func Describe(t reflect.Type) (*Class, error) {
	if t == nil {
		return nil, &DefinitionError{Type: "<nil>", Err: errors.New("nil type")}
	}
	t = derefType(t)
	if e, ok := classes.Load(t); ok {
		entry := e.(*classEntry)
		return entry.class, entry.err
	}

	c, err := newClass(t)
	e, _ := classes.LoadOrStore(t, &classEntry{class: c, err: err})
	entry := e.(*classEntry)
	if entry.err == nil {
		logger().Debug("dto descriptor resolved",
			"type", entry.class.Name,
			"fields", len(entry.class.Properties),
			"strict", entry.class.Strict,
		)
	}
	return entry.class, entry.err
}

// DescribeOf is Describe for a type parameter.
func DescribeOf[T any]() (*Class, error) {
	return Describe(reflect.TypeFor[T]())
}

func newClass(t reflect.Type) (*Class, error) {
	name := qualifiedName(t)
	if t.Kind() != reflect.Struct {
		return nil, &DefinitionError{Type: name, Err: fmt.Errorf("expected a struct, got %v", t.Kind())}
	}

	opts, _ := optionsOf(t)
	c := &Class{
		Type:   t,
		Name:   name,
		Strict: resolveStrict(t),
		byName: make(map[string]*Property),
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		// own exported fields only; embedded types are ancestors
		if f.Anonymous || !f.IsExported() {
			continue
		}
		p, err := resolveProperty(t, f, opts)
		if err != nil {
			return nil, &DefinitionError{Type: name, Field: f.Name, Err: err}
		}
		if p == nil {
			continue
		}
		if other, dup := c.byName[p.External]; dup && other.Name != p.Name {
			return nil, &DefinitionError{Type: name, Field: f.Name,
				Err: fmt.Errorf("external name %q already used by %s", p.External, other.Name)}
		}
		c.Properties = append(c.Properties, p)
		c.byName[p.External] = p
		c.byName[p.Name] = p
	}

	for field := range opts.Rules {
		if p, ok := c.byName[field]; !ok || p.Name != field {
			return nil, &DefinitionError{Type: name, Field: field, Err: errors.New("rules declared for unknown field")}
		}
	}
	return c, nil
}

// resolveStrict walks t and its embedded types breadth first; the nearest
// decided Strictness wins.
func resolveStrict(t reflect.Type) bool {
	queue := []reflect.Type{t}
	seen := map[reflect.Type]bool{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true

		if opts, ok := optionsOf(cur); ok && opts.Strictness != InheritStrictness {
			return opts.Strictness == RejectUnknown
		}
		if cur.Kind() != reflect.Struct {
			continue
		}
		for i := 0; i < cur.NumField(); i++ {
			f := cur.Field(i)
			if ft := derefType(f.Type); f.Anonymous && ft.Kind() == reflect.Struct {
				queue = append(queue, ft)
			}
		}
	}
	return false
}

// Property returns the descriptor of a field by Go or external name.
func (c *Class) Property(name string) (*Property, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// build runs the construction pipeline over args and returns a pointer to the
// new value and the resolved value of every field by Go name. args is not
// modified.
func (c *Class) build(args map[string]any) (reflect.Value, map[string]any, error) {
	rest := make(map[string]any, len(args))
	for k, v := range args {
		rest[k] = v
	}

	target := reflect.New(c.Type)
	values := make(map[string]any, len(c.Properties))

	for _, p := range c.Properties {
		v := rest[p.External]
		delete(rest, p.External)
		if v == nil && p.HasDefault {
			v = p.Default
		}

		if p.isBool && v != nil && reflect.TypeOf(v).Kind() != reflect.Bool {
			return reflect.Value{}, nil, c.typeError(p, v, nil)
		}

		if p.Caster != nil && v != nil {
			cast, err := p.Caster.Cast(v)
			if err != nil {
				if isConstructionError(err) {
					return reflect.Value{}, nil, &NestedError{Field: p.External, Err: err}
				}
				return reflect.Value{}, nil, c.typeError(p, v, err)
			}
			v = cast
		}

		if !assign(target.Elem().FieldByIndex(p.index), v) {
			return reflect.Value{}, nil, c.typeError(p, v, nil)
		}
		values[p.Name] = v
	}

	if c.Strict && len(rest) > 0 {
		extra := make([]string, 0, len(rest))
		for k := range rest {
			extra = append(extra, k)
		}
		sort.Strings(extra)
		return reflect.Value{}, nil, &UnknownFieldsError{Type: c.Name, Fields: extra}
	}

	if err := c.Validate(target.Interface(), values, args); err != nil {
		return reflect.Value{}, nil, err
	}
	return target, values, nil
}

func (c *Class) typeError(p *Property, v any, cause error) error {
	return &InputTypeError{
		Type:     c.Name,
		Field:    p.External,
		Expected: describeType(p.Type),
		Got:      describeValue(v),
		Err:      cause,
	}
}

func isConstructionError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrUnknownFields) || errors.Is(err, ErrInputType)
}

// Validate runs every rule of every field against values, keyed by Go field
// name. fields is the raw input by external name; rules implementing
// rule.RawInputRule see the field's entry there instead of its value. A field
// is skipped only when its value is empty and it is not required. All
// failures are collected before returning.
func (c *Class) Validate(instance any, values map[string]any, fields map[string]any) error {
	var (
		order    []string
		failures map[string][]rule.Result
	)
	for _, p := range c.Properties {
		v := values[p.Name]
		if isEmpty(v) && !p.required {
			continue
		}
		raw, hasRaw := fields[p.External]
		for _, r := range p.Validators {
			in := v
			if hasRaw && rule.WantsRawInput(r) {
				in = raw
			}
			res := r.Validate(in, fields)
			if res.Valid {
				continue
			}
			if failures == nil {
				failures = make(map[string][]rule.Result)
			}
			if _, seen := failures[p.External]; !seen {
				order = append(order, p.External)
			}
			failures[p.External] = append(failures[p.External], res)
		}
	}
	if failures == nil {
		return nil
	}
	return &ValidationError{
		Type:     c.Name,
		Instance: instance,
		Fields:   order,
		Failures: failures,
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}
