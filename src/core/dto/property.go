package dto

import (
	"fmt"
	"reflect"
	"strings"

	"dtokit/src/core/dto/enum"
	"dtokit/src/core/dto/rule"
)

// Struct tags read by the engine.
const (
	tagName     = "dto"
	tagDefault  = "default"
	tagCast     = "cast"
	tagValidate = "validate"
)

// Property is the resolved metadata of one DTO field. It is built once per
// type and never modified afterwards.
type Property struct {
	// Name is the Go field name.
	Name string

	// External is the key the field is read from and written to.
	External string

	// Types are the declared type names, qualified by package path.
	Types []string

	// Type is the Go type of the field.
	Type reflect.Type

	Default    any
	HasDefault bool

	Validators []rule.Rule

	// Caster is nil when raw values pass through unchanged.
	Caster Caster

	index    []int
	required bool
	isBool   bool
	isEnum   bool
}

// BaseType returns the field type with pointers stripped.
func (p *Property) BaseType() reflect.Type {
	return derefType(p.Type)
}

// Accepts reports whether name is one of the declared types.
func (p *Property) Accepts(name string) bool {
	for _, t := range p.Types {
		if t == name {
			return true
		}
	}
	return false
}

// IsEnum reports whether the field holds an enumeration.
func (p *Property) IsEnum() bool { return p.isEnum }

// resolveProperty builds the Property for field f of owner. It returns nil
// for fields excluded with `dto:"-"`.
func resolveProperty(owner reflect.Type, f reflect.StructField, opts Options) (*Property, error) {
	name, tagOpts := parseNameTag(f.Tag.Get(tagName))
	if name == "-" {
		return nil, nil
	}

	p := &Property{
		Name:  f.Name,
		Type:  f.Type,
		index: f.Index,
	}

	// field directive > type directive > declared name
	switch {
	case name != "":
		p.External = name
	case opts.MapName != nil:
		p.External = opts.MapName.MapName(f.Name)
	default:
		p.External = f.Name
	}

	if union, ok := tagOpts["types"]; ok {
		if f.Type.Kind() != reflect.Interface {
			return nil, fmt.Errorf("types= needs an interface field, got %v", f.Type)
		}
		for _, alt := range strings.Split(union, "|") {
			p.Types = append(p.Types, normalizeTypeName(owner, strings.TrimSpace(alt)))
		}
	} else {
		p.Types = []string{qualifiedName(f.Type)}
	}

	base := p.BaseType()
	p.isBool = base.Kind() == reflect.Bool
	p.isEnum = enum.IsEnum(base)

	if raw, ok := f.Tag.Lookup(tagDefault); ok {
		v, err := parseDefault(f.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("default %q: %w", raw, err)
		}
		p.Default, p.HasDefault = v, true
	}

	rules, err := rule.Parse(f.Tag.Get(tagValidate), f.Type)
	if err != nil {
		return nil, err
	}
	p.Validators = append(rules, opts.Rules[f.Name]...)
	if p.isEnum && !hasRule(p.Validators, "enum") {
		p.Validators = append(p.Validators, rule.EnumOf(base))
	}
	for _, r := range p.Validators {
		if rule.IsRequired(r) {
			p.required = true
		}
	}

	c, err := resolveCaster(p, f.Tag.Get(tagCast), opts.Defaults)
	if err != nil {
		return nil, err
	}
	p.Caster = c

	return p, nil
}

func hasRule(rules []rule.Rule, name string) bool {
	for _, r := range rules {
		if r.Name() == name {
			return true
		}
	}
	return false
}

// parseNameTag splits `dto:"name,key=value,..."`.
func parseNameTag(tag string) (string, map[string]string) {
	parts := strings.Split(tag, ",")
	name := strings.TrimSpace(parts[0])
	opts := make(map[string]string, len(parts)-1)
	for _, p := range parts[1:] {
		k, v, _ := strings.Cut(strings.TrimSpace(p), "=")
		if k != "" {
			opts[k] = v
		}
	}
	return name, opts
}

// qualifiedName names t by package path, so types with the same short name
// in different packages stay distinct.
func qualifiedName(t reflect.Type) string {
	t = derefType(t)
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// normalizeTypeName resolves the self and parent references of a union
// alternative against the declaring type.
func normalizeTypeName(owner reflect.Type, name string) string {
	switch name {
	case "self":
		return qualifiedName(owner)
	case "parent":
		for i := 0; i < owner.NumField(); i++ {
			f := owner.Field(i)
			if f.Anonymous && derefType(f.Type).Kind() == reflect.Struct {
				return qualifiedName(f.Type)
			}
		}
		return qualifiedName(owner)
	}
	return name
}
