// Package rule holds the validation rules that can be attached to DTO fields.
//
// A rule is a pure check over one value. Rules that need to look at other
// input fields (Confirmed) receive the full input map explicitly.
//
// Rules are declared either as objects:
//
//	rule.Min(5), rule.Regex(`^[a-z]+$`), rule.EnumOf(reflect.TypeOf(Status("")))
//
// or through a `validate` struct tag parsed by Parse:
//
//	Age int `validate:"required;min=0;max=150"`
package rule

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Result is the verdict of one rule. Message is set iff Valid is false.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Pass returns a successful Result.
func Pass() Result {
	return Result{Valid: true}
}

// Fail returns a failed Result with a formatted message.
func Fail(format string, args ...any) Result {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		msg = "is invalid"
	}
	return Result{Message: msg}
}

// Rule validates a single value. fields holds the full raw input keyed by
// external name.
type Rule interface {
	Name() string
	Validate(value any, fields map[string]any) Result
}

// Func adapts a function into a named Rule.
func Func(name string, fn func(value any, fields map[string]any) Result) Rule {
	return funcRule{name: name, fn: fn}
}

type funcRule struct {
	name string
	fn   func(any, map[string]any) Result
}

func (r funcRule) Name() string { return r.name }

func (r funcRule) Validate(value any, fields map[string]any) Result {
	return r.fn(value, fields)
}

// Factory builds a rule from tag arguments. fieldType is the Go type of the
// field the rule is attached to.
type Factory func(args []string, fieldType reflect.Type) (Rule, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a rule available to Parse under name. Registering the same
// name twice replaces the earlier factory.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = f
}

// Registered returns the sorted names of all registered rules.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[strings.ToLower(name)]
	return f, ok
}

// Parse turns a tag spec such as "required;min=5;in=a|b" into rules, keeping
// declaration order. Arguments after '=' are split on '|'.
func Parse(spec string, fieldType reflect.Type) ([]Rule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	var rules []Rule
	for _, part := range strings.Split(spec, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, raw, hasArgs := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		var args []string
		if hasArgs {
			if strings.EqualFold(name, "regex") {
				// patterns may contain '|'
				args = []string{raw}
			} else {
				args = strings.Split(raw, "|")
			}
		}
		f, ok := lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown rule %q", name)
		}
		r, err := f(args, fieldType)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// RawInputRule is implemented by rules that validate the field's input as
// received, before casting, instead of its cast value.
type RawInputRule interface {
	RawInput() bool
}

// WantsRawInput reports whether r validates raw input.
func WantsRawInput(r Rule) bool {
	ri, ok := r.(RawInputRule)
	return ok && ri.RawInput()
}

// IsRequired reports whether r is the Required rule.
func IsRequired(r Rule) bool {
	_, ok := r.(requiredRule)
	return ok
}
