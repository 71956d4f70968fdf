// Package dto builds validated data transfer objects from loosely typed
// input.
//
// A DTO is a plain struct. Fields are declared with struct tags:
//
//	type CreateJoke struct {
//	    dto.Strict
//
//	    Title    string          `dto:"title" cast:"trim" validate:"required;text"`
//	    Category domain.Category `dto:"category" default:"pun" validate:"enum"`
//	    Tags     []string        `dto:"tags"`
//	}
//
//   - dto names the external key; `dto:"-"` skips the field and
//     `dto:"value,types=int|string|self"` declares union alternatives for an
//     interface field
//   - default is used when the key is missing or null
//   - cast names a registered caster plus '|' separated arguments
//   - validate lists rules, see package rule
//
// Type-level directives come from a DTO() Options method: strictness, a name
// mapper for untagged fields, default casters and rule objects. Embedding
// Strict is a shortcut for rejecting unknown keys; strictness is inherited
// through embedded types.
//
// Make and From run the same pipeline: defaults, eager boolean check,
// casting, assignment, unknown key check, validation. A value that fails is
// never returned.
package dto
