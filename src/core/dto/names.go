package dto

import (
	"sync"

	"github.com/iancoleman/strcase"
)

// NameMapper converts a Go field name into an external name.
type NameMapper interface {
	MapName(name string) string
}

// NameMapperFunc adapts a function into a NameMapper. It is not memoized.
type NameMapperFunc func(name string) string

// MapName implements NameMapper.
func (f NameMapperFunc) MapName(name string) string { return f(name) }

// Built-in mappers. Each memoizes its conversions by raw name.
var (
	// SnakeCase maps UserID to user_id.
	SnakeCase NameMapper = newCaseMapper(strcase.ToSnake)

	// KebabCase maps AuthorEmail to author-email.
	KebabCase NameMapper = newCaseMapper(strcase.ToKebab)

	// CamelCase maps author_email to authorEmail.
	CamelCase NameMapper = newCaseMapper(strcase.ToLowerCamel)

	// StudlyCase maps author_email to AuthorEmail.
	StudlyCase NameMapper = newCaseMapper(strcase.ToCamel)
)

type caseMapper struct {
	convert func(string) string
	cache   sync.Map // raw name -> converted name
}

func newCaseMapper(convert func(string) string) *caseMapper {
	return &caseMapper{convert: convert}
}

func (m *caseMapper) MapName(name string) string {
	if v, ok := m.cache.Load(name); ok {
		return v.(string)
	}
	v, _ := m.cache.LoadOrStore(name, m.convert(name))
	return v.(string)
}
