package domain

import (
	"time"

	"github.com/google/uuid"

	"dtokit/src/core/dto/enum"
)

// Category is the kind of joke. It is a self-validating enumeration.
type Category string

const (
	CategoryPun        Category = "pun"
	CategoryKnockKnock Category = "knock-knock"
	CategoryOneLiner   Category = "one-liner"
	CategoryDad        Category = "dad"
)

// Categories lists every valid category.
var Categories = []Category{CategoryPun, CategoryKnockKnock, CategoryOneLiner, CategoryDad}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// audiences backs Audience. Keys are what clients see, values what is stored.
var audiences = enum.Define("audience",
	enum.Case{Key: "Kids", Value: "kids"},
	enum.Case{Key: "Teens", Value: "teens"},
	enum.Case{Key: "Everyone", Value: "all"},
)

// Audience is who a joke is suitable for.
type Audience string

const (
	AudienceKids     Audience = "kids"
	AudienceTeens    Audience = "teens"
	AudienceEveryone Audience = "all"
)

// EnumDefinition implements enum.Declared.
func (Audience) EnumDefinition() *enum.Definition { return audiences }

// Joke is a stored joke.
type Joke struct {
	ID          uuid.UUID
	Title       string
	Body        string
	Category    Category
	Audience    Audience
	AuthorEmail string
	Rating      int
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JokeFilter narrows a joke listing. Zero fields do not filter.
type JokeFilter struct {
	Category  Category
	Audience  Audience
	Published *bool
	Search    string
	Limit     int
	Offset    int
}

// JokePatch holds the fields of a partial update. Nil fields are unchanged.
type JokePatch struct {
	Title     *string
	Body      *string
	Category  *Category
	Audience  *Audience
	Rating    *int
	Published *bool
}

// Empty reports whether the patch changes nothing.
func (p JokePatch) Empty() bool {
	return p.Title == nil && p.Body == nil && p.Category == nil &&
		p.Audience == nil && p.Rating == nil && p.Published == nil
}

// Apply copies the set fields of p onto j.
func (p JokePatch) Apply(j *Joke) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Body != nil {
		j.Body = *p.Body
	}
	if p.Category != nil {
		j.Category = *p.Category
	}
	if p.Audience != nil {
		j.Audience = *p.Audience
	}
	if p.Rating != nil {
		j.Rating = *p.Rating
	}
	if p.Published != nil {
		j.Published = *p.Published
	}
}
