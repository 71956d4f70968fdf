package dto

import (
	"github.com/google/uuid"

	"dtokit/src/core/domain"
	"dtokit/src/core/dto"
	"dtokit/src/core/usecase"
)

// CreateJokeRequest is the body of POST /v1/jokes and one item of a batch.
type CreateJokeRequest struct {
	dto.Strict

	Title       string          `dto:"title" cast:"trim" validate:"required;text;regex=^.{1,200}$"`
	Body        string          `dto:"body" cast:"trim" validate:"required;text"`
	Category    domain.Category `dto:"category" default:"pun" validate:"enum"`
	Audience    domain.Audience `dto:"audience" default:"all" validate:"enum"`
	AuthorEmail string          `dto:"author_email" cast:"trim" validate:"required;email"`
	Rating      int             `dto:"rating" default:"0" validate:"integer;min=0;max=5"`
	Published   bool            `dto:"published" default:"false"`
}

// ToInput converts the request to the usecase input.
func (r CreateJokeRequest) ToInput() usecase.CreateJokeInput {
	return usecase.CreateJokeInput{
		Title:       r.Title,
		Body:        r.Body,
		Category:    r.Category,
		Audience:    r.Audience,
		AuthorEmail: r.AuthorEmail,
		Rating:      r.Rating,
		Published:   r.Published,
	}
}

// CreateJokeInputs builds every item of a batch, stopping at the first
// invalid one.
func CreateJokeInputs(items []map[string]any) ([]usecase.CreateJokeInput, error) {
	reqs, err := dto.ArrayOf[CreateJokeRequest](items)
	if err != nil {
		return nil, err
	}
	out := make([]usecase.CreateJokeInput, len(reqs))
	for i, r := range reqs {
		out[i] = r.Data().ToInput()
	}
	return out, nil
}

// UpdateJokeRequest is PATCH /v1/jokes/:id. The id comes from the route;
// absent body keys leave the stored value alone.
type UpdateJokeRequest struct {
	dto.Strict

	ID        uuid.UUID        `dto:"id" cast:"uuid" validate:"required"`
	Title     *string          `dto:"title" cast:"trim" validate:"text;regex=^.{1,200}$"`
	Body      *string          `dto:"body" cast:"trim" validate:"text"`
	Category  *domain.Category `dto:"category" validate:"enum"`
	Audience  *domain.Audience `dto:"audience" validate:"enum"`
	Rating    *int             `dto:"rating" validate:"integer;min=0;max=5"`
	Published *bool            `dto:"published"`
}

// Patch converts the request to a domain patch.
func (r UpdateJokeRequest) Patch() domain.JokePatch {
	return domain.JokePatch{
		Title:     r.Title,
		Body:      r.Body,
		Category:  r.Category,
		Audience:  r.Audience,
		Rating:    r.Rating,
		Published: r.Published,
	}
}

// JokeIDRequest carries the id route param of GET and DELETE.
type JokeIDRequest struct {
	ID uuid.UUID `dto:"id" cast:"uuid" validate:"required"`
}

// ListJokesRequest holds the query of GET /v1/jokes. Unknown query keys are
// ignored.
type ListJokesRequest struct {
	Category  *domain.Category `dto:"category" validate:"enum"`
	Audience  *domain.Audience `dto:"audience" validate:"enum"`
	Published string           `dto:"published" cast:"lower" validate:"boolean"`
	Search    string           `dto:"q" cast:"trim"`
	Limit     int              `dto:"limit" cast:"int" default:"20" validate:"min=1;max=100"`
	Offset    int              `dto:"offset" cast:"int" default:"0" validate:"min=0"`
	Fields    []string         `dto:"fields" cast:"split"`
}

// Filter converts the query to a domain filter.
func (r ListJokesRequest) Filter() domain.JokeFilter {
	f := domain.JokeFilter{
		Search: r.Search,
		Limit:  r.Limit,
		Offset: r.Offset,
	}
	if r.Category != nil {
		f.Category = *r.Category
	}
	if r.Audience != nil {
		f.Audience = *r.Audience
	}
	switch r.Published {
	case "true", "1":
		v := true
		f.Published = &v
	case "false", "0":
		v := false
		f.Published = &v
	}
	return f
}
