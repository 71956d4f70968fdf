package dto

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtokit/src/core/domain"
	"dtokit/src/core/dto"
)

func TestListJokesRequest_Filter(t *testing.T) {
	inst, err := dto.From[ListJokesRequest](url.Values{
		"category":  {"knock-knock"},
		"audience":  {"teens"},
		"published": {"FALSE"},
		"q":         {"  door  "},
		"limit":     {"5"},
		"fields":    {"id, title"},
		"page":      {"3"},
	})
	require.NoError(t, err)

	req := inst.Data()
	assert.Equal(t, []string{"id", "title"}, req.Fields)

	f := req.Filter()
	assert.Equal(t, domain.CategoryKnockKnock, f.Category)
	assert.Equal(t, domain.AudienceTeens, f.Audience)
	require.NotNil(t, f.Published)
	assert.False(t, *f.Published)
	assert.Equal(t, "door", f.Search)
	assert.Equal(t, 5, f.Limit)
	assert.Equal(t, 0, f.Offset)
}

func TestListJokesRequest_Defaults(t *testing.T) {
	inst, err := dto.From[ListJokesRequest](url.Values{})
	require.NoError(t, err)

	f := inst.Data().Filter()
	assert.Equal(t, domain.DefaultPageSize, f.Limit)
	assert.Nil(t, f.Published)
	assert.Empty(t, f.Category)
}

func TestUpdateJokeRequest_Patch(t *testing.T) {
	id := uuid.New()
	inst, err := dto.Make[UpdateJokeRequest](map[string]any{
		"id":     id.String(),
		"rating": float64(2),
		"title":  " New ",
	})
	require.NoError(t, err)

	req := inst.Data()
	assert.Equal(t, id, req.ID)
	p := req.Patch()
	require.NotNil(t, p.Title)
	assert.Equal(t, "New", *p.Title)
	require.NotNil(t, p.Rating)
	assert.Equal(t, 2, *p.Rating)
	assert.Nil(t, p.Body)
	assert.Nil(t, p.Category)
	assert.False(t, p.Empty())
}

func TestCreateJokeInputs(t *testing.T) {
	inputs, err := CreateJokeInputs([]map[string]any{
		{"title": "a", "body": "b", "author_email": "a@example.com", "audience": "Kids"},
	})
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, domain.AudienceKids, inputs[0].Audience)
	assert.Equal(t, domain.CategoryPun, inputs[0].Category)

	_, err = CreateJokeInputs([]map[string]any{
		{"title": "a", "body": "b", "author_email": "a@example.com"},
		{"title": "a", "body": "b"},
	})
	require.Error(t, err)
	msgs := dto.FieldMessages(err)
	require.Contains(t, msgs, "1.author_email")
	assert.Equal(t, "is required", msgs["1.author_email"][0])
}

func TestJokeResponses(t *testing.T) {
	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	j := &domain.Joke{
		ID: uuid.New(), Title: "t", Body: "b",
		Category: domain.CategoryOneLiner, Audience: domain.AudienceEveryone,
		AuthorEmail: "a@example.com", Rating: 3, CreatedAt: at, UpdatedAt: at,
	}

	inst, err := NewJokeResponse(j)
	require.NoError(t, err)
	full := inst.ToArray()
	assert.ElementsMatch(t, JokeFields, keys(full))
	assert.Equal(t, "everyone", full["audience"])
	assert.Equal(t, "one-liner", full["category"])
	assert.Equal(t, j.ID, full["id"])

	items, err := JokeResponses([]*domain.Joke{j}, []string{"title", "rating", "nope"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "t", "rating": 3}, items[0])

	data, err := inst.Except("body", "author_email").ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "author_email")
	assert.Contains(t, string(data), `"created_at":"2024-02-03T04:05:06Z"`)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
