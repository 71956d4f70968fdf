package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtokit/src/core/domain"
	"dtokit/src/core/dto"
)

func newJoke(title string, category domain.Category, at time.Time) *domain.Joke {
	return &domain.Joke{
		ID:        uuid.New(),
		Title:     title,
		Body:      title + " body",
		Category:  category,
		Audience:  domain.AudienceEveryone,
		Published: true,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Health(ctx))

	j := newJoke("Pun one", domain.CategoryPun, time.Now())
	require.NoError(t, r.Create(ctx, j))
	assert.True(t, domain.IsConflict(r.Create(ctx, j)))

	got, err := r.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pun one", got.Title)

	title := "Renamed"
	updated, err := r.Update(ctx, j.ID, domain.JokePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Pun one body", updated.Body)

	require.NoError(t, r.Delete(ctx, j.ID))
	_, err = r.Get(ctx, j.ID)
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(r.Delete(ctx, j.ID)))
	_, err = r.Update(ctx, j.ID, domain.JokePatch{Title: &title})
	assert.True(t, domain.IsNotFound(err))
}

func TestMemoryRepository_CreateManyIsAtomic(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	existing := newJoke("a", domain.CategoryPun, time.Now())
	require.NoError(t, r.Create(ctx, existing))

	err := r.CreateMany(ctx, []*domain.Joke{newJoke("b", domain.CategoryPun, time.Now()), existing})
	assert.True(t, domain.IsConflict(err))

	_, total, err := r.List(ctx, domain.JokeFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestMemoryRepository_List(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.CreateMany(ctx, []*domain.Joke{
		newJoke("Oldest pun", domain.CategoryPun, base),
		newJoke("Knock knock", domain.CategoryKnockKnock, base.Add(time.Hour)),
		newJoke("Newest pun", domain.CategoryPun, base.Add(2*time.Hour)),
	}))

	jokes, total, err := r.List(ctx, domain.JokeFilter{Category: domain.CategoryPun})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, jokes, 2)
	assert.Equal(t, "Newest pun", jokes[0].Title)

	jokes, total, err = r.List(ctx, domain.JokeFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, jokes, 1)
	assert.Equal(t, "Knock knock", jokes[0].Title)

	jokes, _, err = r.List(ctx, domain.JokeFilter{Search: "KNOCK"})
	require.NoError(t, err)
	assert.Len(t, jokes, 1)

	unpublished := false
	jokes, _, err = r.List(ctx, domain.JokeFilter{Published: &unpublished})
	require.NoError(t, err)
	assert.Empty(t, jokes)

	jokes, total, err = r.List(ctx, domain.JokeFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, jokes)
	assert.Equal(t, int64(3), total, "a page past the end still reports all matches")
}

func TestListWhere(t *testing.T) {
	where, args := listWhere(domain.JokeFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	published := true
	where, args = listWhere(domain.JokeFilter{
		Category:  domain.CategoryPun,
		Published: &published,
		Search:    "door",
	})
	assert.Equal(t, " WHERE category = $1 AND published = $2 AND (title ILIKE $3 OR body ILIKE $3)", where)
	assert.Equal(t, []any{"pun", true, "%door%"}, args)
}

func TestPageTotal(t *testing.T) {
	counted := 0
	count := func() (int64, error) {
		counted++
		return 7, nil
	}

	total, err := pageTotal([]jokeRecord{{Total: 5}}, 0, count)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	total, err = pageTotal(nil, 0, count)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, counted)

	total, err = pageTotal(nil, 40, count)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.Equal(t, 1, counted)
}

func TestJokeRecord_FromRowValues(t *testing.T) {
	id := uuid.New()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// shapes pgx returns from Values()
	row := map[string]any{
		"joke_id":      [16]byte(id),
		"title":        "Why",
		"body":         "Because",
		"category":     "knock-knock",
		"audience":     "all",
		"author_email": "ada@example.com",
		"rating":       int32(4),
		"published":    true,
		"created_at":   at,
		"updated_at":   at,
		"total":        int64(12),
	}
	inst, err := dto.From[jokeRecord](row)
	require.NoError(t, err)

	rec := inst.Data()
	assert.Equal(t, int64(12), rec.Total)
	j := rec.joke()
	assert.Equal(t, id, j.ID)
	assert.Equal(t, domain.CategoryKnockKnock, j.Category)
	assert.Equal(t, domain.AudienceEveryone, j.Audience)
	assert.Equal(t, 4, j.Rating)

	row["category"] = "limerick"
	_, err = dto.From[jokeRecord](row)
	assert.ErrorIs(t, err, dto.ErrValidation)
	assert.Contains(t, dto.FieldMessages(err), "category")
}
