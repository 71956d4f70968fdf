package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtokit/src/core/domain"
	"dtokit/src/infra/logger"
	"dtokit/src/infra/repo"
)

func newJokeService(t *testing.T) (*JokeService, *repo.MemoryRepository) {
	t.Helper()
	r := repo.NewMemoryRepository()
	s := NewJokeService(r, logger.Discard())
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s, r
}

func input(title string) CreateJokeInput {
	return CreateJokeInput{
		Title:       title,
		Body:        "body",
		Category:    domain.CategoryPun,
		Audience:    domain.AudienceEveryone,
		AuthorEmail: "a@example.com",
	}
}

func TestJokeService_Create(t *testing.T) {
	s, r := newJokeService(t)
	ctx := context.Background()

	j, err := s.Create(ctx, input("first"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, j.ID)
	assert.Equal(t, j.CreatedAt, j.UpdatedAt)

	stored, err := r.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Title)
}

func TestJokeService_CreateMany(t *testing.T) {
	s, _ := newJokeService(t)
	ctx := context.Background()

	_, err := s.CreateMany(ctx, nil)
	assert.True(t, domain.IsValidationError(err))

	tooMany := make([]CreateJokeInput, domain.MaxBatchSize+1)
	_, err = s.CreateMany(ctx, tooMany)
	assert.True(t, domain.IsValidationError(err))

	jokes, err := s.CreateMany(ctx, []CreateJokeInput{input("a"), input("b")})
	require.NoError(t, err)
	require.Len(t, jokes, 2)
	assert.Equal(t, "a", jokes[0].Title)
	assert.NotEqual(t, jokes[0].ID, jokes[1].ID)
}

func TestJokeService_ListClampsPage(t *testing.T) {
	s, _ := newJokeService(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, input(title))
		require.NoError(t, err)
	}

	page, err := s.List(ctx, domain.JokeFilter{Limit: 0, Offset: -4})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPageSize, page.Limit)
	assert.Equal(t, 0, page.Offset)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Jokes, 3)
	assert.Equal(t, "c", page.Jokes[0].Title, "newest first")

	page, err = s.List(ctx, domain.JokeFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, domain.MaxPageSize, page.Limit)
}

func TestJokeService_UpdateDelete(t *testing.T) {
	s, _ := newJokeService(t)
	ctx := context.Background()
	j, err := s.Create(ctx, input("old"))
	require.NoError(t, err)

	_, err = s.Update(ctx, j.ID, domain.JokePatch{})
	assert.True(t, domain.IsValidationError(err))

	rating := 5
	updated, err := s.Update(ctx, j.ID, domain.JokePatch{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "old", updated.Title)

	require.NoError(t, s.Delete(ctx, j.ID))
	assert.True(t, domain.IsNotFound(s.Delete(ctx, j.ID)))
	_, err = s.Get(ctx, j.ID)
	assert.True(t, domain.IsNotFound(err))
}
