package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dtokit/src/core/domain"
	"dtokit/src/core/ports"
)

// JokeService handles joke CRUD flows.
type JokeService struct {
	repo ports.JokeRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewJokeService creates a new JokeService.
func NewJokeService(repo ports.JokeRepository, log *slog.Logger) *JokeService {
	return &JokeService{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// CreateJokeInput holds the already validated fields of a new joke.
type CreateJokeInput struct {
	Title       string
	Body        string
	Category    domain.Category
	Audience    domain.Audience
	AuthorEmail string
	Rating      int
	Published   bool
}

func (s *JokeService) newJoke(in CreateJokeInput) *domain.Joke {
	now := s.now()
	return &domain.Joke{
		ID:          uuid.New(),
		Title:       in.Title,
		Body:        in.Body,
		Category:    in.Category,
		Audience:    in.Audience,
		AuthorEmail: in.AuthorEmail,
		Rating:      in.Rating,
		Published:   in.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Create stores a new joke.
func (s *JokeService) Create(ctx context.Context, in CreateJokeInput) (*domain.Joke, error) {
	joke := s.newJoke(in)
	if err := s.repo.Create(ctx, joke); err != nil {
		return nil, err
	}
	s.log.Info("joke created", "joke_id", joke.ID, "category", joke.Category)
	return joke, nil
}

// CreateMany stores all jokes in one go. Nothing is stored if one fails.
func (s *JokeService) CreateMany(ctx context.Context, in []CreateJokeInput) ([]*domain.Joke, error) {
	if len(in) == 0 {
		return nil, domain.NewValidationError("jokes", "at least one joke is required")
	}
	if len(in) > domain.MaxBatchSize {
		return nil, domain.NewValidationError("jokes", fmt.Sprintf("at most %d jokes per batch", domain.MaxBatchSize))
	}

	jokes := make([]*domain.Joke, len(in))
	for i, item := range in {
		jokes[i] = s.newJoke(item)
	}
	if err := s.repo.CreateMany(ctx, jokes); err != nil {
		return nil, err
	}
	s.log.Info("jokes created", "count", len(jokes))
	return jokes, nil
}

// Get returns one joke.
func (s *JokeService) Get(ctx context.Context, id uuid.UUID) (*domain.Joke, error) {
	return s.repo.Get(ctx, id)
}

// JokePage is one page of a listing.
type JokePage struct {
	Jokes  []*domain.Joke
	Total  int64
	Limit  int
	Offset int
}

// List returns one page of jokes. Out of range page sizes are clamped.
func (s *JokeService) List(ctx context.Context, filter domain.JokeFilter) (*JokePage, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = domain.DefaultPageSize
	case filter.Limit > domain.MaxPageSize:
		filter.Limit = domain.MaxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	jokes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &JokePage{Jokes: jokes, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Update applies a partial update.
func (s *JokeService) Update(ctx context.Context, id uuid.UUID, patch domain.JokePatch) (*domain.Joke, error) {
	if patch.Empty() {
		return nil, domain.NewValidationError("body", "nothing to update")
	}
	joke, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.log.Info("joke updated", "joke_id", id)
	return joke, nil
}

// Delete removes a joke.
func (s *JokeService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("joke deleted", "joke_id", id)
	return nil
}
