package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dtokit/src/core/domain"
	"dtokit/src/core/ports"
)

var _ ports.JokeRepository = (*MemoryRepository)(nil)

// MemoryRepository implements JokeRepository in process memory. It backs the
// memory storage driver, dry runs and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	jokes map[uuid.UUID]domain.Joke
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{jokes: make(map[uuid.UUID]domain.Joke)}
}

func (r *MemoryRepository) Health(context.Context) error { return nil }

func (r *MemoryRepository) Create(_ context.Context, joke *domain.Joke) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jokes[joke.ID]; ok {
		return domain.NewConflictError("joke already exists")
	}
	r.jokes[joke.ID] = *joke
	return nil
}

func (r *MemoryRepository) CreateMany(_ context.Context, jokes []*domain.Joke) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]struct{}, len(jokes))
	for _, j := range jokes {
		if _, ok := r.jokes[j.ID]; ok {
			return domain.NewConflictError("joke already exists")
		}
		if _, ok := seen[j.ID]; ok {
			return domain.NewConflictError("duplicate joke in batch")
		}
		seen[j.ID] = struct{}{}
	}
	for _, j := range jokes {
		r.jokes[j.ID] = *j
	}
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (*domain.Joke, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jokes[id]
	if !ok {
		return nil, domain.NewNotFoundError("joke")
	}
	return &j, nil
}

func (r *MemoryRepository) List(_ context.Context, filter domain.JokeFilter) ([]*domain.Joke, int64, error) {
	r.mu.RLock()
	matches := make([]domain.Joke, 0, len(r.jokes))
	for _, j := range r.jokes {
		if matchesFilter(j, filter) {
			matches = append(matches, j)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(a, b int) bool {
		if !matches[a].CreatedAt.Equal(matches[b].CreatedAt) {
			return matches[a].CreatedAt.After(matches[b].CreatedAt)
		}
		return matches[a].ID.String() < matches[b].ID.String()
	})

	total := int64(len(matches))
	start := min(filter.Offset, len(matches))
	end := len(matches)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matches))
	}

	page := make([]*domain.Joke, 0, end-start)
	for i := start; i < end; i++ {
		page = append(page, &matches[i])
	}
	return page, total, nil
}

func matchesFilter(j domain.Joke, f domain.JokeFilter) bool {
	if f.Category != "" && j.Category != f.Category {
		return false
	}
	if f.Audience != "" && j.Audience != f.Audience {
		return false
	}
	if f.Published != nil && j.Published != *f.Published {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(j.Title), q) && !strings.Contains(strings.ToLower(j.Body), q) {
			return false
		}
	}
	return true
}

func (r *MemoryRepository) Update(_ context.Context, id uuid.UUID, patch domain.JokePatch) (*domain.Joke, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jokes[id]
	if !ok {
		return nil, domain.NewNotFoundError("joke")
	}
	patch.Apply(&j)
	j.UpdatedAt = time.Now().UTC()
	r.jokes[id] = j
	return &j, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jokes[id]; !ok {
		return domain.NewNotFoundError("joke")
	}
	delete(r.jokes, id)
	return nil
}
