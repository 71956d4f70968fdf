// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra/repo. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"

	"github.com/google/uuid"

	"dtokit/src/core/domain"
)

// Repository is the base interface for all repositories.
// Concrete repositories should embed this and add entity-specific methods.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// JokeRepository stores jokes.
type JokeRepository interface {
	Repository

	// Create stores a new joke. The ID and timestamps are set by the caller.
	Create(ctx context.Context, joke *domain.Joke) error

	// CreateMany stores all jokes or none of them.
	CreateMany(ctx context.Context, jokes []*domain.Joke) error

	// Get returns domain.ErrNotFound when no joke has the ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.Joke, error)

	// List returns one page of jokes matching filter, newest first, and the
	// total number of matches.
	List(ctx context.Context, filter domain.JokeFilter) ([]*domain.Joke, int64, error)

	// Update applies patch and returns the updated joke.
	Update(ctx context.Context, id uuid.UUID, patch domain.JokePatch) (*domain.Joke, error)

	// Delete returns domain.ErrNotFound when no joke has the ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
