package dto

import (
	"time"

	"github.com/google/uuid"

	"dtokit/src/core/domain"
	"dtokit/src/core/dto"
)

// JokeResponse is the public view of a joke. Audience is rendered by its
// display key ("everyone" rather than the stored "all").
type JokeResponse struct {
	ID          uuid.UUID `cast:"uuid"`
	Title       string
	Body        string
	Category    domain.Category
	Audience    domain.Audience
	AuthorEmail string
	Rating      int
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DTO implements dto.Declarer.
func (JokeResponse) DTO() dto.Options {
	return dto.Options{MapName: dto.SnakeCase}
}

// JokeFields lists the keys of a JokeResponse, in output order.
var JokeFields = []string{
	"id", "title", "body", "category", "audience", "author_email",
	"rating", "published", "created_at", "updated_at",
}

// jokeSource exposes a domain joke to dto.From.
type jokeSource struct {
	j *domain.Joke
}

func (s jokeSource) ToArray() map[string]any {
	return map[string]any{
		"id":           s.j.ID,
		"title":        s.j.Title,
		"body":         s.j.Body,
		"category":     string(s.j.Category),
		"audience":     string(s.j.Audience),
		"author_email": s.j.AuthorEmail,
		"rating":       s.j.Rating,
		"published":    s.j.Published,
		"created_at":   s.j.CreatedAt,
		"updated_at":   s.j.UpdatedAt,
	}
}

// NewJokeResponse builds the response for j.
func NewJokeResponse(j *domain.Joke) (*dto.Instance[JokeResponse], error) {
	return dto.From[JokeResponse](jokeSource{j: j})
}

// JokeResponses builds one response per joke, keeping only the given fields
// when any are set. Unknown field names are ignored.
func JokeResponses(jokes []*domain.Joke, fields []string) ([]map[string]any, error) {
	out := make([]map[string]any, len(jokes))
	for i, j := range jokes {
		inst, err := NewJokeResponse(j)
		if err != nil {
			return nil, err
		}
		if len(fields) > 0 {
			inst = inst.Only(fields...)
		}
		out[i] = inst.ToArray()
	}
	return out, nil
}
