package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dtokit/src/core/domain"
	"dtokit/src/core/dto"
	"dtokit/src/core/ports"
	"dtokit/src/infra/db"
)

var _ ports.JokeRepository = (*PostgresRepository)(nil)

// PostgresRepository implements JokeRepository using pgx.
type PostgresRepository struct {
	pg   *db.Postgres
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresRepository constructs a repository backed by Postgres.
func NewPostgresRepository(pg *db.Postgres, log *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		pg:   pg,
		pool: pg.Pool,
		log:  log,
	}
}

func (r *PostgresRepository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

const jokeColumns = `joke_id, title, body, category, audience, author_email, rating, published, created_at, updated_at`

var insertColumns = []string{
	"joke_id", "title", "body", "category", "audience", "author_email", "rating", "published", "created_at", "updated_at",
}

// jokeRecord is a row of the jokes table. Rows are read through the dto
// engine, so stored enum values are resolved and checked on the way out.
type jokeRecord struct {
	ID          uuid.UUID       `dto:"joke_id" cast:"uuid"`
	Title       string          `dto:"title"`
	Body        string          `dto:"body"`
	Category    domain.Category `dto:"category"`
	Audience    domain.Audience `dto:"audience"`
	AuthorEmail string          `dto:"author_email"`
	Rating      int             `dto:"rating"`
	Published   bool            `dto:"published"`
	CreatedAt   time.Time       `dto:"created_at"`
	UpdatedAt   time.Time       `dto:"updated_at"`

	// Total is only selected by listings.
	Total int64 `dto:"total"`
}

func (rec jokeRecord) joke() *domain.Joke {
	return &domain.Joke{
		ID:          rec.ID,
		Title:       rec.Title,
		Body:        rec.Body,
		Category:    rec.Category,
		Audience:    rec.Audience,
		AuthorEmail: rec.AuthorEmail,
		Rating:      rec.Rating,
		Published:   rec.Published,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func scanRecord(row pgx.CollectableRow) (jokeRecord, error) {
	inst, err := dto.From[jokeRecord](row)
	if err != nil {
		return jokeRecord{}, fmt.Errorf("read joke row: %w", err)
	}
	return inst.Data(), nil
}

func jokeArgs(j *domain.Joke) []any {
	return []any{
		j.ID, j.Title, j.Body, string(j.Category), string(j.Audience), j.AuthorEmail,
		j.Rating, j.Published, j.CreatedAt, j.UpdatedAt,
	}
}

func (r *PostgresRepository) Create(ctx context.Context, joke *domain.Joke) error {
	q := `INSERT INTO jokes (` + jokeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.pool.Exec(ctx, q, jokeArgs(joke)...); err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("joke already exists")
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) CreateMany(ctx context.Context, jokes []*domain.Joke) error {
	var n int64
	err := r.pg.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		n, err = tx.CopyFrom(ctx, pgx.Identifier{"jokes"}, insertColumns,
			pgx.CopyFromSlice(len(jokes), func(i int) ([]any, error) {
				return jokeArgs(jokes[i]), nil
			}),
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("joke already exists")
		}
		return err
	}
	r.log.Debug("jokes copied", "rows", n)
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Joke, error) {
	q := `SELECT ` + jokeColumns + ` FROM jokes WHERE joke_id = $1`
	rows, err := r.pool.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	rec, err := pgx.CollectExactlyOneRow(rows, scanRecord)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("joke")
		}
		return nil, err
	}
	return rec.joke(), nil
}

func (r *PostgresRepository) List(ctx context.Context, filter domain.JokeFilter) ([]*domain.Joke, int64, error) {
	where, args := listWhere(filter)

	query := `SELECT ` + jokeColumns + `, count(*) OVER () AS total FROM jokes` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, joke_id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, 0, err
	}

	total, err := pageTotal(records, filter.Offset, func() (int64, error) {
		var n int64
		err := r.pool.QueryRow(ctx, `SELECT count(*) FROM jokes`+where, args...).Scan(&n)
		return n, err
	})
	if err != nil {
		return nil, 0, err
	}

	jokes := make([]*domain.Joke, len(records))
	for i, rec := range records {
		jokes[i] = rec.joke()
	}
	return jokes, total, nil
}

// listWhere renders the filter as a WHERE clause with positional args.
func listWhere(filter domain.JokeFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Category != "" {
		add("category = $%d", string(filter.Category))
	}
	if filter.Audience != "" {
		add("audience = $%d", string(filter.Audience))
	}
	if filter.Published != nil {
		add("published = $%d", *filter.Published)
	}
	if filter.Search != "" {
		add("(title ILIKE $%[1]d OR body ILIKE $%[1]d)", "%"+filter.Search+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// pageTotal reads the window count off the page. A page past the last match
// carries no rows, so the total then comes from count.
func pageTotal(records []jokeRecord, offset int, count func() (int64, error)) (int64, error) {
	if len(records) > 0 {
		return records[0].Total, nil
	}
	if offset == 0 {
		return 0, nil
	}
	return count()
}

func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, patch domain.JokePatch) (*domain.Joke, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Body != nil {
		set("body", *patch.Body)
	}
	if patch.Category != nil {
		set("category", string(*patch.Category))
	}
	if patch.Audience != nil {
		set("audience", string(*patch.Audience))
	}
	if patch.Rating != nil {
		set("rating", *patch.Rating)
	}
	if patch.Published != nil {
		set("published", *patch.Published)
	}
	set("updated_at", time.Now().UTC())
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE jokes SET %s WHERE joke_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), jokeColumns)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	rec, err := pgx.CollectExactlyOneRow(rows, scanRecord)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("joke")
		}
		return nil, err
	}
	return rec.joke(), nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM jokes WHERE joke_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("joke")
	}
	return nil
}
