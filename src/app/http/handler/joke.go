package handler

import (
	"bytes"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	httpdto "dtokit/src/app/http/dto"
	"dtokit/src/app/http/response"
	"dtokit/src/app/middleware"
	"dtokit/src/core/domain"
	"dtokit/src/core/dto"
	"dtokit/src/core/usecase"
)

// JokeHandler serves the /v1/jokes endpoints.
type JokeHandler struct {
	jokeService *usecase.JokeService
}

// NewJokeHandler creates a new JokeHandler.
func NewJokeHandler(jokeService *usecase.JokeService) *JokeHandler {
	return &JokeHandler{jokeService: jokeService}
}

func (h *JokeHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	response.FromDomainError(c, err, middleware.GetRequestID(c))
}

func (h *JokeHandler) render(c *gin.Context, j *domain.Joke, created bool) {
	resp, err := httpdto.NewJokeResponse(j)
	if err != nil {
		h.fail(c, err)
		return
	}
	if created {
		response.Created(c, resp)
		return
	}
	response.OK(c, resp)
}

// Create stores one joke.
// POST /v1/jokes
func (h *JokeHandler) Create(c *gin.Context) {
	req, err := dto.From[httpdto.CreateJokeRequest](c)
	if err != nil {
		h.fail(c, err)
		return
	}

	joke, err := h.jokeService.Create(c.Request.Context(), req.Data().ToInput())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, joke, true)
}

// CreateBatch stores a JSON array of jokes, or none of them if any item is
// invalid. Failing fields are reported as "<index>.<field>".
// POST /v1/jokes/batch
func (h *JokeHandler) CreateBatch(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		h.fail(c, err)
		return
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		h.fail(c, domain.NewValidationError("body", "expected a JSON array of jokes"))
		return
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		h.fail(c, domain.NewValidationError("body", "malformed JSON payload"))
		return
	}
	if len(items) > domain.MaxBatchSize {
		// reject before building any item
		h.fail(c, domain.NewValidationError("body", "too many jokes in one batch"))
		return
	}

	inputs, err := httpdto.CreateJokeInputs(items)
	if err != nil {
		h.fail(c, err)
		return
	}
	jokes, err := h.jokeService.CreateMany(c.Request.Context(), inputs)
	if err != nil {
		h.fail(c, err)
		return
	}

	out, err := httpdto.JokeResponses(jokes, nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, out)
}

// List returns one page of jokes. ?fields=title,rating limits the keys of
// every item.
// GET /v1/jokes
func (h *JokeHandler) List(c *gin.Context) {
	req, err := dto.From[httpdto.ListJokesRequest](c)
	if err != nil {
		h.fail(c, err)
		return
	}
	q := req.Data()

	page, err := h.jokeService.List(c.Request.Context(), q.Filter())
	if err != nil {
		h.fail(c, err)
		return
	}
	jokes, err := httpdto.JokeResponses(page.Jokes, q.Fields)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Page(c, jokes, page.Total, page.Limit, page.Offset)
}

// Get returns one joke.
// GET /v1/jokes/:id
func (h *JokeHandler) Get(c *gin.Context) {
	req, err := dto.From[httpdto.JokeIDRequest](c.Params)
	if err != nil {
		h.fail(c, err)
		return
	}

	joke, err := h.jokeService.Get(c.Request.Context(), req.Data().ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, joke, false)
}

// Update applies a partial update.
// PATCH /v1/jokes/:id
func (h *JokeHandler) Update(c *gin.Context) {
	target, err := dto.From[httpdto.JokeIDRequest](c.Params)
	if err != nil {
		h.fail(c, err)
		return
	}
	req, err := dto.From[httpdto.UpdateJokeRequest](c)
	if err != nil {
		h.fail(c, err)
		return
	}
	data := req.Data()
	// body keys win over route params
	if data.ID != target.Data().ID {
		h.fail(c, domain.NewValidationError("id", "does not match the joke in the path"))
		return
	}

	joke, err := h.jokeService.Update(c.Request.Context(), data.ID, data.Patch())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, joke, false)
}

// Delete removes a joke.
// DELETE /v1/jokes/:id
func (h *JokeHandler) Delete(c *gin.Context) {
	req, err := dto.From[httpdto.JokeIDRequest](c.Params)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.jokeService.Delete(c.Request.Context(), req.Data().ID); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}
