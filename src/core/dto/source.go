package dto

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"dtokit/src/core/domain"
)

// Arrayable is implemented by records that project themselves into a map,
// including other Instances.
type Arrayable interface {
	ToArray() map[string]any
}

// Collection is implemented by generic containers exposing their items.
type Collection interface {
	Items() map[string]any
}

const maxMultipartMemory = 32 << 20

// From normalizes source into a map and builds a T from it. Accepted sources:
//   - Arrayable records and other Instances
//   - pgx rows (pgx.CollectableRow), read with pgx.RowToMap
//   - Collections and iter.Seq2[string, any] sequences
//   - *gin.Context and *http.Request payloads: query, JSON, form or multipart
//     body, and gin route params
//   - gin.Params alone
//   - JSON objects as []byte
//   - map[string]any, map[string]string, url.Values and other string-keyed maps
//
// The normalized map is kept as the instance origin.
func From[T any](source any) (*Instance[T], error) {
	args, err := Normalize(source)
	if err != nil {
		return nil, err
	}
	return build[T](args, args)
}

// Normalize turns any source accepted by From into a fresh map.
func Normalize(source any) (map[string]any, error) {
	switch s := source.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return cloneMap(s), nil
	case map[string]string:
		out := make(map[string]any, len(s))
		for k, v := range s {
			out[k] = v
		}
		return out, nil
	case url.Values:
		return fromValues(s), nil
	case *gin.Context:
		return fromGin(s)
	case gin.Params:
		out := make(map[string]any, len(s))
		for _, p := range s {
			out[p.Key] = p.Value
		}
		return out, nil
	case *http.Request:
		return fromRequest(s)
	case pgx.CollectableRow:
		return pgx.RowToMap(s)
	case Arrayable:
		return cloneMap(s.ToArray()), nil
	case Collection:
		return cloneMap(s.Items()), nil
	case iter.Seq2[string, any]:
		out := map[string]any{}
		for k, v := range s {
			out[k] = v
		}
		return out, nil
	case []byte:
		return decodeJSON(s)
	}

	rv := reflect.ValueOf(source)
	switch {
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		out := make(map[string]any, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			out[it.Key().String()] = it.Value().Interface()
		}
		return out, nil
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		return decodeJSON(rv.Bytes())
	}
	return nil, fmt.Errorf("dto: unsupported source %T", source)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func fromValues(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for k, vs := range values {
		switch len(vs) {
		case 0:
		case 1:
			out[k] = vs[0]
		default:
			out[k] = append([]string(nil), vs...)
		}
	}
	return out
}

func decodeJSON(data []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, domain.NewValidationError("body", "malformed JSON payload")
	}
	return out, nil
}

// fromGin merges route params, query and body; body keys win over query keys,
// which win over route params.
func fromGin(c *gin.Context) (map[string]any, error) {
	out := map[string]any{}
	for _, p := range c.Params {
		out[p.Key] = p.Value
	}

	var body map[string]any
	var err error
	if isJSON(c.ContentType()) && c.Request.Body != nil && c.Request.Body != http.NoBody {
		body = map[string]any{}
		if bindErr := c.ShouldBindBodyWith(&body, binding.JSON); bindErr != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(bindErr, &tooLarge):
				return nil, bindErr
			case !errors.Is(bindErr, io.EOF):
				return nil, domain.NewValidationError("body", "malformed JSON payload")
			}
		}
		for k, v := range fromValues(c.Request.URL.Query()) {
			out[k] = v
		}
	} else {
		body, err = fromRequest(c.Request)
		if err != nil {
			return nil, err
		}
	}
	for k, v := range body {
		out[k] = v
	}
	return out, nil
}

func fromRequest(r *http.Request) (map[string]any, error) {
	out := fromValues(r.URL.Query())
	if r.Body == nil || r.Body == http.NoBody {
		return out, nil
	}

	ct := r.Header.Get("Content-Type")
	mediaType := ""
	if ct != "" {
		var err error
		mediaType, _, err = mime.ParseMediaType(ct)
		if err != nil {
			return nil, domain.NewValidationError("content-type", err.Error())
		}
	}

	switch {
	case mediaType == "" || isJSON(mediaType):
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		r.Body = io.NopCloser(bytes.NewReader(data))
		body, err := decodeJSON(data)
		if err != nil {
			return nil, err
		}
		for k, v := range body {
			out[k] = v
		}
	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, domain.NewValidationError("body", err.Error())
		}
		for k, v := range fromValues(r.PostForm) {
			out[k] = v
		}
	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, domain.NewValidationError("body", err.Error())
		}
		for k, v := range fromValues(r.MultipartForm.Value) {
			out[k] = v
		}
		for k, files := range r.MultipartForm.File {
			if len(files) == 1 {
				out[k] = files[0]
			} else if len(files) > 1 {
				out[k] = files
			}
		}
	default:
		return nil, domain.NewValidationError("content-type", "unsupported media type "+mediaType)
	}
	return out, nil
}

func isJSON(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
