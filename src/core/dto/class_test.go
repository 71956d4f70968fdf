package dto

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtokit/src/core/domain"
	"dtokit/src/core/dto/rule"
)

type person struct {
	Name string `dto:"name" validate:"required"`
	Age  int    `dto:"age" validate:"min=18"`
}

type strictItem struct {
	Strict
	ID int `dto:"id"`
}

type strictBase struct {
	Strict
}

type inheritsStrict struct {
	strictBase
	Name string `dto:"name"`
}

type overridesStrict struct {
	strictBase
	Name string `dto:"name"`
}

func (overridesStrict) DTO() Options { return Options{Strictness: IgnoreUnknown} }

type account struct {
	UserID    int
	FirstName string
	Nick      string `dto:"nickname"`
	Secret    string `dto:"-"`
	internal  string
}

func (account) DTO() Options { return Options{MapName: SnakeCase} }

type draft struct {
	Status string        `dto:"status" default:"draft"`
	Count  int           `dto:"count" default:"3"`
	TTL    time.Duration `dto:"ttl" default:"1m"`
	Note   *string       `dto:"note"`
}

type toggle struct {
	Active bool `dto:"active"`
}

type signup struct {
	Password             string `dto:"password" validate:"required;confirmed=password_confirmation"`
	PasswordConfirmation string `dto:"password_confirmation"`
}

type trimmedSignup struct {
	Password             string `dto:"password" cast:"trim" validate:"required;confirmed=password_confirmation"`
	PasswordConfirmation string `dto:"password_confirmation"`
}

type ruled struct {
	Code string `dto:"code"`
}

func (ruled) DTO() Options {
	return Options{Rules: map[string][]rule.Rule{
		"Code": {rule.Required(), rule.Regex(`^[A-Z]{3}$`)},
	}}
}

type union struct {
	Value any `dto:"value,types=int|string|self"`
}

type badUnion struct {
	Value int `dto:"value,types=int|string"`
}

type badRule struct {
	Name string `validate:"shiny"`
}

type badCaster struct {
	Name string `cast:"sparkle"`
}

type badDefault struct {
	Count int `default:"many"`
}

type duplicateName struct {
	A string `dto:"x"`
	B string `dto:"x"`
}

type rulesForGhost struct {
	Name string
}

func (rulesForGhost) DTO() Options {
	return Options{Rules: map[string][]rule.Rule{"Ghost": {rule.Required()}}}
}

func TestDescribe_Properties(t *testing.T) {
	c, err := DescribeOf[account]()
	require.NoError(t, err)

	require.Len(t, c.Properties, 3, "skips unexported and dash-tagged fields")
	externals := make([]string, len(c.Properties))
	for i, p := range c.Properties {
		externals[i] = p.External
	}
	assert.Equal(t, []string{"user_id", "first_name", "nickname"}, externals)

	p, ok := c.Property("FirstName")
	require.True(t, ok)
	assert.Equal(t, "first_name", p.External)
	_, ok = c.Property("first_name")
	assert.True(t, ok)
	_, ok = c.Property("Secret")
	assert.False(t, ok)
}

func TestDescribe_IsCached(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]*Class, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := DescribeOf[person]()
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	wg.Wait()
	for _, c := range results {
		assert.Same(t, results[0], c)
	}

	byPtr, err := Describe(reflect.TypeOf(&person{}))
	require.NoError(t, err)
	assert.Same(t, results[0], byPtr)
}

func TestDescribe_UnionTypes(t *testing.T) {
	c, err := DescribeOf[union]()
	require.NoError(t, err)
	p := c.Properties[0]
	assert.Equal(t, []string{"int", "string", "dtokit/src/core/dto.union"}, p.Types)
	assert.True(t, p.Accepts("string"))
	assert.False(t, p.Accepts("float64"))
}

func TestDescribe_DefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want string
	}{
		{"types on concrete field", reflect.TypeOf(badUnion{}), "needs an interface field"},
		{"unknown rule", reflect.TypeOf(badRule{}), `unknown rule "shiny"`},
		{"unknown caster", reflect.TypeOf(badCaster{}), `unknown caster "sparkle"`},
		{"bad default", reflect.TypeOf(badDefault{}), `default "many"`},
		{"duplicate external name", reflect.TypeOf(duplicateName{}), `"x" already used`},
		{"rules for unknown field", reflect.TypeOf(rulesForGhost{}), "unknown field"},
		{"not a struct", reflect.TypeOf(42), "expected a struct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Describe(tt.typ)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDefinition)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestResolveStrict(t *testing.T) {
	assert.False(t, resolveStrict(reflect.TypeOf(person{})))
	assert.True(t, resolveStrict(reflect.TypeOf(strictItem{})))
	assert.True(t, resolveStrict(reflect.TypeOf(inheritsStrict{})))
	assert.False(t, resolveStrict(reflect.TypeOf(overridesStrict{})))
}

func TestMake_CollectsEveryFailure(t *testing.T) {
	_, err := Make[person](map[string]any{"name": "", "age": 10})
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"name", "age"}, ve.Fields)
	assert.Equal(t, map[string][]string{
		"name": {"is required"},
		"age":  {"must be at least 18"},
	}, ve.Messages())
	assert.Equal(t, 10, ve.Instance.(*person).Age)

	assert.ErrorIs(t, err, ErrValidation)
	assert.True(t, domain.IsValidationError(err))
}

func TestMake_Strict(t *testing.T) {
	_, err := Make[strictItem](map[string]any{"id": 1, "extra": 2})
	var ue *UnknownFieldsError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"extra"}, ue.Fields)
	assert.ErrorIs(t, err, ErrUnknownFields)

	_, err = Make[inheritsStrict](map[string]any{"name": "a", "b": 1, "a": 2})
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"a", "b"}, ue.Fields)

	inst, err := Make[overridesStrict](map[string]any{"name": "a", "b": 1})
	require.NoError(t, err)
	assert.Equal(t, "a", inst.Data().Name)
}

func TestMake_LenientDropsExtras(t *testing.T) {
	inst, err := Make[person](map[string]any{"name": "Ada", "age": 36, "extra": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ada", "age": 36}, inst.ToArray())
}

func TestMake_Defaults(t *testing.T) {
	inst, err := Make[draft](map[string]any{"status": nil})
	require.NoError(t, err)

	d := inst.Data()
	assert.Equal(t, "draft", d.Status)
	assert.Equal(t, 3, d.Count)
	assert.Equal(t, time.Minute, d.TTL)
	assert.Nil(t, d.Note)
	assert.False(t, inst.Has("note"))

	v, ok := inst.Get("note")
	assert.True(t, ok)
	assert.Nil(t, v)

	inst, err = Make[draft](map[string]any{"count": 9, "note": "hi"})
	require.NoError(t, err)
	assert.Equal(t, 9, inst.Data().Count)
	require.NotNil(t, inst.Data().Note)
	assert.Equal(t, "hi", *inst.Data().Note)
}

func TestMake_InputTypeErrors(t *testing.T) {
	_, err := Make[toggle](map[string]any{"active": "yes"})
	var te *InputTypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "active", te.Field)
	assert.Equal(t, "string", te.Got)
	assert.ErrorIs(t, err, ErrInputType)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Make[person](map[string]any{"name": "Ada", "age": "old"})
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "age", te.Field)

	_, err = Make[person](map[string]any{"name": "Ada", "age": 30.5})
	assert.ErrorIs(t, err, ErrInputType, "floats must be integral to become ints")

	inst, err := Make[person](map[string]any{"name": "Ada", "age": float64(30)})
	require.NoError(t, err)
	assert.Equal(t, 30, inst.Data().Age)

	inst2, err := Make[toggle](map[string]any{})
	require.NoError(t, err)
	assert.False(t, inst2.Data().Active)
}

func TestMake_Confirmed(t *testing.T) {
	_, err := Make[signup](map[string]any{"password": "s3cret", "password_confirmation": "s3cret"})
	assert.NoError(t, err)

	_, err = Make[signup](map[string]any{"password": "s3cret", "password_confirmation": "typo"})
	assert.Equal(t, map[string][]string{"password": {"confirmation does not match"}}, FieldMessages(err))
}

func TestMake_ConfirmedComparesRawInput(t *testing.T) {
	inst, err := Make[trimmedSignup](map[string]any{"password": " s3cret ", "password_confirmation": " s3cret "})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", inst.Data().Password)

	_, err = Make[trimmedSignup](map[string]any{"password": " s3cret ", "password_confirmation": "s3cret"})
	assert.Equal(t, map[string][]string{"password": {"confirmation does not match"}}, FieldMessages(err))
}

func TestMake_RuleObjects(t *testing.T) {
	_, err := Make[ruled](map[string]any{})
	assert.Equal(t, map[string][]string{"code": {"is required", "format is invalid"}}, FieldMessages(err))

	_, err = Make[ruled](map[string]any{"code": "ab"})
	assert.Equal(t, map[string][]string{"code": {"format is invalid"}}, FieldMessages(err))

	_, err = Make[ruled](map[string]any{"code": "ABC"})
	assert.NoError(t, err)
}

func TestMake_NotAStruct(t *testing.T) {
	_, err := Make[int](map[string]any{})
	assert.ErrorIs(t, err, ErrDefinition)
}

func TestMake_DoesNotModifyArgs(t *testing.T) {
	args := map[string]any{"id": 1}
	_, err := Make[strictItem](args)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": 1}, args)
}

type logged struct {
	Name string `dto:"name"`
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	_, err := DescribeOf[logged]()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "dto descriptor resolved")
	assert.Contains(t, buf.String(), "component=dto")
}

func TestFieldMessages(t *testing.T) {
	assert.Nil(t, FieldMessages(errors.New("boom")))
	assert.Equal(t, map[string][]string{"x": {"is not allowed"}},
		FieldMessages(&UnknownFieldsError{Type: "t", Fields: []string{"x"}}))
	assert.Equal(t, map[string][]string{"2.age": {"must be int"}},
		FieldMessages(&ItemError{Index: 2, Err: &InputTypeError{Field: "age", Expected: "int"}}))
}
