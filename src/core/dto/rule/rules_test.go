package rule

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired(t *testing.T) {
	r := Required()
	assert.False(t, r.Validate(nil, nil).Valid)
	assert.False(t, r.Validate("", nil).Valid)
	assert.False(t, r.Validate("   ", nil).Valid)
	assert.True(t, r.Validate("0", nil).Valid)
	assert.True(t, r.Validate(0, nil).Valid)
	assert.True(t, r.Validate(false, nil).Valid)
	assert.Equal(t, "is required", r.Validate("", nil).Message)
}

func TestMinMaxComposition(t *testing.T) {
	rules := []Rule{Min(5), Max(10)}
	check := func(v any) bool {
		for _, r := range rules {
			if !r.Validate(v, nil).Valid {
				return false
			}
		}
		return true
	}
	assert.False(t, check(4))
	assert.True(t, check(5))
	assert.True(t, check(10))
	assert.False(t, check(11))
	assert.True(t, check(7.5))
	assert.True(t, check("8"), "numeric strings are compared by value")

	assert.Equal(t, "must be at least 5", Min(5).Validate(4, nil).Message)
	assert.Equal(t, "must not be greater than 10", Max(10).Validate(11, nil).Message)
	assert.False(t, Min(0).Validate("abc", nil).Valid)
}

func TestEnum_IsStrict(t *testing.T) {
	r := Enum("a", "b")
	assert.True(t, r.Validate("a", nil).Valid)
	assert.True(t, r.Validate("b", nil).Valid)
	assert.False(t, r.Validate("c", nil).Valid)
	assert.False(t, r.Validate("A", nil).Valid)
	assert.Equal(t, "must be one of a, b", r.Validate("c", nil).Message)

	assert.False(t, Enum(1, 2).Validate("1", nil).Valid)
	assert.False(t, Enum(1, 2).Validate(int64(1), nil).Valid)
}

func TestIn_IsLoose(t *testing.T) {
	r := In(1, 2, 3)
	assert.True(t, r.Validate("2", nil).Valid)
	assert.True(t, r.Validate(3, nil).Valid)
	assert.False(t, r.Validate(4, nil).Valid)
	assert.False(t, r.Validate(nil, nil).Valid)
}

type mood string

func (m mood) Valid() bool    { return m == "happy" || m == "sad" }
func (m mood) String() string { return string(m) }

func TestEnumOf(t *testing.T) {
	r := EnumOf(reflect.TypeOf(mood("")))
	assert.True(t, r.Validate("happy", nil).Valid)
	assert.True(t, r.Validate(mood("sad"), nil).Valid)
	assert.False(t, r.Validate("angry", nil).Valid)
	assert.Equal(t, "is not a valid mood", r.Validate("angry", nil).Message)
}

func TestPhoneNumber(t *testing.T) {
	r := PhoneNumber()
	valid := []string{
		"+14155551234",
		"  +44 20 7946 0958",
		"+33 (1) 42.68.53.00",
	}
	for _, s := range valid {
		assert.True(t, r.Validate(s, nil).Valid, s)
	}
	invalid := []any{
		"+999999",
		"+1415",
		"+1415555123456789012",
		"+1415555abcd",
		14155551234,
	}
	for _, v := range invalid {
		assert.False(t, r.Validate(v, nil).Valid, "%v", v)
	}
}

func TestEmailAndURL(t *testing.T) {
	assert.True(t, Email().Validate("ada@example.com", nil).Valid)
	assert.False(t, Email().Validate("ada@", nil).Valid)
	assert.False(t, Email().Validate(42, nil).Valid)

	assert.True(t, URL().Validate("https://example.com/jokes", nil).Valid)
	assert.False(t, URL().Validate("not a url", nil).Valid)
}

func TestScalarRules(t *testing.T) {
	assert.True(t, Integer().Validate("12", nil).Valid)
	assert.True(t, Integer().Validate(float64(3), nil).Valid)
	assert.False(t, Integer().Validate(3.2, nil).Valid)
	assert.False(t, Integer().Validate("1.5", nil).Valid)

	assert.True(t, Numeric().Validate("1.5", nil).Valid)
	assert.False(t, Numeric().Validate("x", nil).Valid)

	assert.True(t, Boolean().Validate("0", nil).Valid)
	assert.True(t, Boolean().Validate(true, nil).Valid)
	assert.False(t, Boolean().Validate("yes", nil).Valid)

	assert.True(t, Accepted().Validate("yes", nil).Valid)
	assert.True(t, Accepted().Validate(1, nil).Valid)
	assert.False(t, Accepted().Validate(false, nil).Valid)

	assert.True(t, Text().Validate("", nil).Valid)
	assert.False(t, Text().Validate(1, nil).Valid)

	assert.True(t, UUID().Validate(uuid.New(), nil).Valid)
	assert.True(t, UUID().Validate(uuid.NewString(), nil).Valid)
	assert.False(t, UUID().Validate("nope", nil).Valid)

	assert.True(t, Date().Validate("2024-02-29", nil).Valid)
	assert.True(t, Date().Validate(time.Now(), nil).Valid)
	assert.False(t, Date().Validate("29/02/2024", nil).Valid)
	assert.True(t, Date("02/01/2006").Validate("29/02/2024", nil).Valid)

	assert.True(t, Regex(`^[a-z]+$`).Validate("abc", nil).Valid)
	assert.False(t, Regex(`^[a-z]+$`).Validate("ab1", nil).Valid)
	assert.Panics(t, func() { Regex(`(`) })
}

func TestConfirmed(t *testing.T) {
	r := Confirmed("password_confirmation")
	assert.True(t, r.Validate("s3cret", map[string]any{"password_confirmation": "s3cret"}).Valid)
	assert.False(t, r.Validate("s3cret", map[string]any{"password_confirmation": "other"}).Valid)
	assert.False(t, r.Validate("s3cret", map[string]any{}).Valid)

	assert.True(t, WantsRawInput(r))
	assert.False(t, WantsRawInput(Required()))
}

func TestParse(t *testing.T) {
	rules, err := Parse("required; min=1 ;max=10;in=a|b;regex=^(x|y)$", reflect.TypeOf(""))
	require.NoError(t, err)
	require.Len(t, rules, 5)

	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name()
	}
	assert.Equal(t, []string{"required", "min", "max", "in", "regex"}, names)
	assert.True(t, IsRequired(rules[0]))
	assert.True(t, rules[4].Validate("y", nil).Valid, "regex keeps '|' inside the pattern")

	rules, err = Parse("", reflect.TypeOf(""))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("nope", reflect.TypeOf(""))
	assert.ErrorContains(t, err, `unknown rule "nope"`)

	_, err = Parse("min=x", reflect.TypeOf(0))
	assert.Error(t, err)

	_, err = Parse("enum", reflect.TypeOf(""))
	assert.ErrorContains(t, err, "not an enumeration")

	_, err = Parse("required=1", reflect.TypeOf(""))
	assert.Error(t, err)
}

func TestParse_EnumFromFieldType(t *testing.T) {
	var m *mood
	rules, err := Parse("enum", reflect.TypeOf(m))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.True(t, rules[0].Validate("sad", nil).Valid)
}

func TestRegister(t *testing.T) {
	Register("even", func([]string, reflect.Type) (Rule, error) {
		return Func("even", func(v any, _ map[string]any) Result {
			if n, ok := v.(int); ok && n%2 == 0 {
				return Pass()
			}
			return Fail("must be even")
		}), nil
	})
	assert.Contains(t, Registered(), "even")

	rules, err := Parse("EVEN", reflect.TypeOf(0))
	require.NoError(t, err)
	assert.True(t, rules[0].Validate(4, nil).Valid)
	assert.Equal(t, "must be even", rules[0].Validate(3, nil).Message)
}
