package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeValueIgnoresKeyInsertionOrder(t *testing.T) {
	a := map[string]any{}
	a["tier"] = 2
	a["scope"] = "courses_only"
	a["items"] = []any{"A", "B"}

	b := map[string]any{}
	b["items"] = []any{"A", "B"}
	b["scope"] = "courses_only"
	b["tier"] = 2

	encA, err := EncodeValue(a)
	require.NoError(t, err)
	encB, err := EncodeValue(b)
	require.NoError(t, err)
	assert.Equal(t, encA, encB)
	assert.Equal(t, `{"items":["A","B"]|"scope":"courses_only"|"tier":2}`, encA)
}

func TestEncodeValueSequenceOrderMatters(t *testing.T) {
	one, err := EncodeValue([]any{"A", "B"})
	require.NoError(t, err)
	two, err := EncodeValue([]any{"B", "A"})
	require.NoError(t, err)
	assert.NotEqual(t, one, two)
}

func TestEncodeValueDelimitersInsideStringsAreUnambiguous(t *testing.T) {
	nested, err := EncodeValue(map[string]any{"a": "1|b:2"})
	require.NoError(t, err)
	flat, err := EncodeValue(map[string]any{"a": "1", "b": "2"})
	require.NoError(t, err)
	assert.NotEqual(t, nested, flat)

	flatList, err := EncodeValue([]any{"1", "2", "3"})
	require.NoError(t, err)
	nestedList, err := EncodeValue([]any{[]any{"1", "2"}, "3"})
	require.NoError(t, err)
	assert.NotEqual(t, flatList, nestedList)
}

func TestEncodeValueScalars(t *testing.T) {
	got, err := EncodeValue([]any{nil, true, false, 3, int64(-4), 1.5, "x"})
	require.NoError(t, err)
	assert.Equal(t, `[null,true,false,3,-4,1.5,"x"]`, got)

	_, err = EncodeValue(struct{}{})
	require.Error(t, err)
}

type sample struct {
	Tier   int      `json:"tier"`
	Scope  string   `json:"scope"`
	Badges []string `json:"badges"`
	Price  string   `json:"price"`
}

func TestEncodeStructUsesJSONNames(t *testing.T) {
	got, err := Encode(sample{Tier: 1, Scope: "entire_cart", Badges: []string{"Course"}, Price: "90.00"})
	require.NoError(t, err)
	assert.Equal(t, `{"badges":["Course"]|"price":"90.00"|"scope":"entire_cart"|"tier":1}`, got)

	again, err := Encode(map[string]any{"price": "90.00", "tier": 1, "badges": []string{"Course"}, "scope": "entire_cart"})
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestEncodeNormalizesNumberSpelling(t *testing.T) {
	a, err := Encode(map[string]any{"n": 100.0})
	require.NoError(t, err)
	b, err := Encode(map[string]any{"n": 100})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
