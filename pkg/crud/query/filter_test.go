package query

import (
	"errors"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseString(s string) (string, error) {
	return s, nil
}

func TestParseFilterParams(t *testing.T) {
	values := url.Values{
		"filter[id].gt":      {"3"},
		"filter[username]in": {"a,b"},
		"filter.role.ne":     {"admin"},
		"filter[title]":      {"x", "y"},
		"filter.score":       {"7"},
		"sort":               {"id"},
		"filterx":            {"ignored"},
	}

	params, err := ParseFilterParams(values)
	require.NoError(t, err)
	assert.Equal(t, []FilterParam{
		{Field: "role", Op: OpNotEqual, Value: "admin"},
		{Field: "score", Op: OpEqual, Value: "7"},
		{Field: "id", Op: OpGreaterThan, Value: "3"},
		{Field: "title", Op: OpEqual, Value: "x"},
		{Field: "title", Op: OpEqual, Value: "y"},
		{Field: "username", Op: OpIn, Value: "a,b"},
	}, params)
}

func TestParseFilterParamsErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "unknown operator", key: "filter[id].like"},
		{name: "unterminated bracket", key: "filter[id"},
		{name: "empty field", key: "filter[].eq"},
		{name: "empty dotted field", key: "filter..eq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFilterParams(url.Values{tt.key: {"1"}})
			assert.Error(t, err)
		})
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(OpGreaterThanOrEqual, "5", parseInt)
	require.NoError(t, err)
	assert.Equal(t, Filter[int64]{Op: OpGreaterThanOrEqual, Values: []int64{5}}, f)

	f, err = ParseFilter(OpIn, "1,2,3", parseInt)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, f.Values)

	f, err = ParseFilter(OpIn, "", parseInt)
	require.NoError(t, err)
	assert.Empty(t, f.Values)

	_, err = ParseFilter(OpEqual, "abc", parseInt)
	assert.Error(t, err)
}

func TestParseNullableFilter(t *testing.T) {
	f, err := ParseNullableFilter(OpEqual, "", parseString)
	require.NoError(t, err)
	require.Len(t, f.Values, 1)
	assert.Nil(t, f.Values[0])

	f, err = ParseNullableFilter(OpLessThan, "m", parseString)
	require.NoError(t, err)
	assert.Equal(t, OpLessThan, f.Op)
	require.Len(t, f.Values, 1)
	assert.Equal(t, "m", *f.Values[0])

	f, err = ParseNullableFilter(OpIn, "a,,b", parseString)
	require.NoError(t, err)
	require.Len(t, f.Values, 3)
	assert.Nil(t, f.Values[1])

	_, err = ParseNullableFilter(OpGreaterThan, "", parseString)
	assert.True(t, errors.Is(err, ErrNullComparison))
}

func TestFilterCondition(t *testing.T) {
	tests := []struct {
		name     string
		cond     Condition
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "comparison",
			cond:     Filter[int64]{Op: OpLessThanOrEqual, Values: []int64{4}}.Condition("id"),
			wantSQL:  `"id" <= $1`,
			wantArgs: []any{int64(4)},
		},
		{
			name:    "null equality",
			cond:    Filter[*string]{Op: OpEqual, Values: []*string{nil}}.Condition("subtitle"),
			wantSQL: `"subtitle" IS NULL`,
		},
		{
			name:    "null inequality",
			cond:    Filter[*string]{Op: OpNotEqual, Values: []*string{nil}}.Condition("subtitle"),
			wantSQL: `"subtitle" IS NOT NULL`,
		},
		{
			name:     "membership",
			cond:     Filter[string]{Op: OpIn, Values: []string{"a", "b"}}.Condition("name"),
			wantSQL:  `"name" IN ($1, $2)`,
			wantArgs: []any{"a", "b"},
		},
		{
			name:    "empty membership",
			cond:    Filter[string]{Op: OpIn}.Condition("name"),
			wantSQL: `1 = 0`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWriter(Postgres)
			require.NoError(t, tt.cond.render(w))
			assert.Equal(t, tt.wantSQL, w.String())
			assert.Equal(t, tt.wantArgs, w.args)
		})
	}
}

func TestAppendFilterWrapsField(t *testing.T) {
	_, err := AppendFilter[int64](nil, FilterParam{Field: "id", Op: OpEqual, Value: "x"}, parseInt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter id")
}
