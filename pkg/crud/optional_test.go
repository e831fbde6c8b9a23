package crud

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchBody struct {
	Name     Optional[string]  `json:"name"`
	Subtitle Optional[*string] `json:"subtitle"`
}

func TestOptionalUnmarshal(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantName     Optional[string]
		wantSubSet   bool
		wantSubValue *string
	}{
		{name: "absent", body: `{}`},
		{name: "value", body: `{"name":"a","subtitle":"b"}`, wantName: Some("a"), wantSubSet: true, wantSubValue: ptr("b")},
		{name: "null nullable", body: `{"subtitle":null}`, wantSubSet: true},
		{name: "null non-nullable is absent", body: `{"name":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body patchBody
			require.NoError(t, json.Unmarshal([]byte(tt.body), &body))
			assert.Equal(t, tt.wantName, body.Name)
			assert.Equal(t, tt.wantSubSet, body.Subtitle.Set)
			assert.Equal(t, tt.wantSubValue, body.Subtitle.Value)
		})
	}
}

func TestOptionalNullOnlyForPointers(t *testing.T) {
	var body struct {
		Data Optional[[]byte]         `json:"data"`
		Tags Optional[map[string]int] `json:"tags"`
		Note Optional[*string]        `json:"note"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"data":null,"tags":null,"note":null}`), &body))
	assert.False(t, body.Data.Set, "null leaves a byte slice absent")
	assert.False(t, body.Tags.Set, "null leaves a map absent")
	assert.True(t, body.Note.Set)
	assert.Nil(t, body.Note.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"data":"aGk="}`), &body))
	assert.Equal(t, Some([]byte("hi")), body.Data)
}

func TestOptionalMarshalOmitZero(t *testing.T) {
	type partial struct {
		ID   Optional[int]     `json:"id,omitzero"`
		Name Optional[*string] `json:"name,omitzero"`
		Bio  Optional[*string] `json:"bio,omitzero"`
	}

	out, err := json.Marshal(partial{ID: Some(3), Name: Some[*string](nil)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"name":null}`, string(out))
}

func TestOptionalAccessors(t *testing.T) {
	v, ok := Some(4).Get()
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	assert.Equal(t, 9, Optional[int]{}.OrElse(9))
	assert.True(t, Optional[int]{}.IsZero())
}

func ptr[T any](v T) *T {
	return &v
}
