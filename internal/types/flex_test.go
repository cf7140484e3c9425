package types_test

import (
	"encoding/json"
	"testing"

	"github.com/localnerve/gigcrew/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	OrderIndex int `json:"orderIndex"`
}

type rowSet struct {
	Rows types.Rows[row] `json:"rows"`
}

func TestRowsUnmarshal(t *testing.T) {
	var set rowSet
	require.NoError(t, json.Unmarshal([]byte(`{"rows":[{"orderIndex":2},{"orderIndex":0}]}`), &set))
	assert.Equal(t, types.Rows[row]{{OrderIndex: 2}, {OrderIndex: 0}}, set.Rows)

	set = rowSet{}
	require.NoError(t, json.Unmarshal([]byte(`{"rows":[]}`), &set))
	assert.NotNil(t, set.Rows)
	assert.Empty(t, set.Rows)

	set = rowSet{}
	require.NoError(t, json.Unmarshal([]byte(`{"rows":null}`), &set))
	assert.Nil(t, set.Rows)

	set = rowSet{}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &set))
	assert.Nil(t, set.Rows)

	for _, body := range []string{`{"rows":{"orderIndex":5}}`, `{"rows":"0"}`, `{"rows":[{"orderIndex":"x"}]}`} {
		set = rowSet{}
		assert.Error(t, json.Unmarshal([]byte(body), &set), body)
	}
}

func TestVersionUnmarshal(t *testing.T) {
	var v types.Version
	require.NoError(t, json.Unmarshal([]byte(`7`), &v))
	assert.Equal(t, types.Version(7), v)
	require.NoError(t, json.Unmarshal([]byte(`"12"`), &v))
	assert.Equal(t, types.Version(12), v)
	assert.Error(t, json.Unmarshal([]byte(`"-1"`), &v))
	assert.Error(t, json.Unmarshal([]byte(`true`), &v))
}

func TestNullableUnmarshal(t *testing.T) {
	var patch struct {
		Notes types.Nullable[string] `json:"notes"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &patch))
	assert.False(t, patch.Notes.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"notes":null}`), &patch))
	assert.True(t, patch.Notes.Set)
	assert.Nil(t, patch.Notes.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"notes":"hi"}`), &patch))
	require.NotNil(t, patch.Notes.Value)
	assert.Equal(t, "hi", *patch.Notes.Value)
}
