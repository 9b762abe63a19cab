package db

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinTags(t *testing.T) {
	assert.Equal(t, "|go|web dev|", JoinTags([]string{" go ", "", "web dev"}))
	assert.Equal(t, "|ab|", JoinTags([]string{"a|b"}))
	assert.Equal(t, "", JoinTags(nil))
}

func TestTagsValueScan(t *testing.T) {
	v, err := Tags{"go", "sql"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "|go|sql|", v)

	var got Tags
	require.NoError(t, got.Scan([]byte("|go|sql|")))
	assert.Equal(t, Tags{"go", "sql"}, got)

	require.NoError(t, got.Scan(nil))
	assert.Equal(t, Tags{}, got)

	assert.Error(t, got.Scan(42))
}

func TestTagsMarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Tags Tags `json:"tags"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":[]}`, string(out))
}

func TestTagPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%|c\_\%|%`, tagPattern(" c_% "))
}
