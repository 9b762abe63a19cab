package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":                  "hello-world",
		"  Neural Stock Predictor!  ":  "neural-stock-predictor",
		"snake_case and--dashes":       "snake-case-and-dashes",
		"-leading and trailing-":       "leading-and-trailing",
		"C++ & Go: a love story?":      "c-go-a-love-story",
		"already-a-slug":               "already-a-slug",
		"":                             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestFormatTitle(t *testing.T) {
	assert.Equal(t, "My First Post", FormatTitle("My First Post.md"))
	assert.Equal(t, "notes", FormatTitle("/tmp/upload/notes.markdown"))
}

func TestStripHTML(t *testing.T) {
	got := StripHTML(`<h2>Title</h2><p>Some <strong>bold</strong> text</p><script>alert(1)</script>`)
	assert.Equal(t, "Title", strings.Fields(got)[0])
	assert.NotContains(t, got, "alert")
	assert.NotContains(t, got, "<")
	assert.Equal(t, []string{"Title", "Some", "bold", "text"}, strings.Fields(got))
}

func TestCalculateReadTime(t *testing.T) {
	assert.Equal(t, 1, CalculateReadTime("", WordsPerMinute))
	assert.Equal(t, 1, CalculateReadTime("just a few words", WordsPerMinute))

	words := strings.Repeat("word ", 401)
	assert.Equal(t, 3, CalculateReadTime(words, WordsPerMinute))
	assert.Equal(t, 3, CalculateReadTime("<p>"+words+"</p>", 0))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "hello...", Truncate("hello world", 6))
	assert.Equal(t, "héllo...", Truncate("héllo wörld", 5))
}

func TestGenerateExcerpt(t *testing.T) {
	content := "<p>First   paragraph.</p>\n\n<p>Second one that goes on</p>"
	assert.Equal(t, "First paragraph. Second one that goes on", GenerateExcerpt(content, 200))
	assert.Equal(t, "First paragraph....", GenerateExcerpt(content, 17))
}

func TestParseBool(t *testing.T) {
	require.NotNil(t, ParseBool("true"))
	assert.True(t, *ParseBool("true"))
	assert.False(t, *ParseBool("false"))
	assert.Nil(t, ParseBool("yes"))
	assert.Nil(t, ParseBool(""))
}

func TestMap(t *testing.T) {
	assert.Equal(t, []int{1, 4, 9}, Map([]int{1, 2, 3}, func(i int) int { return i * i }))
}

func TestGenerateTokenClaims(t *testing.T) {
	key := []byte("test-key")
	s, err := GenerateToken(key, "admin-1", "admin@example.com", time.Hour)
	require.NoError(t, err)

	tok, err := jwt.Parse(s, func(*jwt.Token) (interface{}, error) { return key, nil })
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "admin-1", claims["adminId"])
	assert.Equal(t, "admin@example.com", claims["email"])
}
