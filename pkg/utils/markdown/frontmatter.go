package markdown

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const fence = "---"

// Frontmatter is the YAML header accepted at the top of an imported post.
type Frontmatter struct {
	Title      string   `yaml:"title"`
	Slug       string   `yaml:"slug"`
	Excerpt    string   `yaml:"excerpt"`
	Tags       []string `yaml:"tags"`
	CoverImage string   `yaml:"cover_image"`
	Published  bool     `yaml:"published"`
}

// SplitFrontmatter separates a leading "---" YAML block from the markdown
// body. Sources without a header come back unchanged with a zero Frontmatter.
func SplitFrontmatter(source string) (Frontmatter, string, error) {
	var fm Frontmatter
	src := strings.ReplaceAll(source, "\r\n", "\n")
	if !strings.HasPrefix(src, fence+"\n") {
		return fm, source, nil
	}
	rest := src[len(fence)+1:]
	end := strings.Index(rest, "\n"+fence)
	if end < 0 {
		return fm, source, errors.New("frontmatter is not closed")
	}
	header := rest[:end]
	body := rest[end+len(fence)+1:]
	// drop the remainder of the closing fence line
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return fm, source, errors.Wrap(err, "invalid frontmatter")
	}
	for i, tag := range fm.Tags {
		fm.Tags[i] = strings.TrimSpace(tag)
	}
	return fm, strings.TrimLeft(body, "\n"), nil
}
