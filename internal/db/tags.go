package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

const tagDelimiter = "|"

// Tags is stored as "|a|b|" so a single tag can be matched with
// LIKE '%|tag|%' on every supported database.
type Tags []string

func (Tags) GormDataType() string {
	return "text"
}

func (t Tags) Value() (driver.Value, error) {
	return JoinTags(t), nil
}

func (t *Tags) Scan(value any) error {
	var s string
	switch v := value.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Tags", value)
	}
	*t = SplitTags(s)
	return nil
}

// MarshalJSON keeps empty tag lists as [] rather than null.
func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

func JoinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.ReplaceAll(tag, tagDelimiter, ""))
		if tag != "" {
			clean = append(clean, tag)
		}
	}
	if len(clean) == 0 {
		return ""
	}
	return tagDelimiter + strings.Join(clean, tagDelimiter) + tagDelimiter
}

func SplitTags(s string) Tags {
	out := Tags{}
	for _, part := range strings.Split(s, tagDelimiter) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// tagPattern is the LIKE pattern matching rows that carry tag.
func tagPattern(tag string) string {
	return "%" + tagDelimiter + escapeLike(strings.TrimSpace(tag)) + tagDelimiter + "%"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

func (t Tags) Has(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}
