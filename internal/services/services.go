package services

import (
	"strings"

	"portfolio/internal/types"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// lookup turns a missing row into a NOT_FOUND for resource.
func lookup(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NotFound(resource)
	}
	return err
}

// persist maps a unique index violation that slipped past the slug pre-check.
func persist(err error, resource string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.Conflict("A " + strings.ToLower(resource) + " with this slug already exists")
	}
	return errors.Wrap(err, "save "+strings.ToLower(resource))
}

// optional normalises "" to nil so blank URLs are stored as NULL.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
