// Package vehicle maps free-form vehicle model input to canonical slugs.
package vehicle

import (
	"regexp"
	"strings"
)

// Slug is the canonical identifier for a supported vehicle model.
type Slug string

// Supported vehicle models.
const (
	ModelS     Slug = "model_s"
	ModelX     Slug = "model_x"
	Model3     Slug = "model_3"
	ModelY     Slug = "model_y"
	Cybertruck Slug = "cybertruck"
)

// aliases covers the common spellings users type into the model selector.
var aliases = map[string]Slug{
	"model_s":    ModelS,
	"models":     ModelS,
	"model-s":    ModelS,
	"modelx":     ModelX,
	"model_x":    ModelX,
	"model-x":    ModelX,
	"model3":     Model3,
	"model_3":    Model3,
	"model-3":    Model3,
	"modely":     ModelY,
	"model_y":    ModelY,
	"model-y":    ModelY,
	"cybertruck": Cybertruck,
}

var separatorRuns = regexp.MustCompile(`[\s-]+`)

// Normalize resolves input against the alias table. The raw lower-cased form
// is tried first, then the form with whitespace and hyphen runs collapsed to
// underscores. The second return value is false when no alias matches.
func Normalize(input string) (Slug, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(input))
	if slug, ok := aliases[cleaned]; ok {
		return slug, true
	}
	collapsed := separatorRuns.ReplaceAllString(cleaned, "_")
	slug, ok := aliases[collapsed]
	return slug, ok
}

// String returns the slug as a plain string.
func (s Slug) String() string {
	return string(s)
}

// Supported lists the canonical slugs in catalog order.
func Supported() []Slug {
	return []Slug{ModelS, ModelX, Model3, ModelY, Cybertruck}
}
