package compare

import (
	"strings"

	"github.com/gosimple/slug"
)

const (
	// Separator joins key parts. It must never occur inside a part after
	// folding, otherwise two different part lists could collide.
	Separator = "$$"
	// Wildcard stands in for a key part that must match any value, used
	// for the operating system part of partial submissions.
	Wildcard = "%"
)

// Fold normalizes one key part: trimmed, lowercased, diacritics and
// punctuation reduced to hyphens. Empty and wildcard parts pass through.
func Fold(part string) string {
	part = strings.TrimSpace(part)
	if part == "" || part == Wildcard {
		return part
	}
	return slug.Make(part)
}

// Key builds a comparison key from its parts. Every part is folded so
// that cosmetic differences in agent output map to the same key.
func Key(parts ...string) string {
	folded := make([]string, len(parts))
	for i, p := range parts {
		folded[i] = Fold(p)
	}
	return strings.Join(folded, Separator)
}
