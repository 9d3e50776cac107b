package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Mozilla Firefox", "mozilla-firefox"},
		{"trims", "  7-Zip  ", "7-zip"},
		{"diacritics", "Éditeur", "editeur"},
		{"empty passes through", "", ""},
		{"wildcard passes through", "%", "%"},
		{"collapses whitespace", "Visual   Studio\tCode", "visual-studio-code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fold(tt.input))
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "firefox$$mozilla$$0$$12",
		Key("Firefox", "Mozilla", "0", "12"))

	// Same parts fold to the same key regardless of case or spacing.
	assert.Equal(t,
		Key("Mozilla Firefox", "Mozilla"),
		Key("  mozilla FIREFOX ", "MOZILLA"))

	// A missing part still occupies a slot.
	assert.Equal(t, "firefox$$$$12", Key("Firefox", "", "12"))
}
