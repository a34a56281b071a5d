package adapters

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTrackingNumberGenerator_Format verifies the prefix plus fixed-width
// decimal suffix scheme.
func TestTrackingNumberGenerator_Format(t *testing.T) {
	gen := NewTrackingNumberGenerator("SHP")
	pattern := regexp.MustCompile(`^SHP\d{8}$`)

	for i := 0; i < 100; i++ {
		number := gen.Next()
		assert.Len(t, number, 11)
		assert.Regexp(t, pattern, number)
	}
}

// TestTrackingNumberGenerator_DefaultPrefix verifies the fallback prefix.
func TestTrackingNumberGenerator_DefaultPrefix(t *testing.T) {
	gen := NewTrackingNumberGenerator("")

	assert.Regexp(t, `^SHP\d{8}$`, gen.Next())
}

// TestTrackingNumberGenerator_UppercasesPrefix verifies prefix normalization.
func TestTrackingNumberGenerator_UppercasesPrefix(t *testing.T) {
	gen := NewTrackingNumberGenerator("abc")

	assert.Regexp(t, `^ABC\d{8}$`, gen.Next())
}
