package adapters

import (
	"fmt"
	"math/rand"
	"strings"
)

// suffixDigits is the fixed width of the numeric part of a tracking number.
// With the default 3-letter prefix the full code is 11 characters, e.g.
// "SHP12345678".
const suffixDigits = 8

// DefaultTrackingPrefix is the prefix used when none is configured.
const DefaultTrackingPrefix = "SHP"

// TrackingNumberGenerator produces human-readable tracking number
// candidates: an uppercase alphabetic prefix followed by a fixed-width
// decimal suffix. Candidates are random, not sequential, so uniqueness is
// enforced by the store and resolved by the registry's retry loop.
type TrackingNumberGenerator struct {
	prefix string
}

// NewTrackingNumberGenerator creates a generator with the given prefix.
// An empty prefix falls back to DefaultTrackingPrefix.
func NewTrackingNumberGenerator(prefix string) *TrackingNumberGenerator {
	if prefix == "" {
		prefix = DefaultTrackingPrefix
	}
	return &TrackingNumberGenerator{prefix: strings.ToUpper(prefix)}
}

// Next returns the next tracking number candidate.
func (g *TrackingNumberGenerator) Next() string {
	n := rand.Int63n(1_0000_0000)
	return fmt.Sprintf("%s%0*d", g.prefix, suffixDigits, n)
}
