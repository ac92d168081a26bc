// Package label reads the label dictionaries of the source and target
// knowledge bases and normalizes labels into join keys.
package label

import (
	"strings"

	"github.com/OFFIS-RIT/kblink/pkg/common"
)

// Normalizer turns a raw name into a join key. Implementations must be
// deterministic and idempotent.
type Normalizer func(text string) common.Label

var punctuation = strings.NewReplacer(
	"'", "_",
	".", "_",
	"-", "_",
	" ", "_",
)

// Normalize trims surrounding newlines and maps apostrophes, periods,
// hyphens and spaces to underscores. Case is preserved: source labels are
// expected to be lowercased upstream.
func Normalize(text string) common.Label {
	return common.Label(punctuation.Replace(strings.Trim(text, "\n")))
}

// NormalizeFold is Normalize preceded by lowercasing.
func NormalizeFold(text string) common.Label {
	return Normalize(strings.ToLower(text))
}
