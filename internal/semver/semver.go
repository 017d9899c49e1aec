// Package semver implements the dotted MAJOR.MINOR.PATCH version
// scheme used for prompt versions. It is deliberately narrower than
// full semantic versioning: no "v" prefix, no prerelease, no build
// metadata.
package semver

import (
	"fmt"
	"strings"

	"github.com/promptkeepapp/promptkeep-server/internal/errors"
)

// Initial is the version assigned to a prompt's first snapshot.
const Initial = "1.0.0"

// Parse splits s into its numeric components. Exactly three
// dot-separated non-negative decimal integers are accepted.
func Parse(s string) (major, minor, patch int, err error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return 0, 0, 0, errors.InvalidInputf("invalid version %q: want MAJOR.MINOR.PATCH", s)
	}

	var nums [3]int
	for i, part := range parts {
		n, ok := parseComponent(part)
		if !ok {
			return 0, 0, 0, errors.InvalidInputf("invalid version %q: component %q is not a non-negative integer", s, part)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

// parseComponent converts a decimal digit string to int. Signs,
// whitespace, and empty strings are rejected; leading zeros are
// tolerated ("01" reads as 1).
func parseComponent(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
		if n > 1<<30 {
			return 0, false
		}
	}
	return n, true
}

// IsValid reports whether s parses as a version.
func IsValid(s string) bool {
	_, _, _, err := Parse(s)
	return err == nil
}

// BumpPatch returns s with its patch component incremented.
func BumpPatch(s string) (string, error) {
	major, minor, patch, err := Parse(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, patch+1), nil
}

// Compare orders a and b numerically by (major, minor, patch),
// returning -1, 0, or 1. String order would put "1.0.9" after
// "1.0.10"; numeric order is what version allocation needs.
func Compare(a, b string) (int, error) {
	aMajor, aMinor, aPatch, err := Parse(a)
	if err != nil {
		return 0, err
	}
	bMajor, bMinor, bPatch, err := Parse(b)
	if err != nil {
		return 0, err
	}

	if c := compareInt(aMajor, bMajor); c != 0 {
		return c, nil
	}
	if c := compareInt(aMinor, bMinor); c != 0 {
		return c, nil
	}
	return compareInt(aPatch, bPatch), nil
}

// Max returns the numerically largest version among candidates,
// skipping any that do not parse. Empty input or all-invalid input
// returns "".
func Max(candidates []string) string {
	best := ""
	for _, c := range candidates {
		if !IsValid(c) {
			continue
		}
		if best == "" {
			best = c
			continue
		}
		if cmp, err := Compare(c, best); err == nil && cmp > 0 {
			best = c
		}
	}
	return best
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
