// Package answer decides whether a typed answer matches the expected text of
// a typing round.
package answer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const trailingPunctuation = ".,!?;:"

var (
	whitespace = regexp.MustCompile(`\s+`)
	acronym    = regexp.MustCompile(`^[A-Za-z]{2,5}$`)
	// "ABBR (Full Text)"
	abbreviated = regexp.MustCompile(`^(.+?)\s*\((.+)\)$`)
)

// Check accepts input when, after normalization, it equals expected, when one
// side is an acronym of the other, or when expected has the form
// "ABBR (Full Text)" and input matches either part. Empty strings never match.
func Check(input, expected string) bool {
	if strings.TrimSpace(input) == "" || strings.TrimSpace(expected) == "" {
		return false
	}

	in := Normalize(input)
	want := Normalize(expected)
	if in == want {
		return true
	}

	if isAcronymMatch(strings.TrimSpace(input), strings.TrimSpace(expected)) {
		return true
	}

	if m := abbreviated.FindStringSubmatch(want); m != nil {
		short, full := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if in == short || in == full {
			return true
		}
	}

	return false
}

// Normalize trims, case folds and NFC-normalizes s, collapses whitespace
// runs to one space and drops a single trailing punctuation mark.
func Normalize(s string) string {
	// cases.Caser is stateful and cannot be shared between goroutines.
	s = cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
	s = whitespace.ReplaceAllString(s, " ")
	if n := len(s); n > 0 && strings.IndexByte(trailingPunctuation, s[n-1]) >= 0 {
		s = s[:n-1]
	}
	return s
}

func isAcronymMatch(input, expected string) bool {
	inputIsAcronym := acronym.MatchString(input)
	expectedIsAcronym := acronym.MatchString(expected)

	switch {
	case inputIsAcronym && !expectedIsAcronym:
		return initialsMatch(input, expected)
	case expectedIsAcronym && !inputIsAcronym:
		return initialsMatch(expected, input)
	default:
		return false
	}
}

// initialsMatch compares abbr with the first letters of the leading words of
// text. Extra words after the initials are allowed.
func initialsMatch(abbr, text string) bool {
	words := strings.Fields(text)
	if len(words) < len(abbr) {
		return false
	}

	var initials strings.Builder
	for _, w := range words[:len(abbr)] {
		r := []rune(w)[0]
		initials.WriteRune(unicode.ToUpper(r))
	}
	return initials.String() == strings.ToUpper(abbr)
}
