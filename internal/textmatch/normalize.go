package textmatch

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key is a normalized text key. Two fields refer to the same place exactly
// when their keys are equal, regardless of source formatting.
type Key string

var (
	nonKeyRunes = regexp.MustCompile(`[^0-9a-z가-힣]+`)
	tokenRuns   = regexp.MustCompile(`[0-9]+|[가-힣]+`)
)

// Normalize canonicalizes free text into a Key: NFC composition, trim,
// lowercase, then every rune outside [0-9a-z가-힣] removed. Total and
// idempotent; empty input yields the empty key.
func Normalize(s string) Key {
	s = norm.NFC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return Key(nonKeyRunes.ReplaceAllString(s, ""))
}

// TokenSet holds the meaningful tokens of a normalized key.
type TokenSet map[string]struct{}

// Tokenize splits a key into maximal digit runs and Korean syllable runs,
// keeping tokens of two or more runes. Single-rune tokens are too generic
// to carry matching signal.
func Tokenize(key Key) TokenSet {
	if key == "" {
		return nil
	}
	set := make(TokenSet)
	for _, tok := range tokenRuns.FindAllString(string(key), -1) {
		if len([]rune(tok)) >= 2 {
			set[tok] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// Overlap reports the number of tokens present in both sets.
func (ts TokenSet) Overlap(other TokenSet) int {
	if len(ts) == 0 || len(other) == 0 {
		return 0
	}
	small, large := ts, other
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			n++
		}
	}
	return n
}
