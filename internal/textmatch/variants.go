package textmatch

import "strings"

// VariantFunc expands a normalized base key into alternative candidate
// keys. Variants that come back empty or duplicate earlier candidates are
// discarded by Candidates.
type VariantFunc func(base Key) []Key

// Administrative spellings that upstream sources include inconsistently.
const (
	provinceFull  = "경상북도"
	provinceShort = "경북"
	countyFull    = "울릉군"
	countyShort   = "울릉"
)

// RegionVariants strips province and county names in the four combinations
// observed across the source CSVs and photo filenames.
func RegionVariants(base Key) []Key {
	s := string(base)
	return []Key{
		Key(strings.ReplaceAll(strings.ReplaceAll(s, provinceFull, ""), provinceShort, "")),
		Key(strings.ReplaceAll(strings.ReplaceAll(s, countyFull, ""), countyShort, "")),
		Key(strings.ReplaceAll(strings.ReplaceAll(s, provinceFull, ""), countyFull, "")),
		Key(strings.ReplaceAll(strings.ReplaceAll(s, provinceShort, ""), countyShort, "")),
	}
}

// Candidates normalizes raw text and returns the candidate keys to try
// against an index: the base key first, then non-empty unique variants in
// generation order. Empty input yields nil.
func Candidates(raw string, variants VariantFunc) []Key {
	base := Normalize(raw)
	if base == "" {
		return nil
	}
	out := []Key{base}
	if variants == nil {
		return out
	}
	seen := map[Key]struct{}{base: {}}
	for _, v := range variants(base) {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
