package textmatch

import "strings"

// Index maps normalized keys to items and resolves fuzzy queries against
// them. Insertion order is preserved so scans and tie-breaks are
// deterministic; the first insert wins on duplicate keys.
type Index[T any] struct {
	keys   []Key
	tokens []TokenSet
	items  []T
	pos    map[Key]int
}

// NewIndex returns an empty index.
func NewIndex[T any]() *Index[T] {
	return &Index[T]{pos: make(map[Key]int)}
}

// Insert adds an item under a normalized key. Empty keys are ignored and
// a key already present keeps its first item.
func (ix *Index[T]) Insert(key Key, item T) {
	if key == "" {
		return
	}
	if _, exists := ix.pos[key]; exists {
		return
	}
	ix.pos[key] = len(ix.keys)
	ix.keys = append(ix.keys, key)
	ix.tokens = append(ix.tokens, Tokenize(key))
	ix.items = append(ix.items, item)
}

// Len reports the number of indexed items.
func (ix *Index[T]) Len() int { return len(ix.keys) }

// Get looks up a key without any fuzzy fallback.
func (ix *Index[T]) Get(key Key) (T, bool) {
	if i, ok := ix.pos[key]; ok {
		return ix.items[i], true
	}
	var zero T
	return zero, false
}

// Keys returns the indexed keys in insertion order. The slice is shared;
// callers must not modify it.
func (ix *Index[T]) Keys() []Key { return ix.keys }

// Tier identifies which cascade stage produced a match.
type Tier string

const (
	TierExact     Tier = "exact"
	TierSubstring Tier = "substring"
	TierToken     Tier = "token"
	TierNone      Tier = "none"
)

// Resolve finds the best item for a free-text query using the three-tier
// cascade: exact candidate hit, substring containment (token-free queries
// only), then token overlap with a minimum of two shared tokens. Returns
// false when no tier produces a match; empty queries and empty indexes
// never scan.
func (ix *Index[T]) Resolve(raw string, variants VariantFunc) (T, bool) {
	item, _, ok := ix.ResolveTier(raw, variants)
	return item, ok
}

// ResolveTier is Resolve with the matching tier reported alongside.
func (ix *Index[T]) ResolveTier(raw string, variants VariantFunc) (T, Tier, bool) {
	var zero T
	cands := Candidates(raw, variants)
	if len(cands) == 0 || ix.Len() == 0 {
		return zero, TierNone, false
	}

	for _, c := range cands {
		if i, ok := ix.pos[c]; ok {
			return ix.items[i], TierExact, true
		}
	}

	qTokens := Tokenize(cands[0])
	if len(qTokens) == 0 {
		// Degenerate queries (no digit or syllable run survives
		// tokenization) fall back to containment scanning.
		for i, key := range ix.keys {
			for _, c := range cands {
				if strings.Contains(string(key), string(c)) || strings.Contains(string(c), string(key)) {
					return ix.items[i], TierSubstring, true
				}
			}
		}
		return zero, TierNone, false
	}

	best := -1
	bestScore := 0
	for i := range ix.keys {
		score := qTokens.Overlap(ix.tokens[i])
		if score >= 2 && score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		return zero, TierNone, false
	}
	return ix.items[best], TierToken, true
}

// ResolveContainment finds an item by exact key, then containment of the
// query in a key, then of a key in the query, scanning in insertion order.
// Used for short labels like bus stop names where token overlap is too
// coarse.
func (ix *Index[T]) ResolveContainment(raw string) (T, bool) {
	var zero T
	target := Normalize(raw)
	if target == "" || ix.Len() == 0 {
		return zero, false
	}

	if i, ok := ix.pos[target]; ok {
		return ix.items[i], true
	}
	for i, key := range ix.keys {
		if strings.Contains(string(key), string(target)) {
			return ix.items[i], true
		}
	}
	for i, key := range ix.keys {
		if strings.Contains(string(target), string(key)) {
			return ix.items[i], true
		}
	}
	return zero, false
}
