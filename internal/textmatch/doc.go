// Package textmatch resolves free-text location strings (addresses, photo
// filenames, bus stop names) against indexed records when the sources were
// never designed to join.
//
// # Normalization
//
// Every comparison runs over normalized keys: text is NFC-composed,
// lowercased, and stripped of every rune outside digits, ASCII letters, and
// Korean syllables. Upstream CSVs mix precomposed and combining jamo for
// the same place name, so canonical composition has to happen before any
// rune filtering. Normalize is total and idempotent; empty or garbage input
// yields the empty key.
//
// # Match Cascade
//
// Resolve tries three tiers in fixed order and stops at the first hit:
//
//  1. Exact: any candidate key (the query plus its region-stripped
//     variants) present in the index.
//  2. Substring: only when the query yields no tokens at all, containment
//     in either direction against index keys in insertion order.
//  3. Token overlap: at least two shared tokens, highest count wins,
//     earlier insertion wins ties.
//
// The two-token floor is deliberate. Shared single tokens are almost always
// generic road/place words and produced false joins between unrelated
// records in the source data.
//
// # Region Variants
//
// Address fields disagree on administrative prefixes: the same place
// appears as "경상북도 울릉군 ..." in one file, "울릉군 ..." in another,
// and bare in photo filenames. RegionVariants generates the stripped
// spellings so the exact tier can hit before any fuzzy scoring is needed.
package textmatch
