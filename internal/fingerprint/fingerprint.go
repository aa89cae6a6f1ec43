// Package fingerprint derives change-detection tokens from file metadata.
//
// A token is the sha256 hex digest of the sorted (name, mtime, size)
// tuples of the files it covers. Only stat metadata is hashed, never file
// contents, so computing a token before every snapshot refresh is cheap.
// File names are NFC-normalized first; macOS volumes hand out decomposed
// Hangul names that would otherwise never compare equal to configured
// patterns.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type entry struct {
	name  string
	mtime int64
	size  int64
}

// Dir fingerprints the regular files directly under dir whose
// NFC-normalized name satisfies match. A nil match accepts every file.
// A missing or empty directory yields the stable empty token rather than
// an error, so callers can fingerprint directories that appear later.
func Dir(dir string, match func(name string) bool) (string, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return digest(nil), nil
		}
		return "", fmt.Errorf("fingerprint dir %s: %w", dir, err)
	}

	var items []entry
	for _, de := range dirents {
		if !de.Type().IsRegular() {
			continue
		}
		name := norm.NFC.String(de.Name())
		if match != nil && !match(name) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Raced with a delete; the next refresh will see the new state.
			continue
		}
		items = append(items, entry{name: name, mtime: info.ModTime().Unix(), size: info.Size()})
	}
	return digest(items), nil
}

// Files fingerprints an explicit list of paths. Missing paths are
// skipped, so the token still changes when one of them appears.
func Files(paths ...string) string {
	var items []entry
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		items = append(items, entry{
			name:  norm.NFC.String(filepath.Base(p)),
			mtime: info.ModTime().Unix(),
			size:  info.Size(),
		})
	}
	return digest(items)
}

// Combine folds several tokens into one, preserving order.
func Combine(tokens ...string) string {
	h := sha256.New()
	for _, t := range tokens {
		h.Write([]byte(t))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func digest(items []entry) string {
	sort.Slice(items, func(i, j int) bool {
		if items[i].name != items[j].name {
			return items[i].name < items[j].name
		}
		return items[i].mtime < items[j].mtime
	})

	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%s|%d|%d\n", it.name, it.mtime, it.size)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
