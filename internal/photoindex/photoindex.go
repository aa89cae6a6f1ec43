// Package photoindex maps on-disk photo collections to resolvable text
// indexes.
//
// Field teams drop accident and rockfall photos into flat directories,
// named after the cleaned-up address of the site ("태하리 123.jpg").
// Scan turns such a directory into a textmatch index keyed by the
// normalized file stem, so lookups tolerate the usual spacing,
// punctuation, and region-prefix differences between the photo name and
// the address recorded in a CSV.
package photoindex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ulleunglab/transport-dashboard/internal/fingerprint"
	"github.com/ulleunglab/transport-dashboard/internal/textmatch"
)

var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// IsImage reports whether name carries a servable photo extension.
func IsImage(name string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Scan indexes the photos directly under dir. Keys are normalized file
// stems, values are full paths. Entries arrive in sorted name order (the
// os.ReadDir contract) and the first stem wins, so duplicate stems
// resolve the same way on every scan. A missing directory yields an
// empty index.
func Scan(dir string) (*textmatch.Index[string], error) {
	idx := textmatch.NewIndex[string]()

	dirents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("scan photo dir %s: %w", dir, err)
	}

	for _, de := range dirents {
		if !de.Type().IsRegular() || !IsImage(de.Name()) {
			continue
		}
		stem := strings.TrimSuffix(de.Name(), filepath.Ext(de.Name()))
		idx.Insert(textmatch.Normalize(stem), filepath.Join(dir, de.Name()))
	}
	return idx, nil
}

// FindByAddress resolves a recorded address against the index with
// region-variant expansion. Accident photos are usually named without
// the 경상북도/울릉군 prefixes that accident CSVs carry.
func FindByAddress(idx *textmatch.Index[string], address string) (string, bool) {
	return idx.Resolve(address, textmatch.RegionVariants)
}

// Find resolves a bare label without variant expansion. Rockfall photos
// are keyed by whatever the reporting officer typed, so only the plain
// cascade applies.
func Find(idx *textmatch.Index[string], label string) (string, bool) {
	return idx.Resolve(label, nil)
}

// Cached memoizes Scan behind a directory fingerprint. Index rescans the
// directory only when a photo was added, removed, or replaced.
type Cached struct {
	dir string

	mu    sync.Mutex
	token string
	idx   *textmatch.Index[string]
}

// NewCached wraps dir. The first Index call performs the initial scan.
func NewCached(dir string) *Cached {
	return &Cached{dir: dir}
}

// Dir returns the directory this cache watches.
func (c *Cached) Dir() string { return c.dir }

// Index returns the current photo index, rescanning only when the
// directory fingerprint changed since the previous call.
func (c *Cached) Index() (*textmatch.Index[string], error) {
	token, err := fingerprint.Dir(c.dir, IsImage)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idx != nil && token == c.token {
		return c.idx, nil
	}

	idx, err := Scan(c.dir)
	if err != nil {
		return nil, err
	}
	c.token = token
	c.idx = idx
	return idx, nil
}
