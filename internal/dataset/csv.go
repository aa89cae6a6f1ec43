package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

// table is a header-indexed view over one CSV file.
type table struct {
	header []string
	rows   [][]string
	index  map[string]int
}

// readTable reads a CSV file, trying UTF-8 first and falling back to
// EUC-KR/CP949 for legacy municipal exports. A missing file yields an
// empty table.
func readTable(path string) (*table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &table{index: map[string]int{}}, nil
		}
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}

	r := csv.NewReader(bytes.NewReader(decodeCSV(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return &table{index: map[string]int{}}, nil
	}

	t := &table{rows: records[1:]}
	t.setHeader(records[0], false)
	return t, nil
}

func decodeCSV(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data
	}
	decoded, err := korean.EUCKR.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

// setHeader installs column names. With squash, all whitespace inside a
// name is removed instead of just trimmed; the enforcement exports wrap
// header cells across lines.
func (t *table) setHeader(names []string, squash bool) {
	t.header = make([]string, len(names))
	t.index = make(map[string]int, len(names))
	for i, name := range names {
		name = strings.TrimPrefix(name, "\uFEFF")
		if squash {
			name = stripSpace(name)
		} else {
			name = strings.TrimSpace(name)
		}
		t.header[i] = name
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
}

func (t *table) squashHeader() { t.setHeader(t.header, true) }

func (t *table) empty() bool { return len(t.rows) == 0 }

// col returns the index of the first present column name, or -1.
func (t *table) col(names ...string) int {
	for _, n := range names {
		if i, ok := t.index[n]; ok {
			return i
		}
	}
	return -1
}

// colContaining returns the first column whose name contains every
// substring, or -1.
func (t *table) colContaining(substrs ...string) int {
	for i, h := range t.header {
		all := true
		for _, sub := range substrs {
			if !strings.Contains(h, sub) {
				all = false
				break
			}
		}
		if all {
			return i
		}
	}
	return -1
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// get returns the trimmed cell at idx. Out-of-range indexes and the
// literal nan/none placeholders left behind by pandas exports come back
// empty.
func get(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	s := strings.TrimSpace(row[idx])
	if strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return ""
	}
	return s
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseCount reads an integer that may carry thousands separators or a
// stray decimal tail.
func parseCount(s string) (int, bool) {
	f, ok := parseFloat(strings.ReplaceAll(s, ",", ""))
	if !ok {
		return 0, false
	}
	return int(f), true
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-1-2",
}

// parseDate normalizes the separator soup of the exports (2025.07.14,
// 2025/07/14, 2025-07-14) before trying the usual layouts. Times are
// read as UTC.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// day truncates a timestamp to midnight UTC.
func day(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
