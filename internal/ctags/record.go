// Package ctags holds function records and writes them as a sorted
// extended-format tags file.
package ctags

import (
	"sort"
	"strings"
)

// Record is one function declaration site.
type Record struct {
	Name   string
	File   string
	Line   uint64
	Column uint64
}

// Compare orders records by name, then file, line and column.
func Compare(a, b Record) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := strings.Compare(a.File, b.File); c != 0 {
		return c
	}
	switch {
	case a.Line < b.Line:
		return -1
	case a.Line > b.Line:
		return 1
	case a.Column < b.Column:
		return -1
	case a.Column > b.Column:
		return 1
	}
	return 0
}

func (r Record) Less(o Record) bool {
	return Compare(r, o) < 0
}

// SortUnique sorts records in place and drops exact duplicates, returning
// the shortened slice.
func SortUnique(records []Record) []Record {
	sort.Slice(records, func(i, j int) bool { return records[i].Less(records[j]) })
	if len(records) == 0 {
		return records
	}
	n := 1
	for _, r := range records[1:] {
		if r != records[n-1] {
			records[n] = r
			n++
		}
	}
	return records[:n]
}
