package dwarfinfo

import "errors"

var (
	// FormatError reports debug information that cannot be decoded. It is
	// never returned for entries that merely lack the attributes a function
	// record needs.
	FormatError = errors.New("malformed DWARF")
)
