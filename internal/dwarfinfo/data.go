// Package dwarfinfo walks the DWARF debug information of an object file and
// resolves the declaration site of every function it defines.
package dwarfinfo

import (
	"debug/dwarf"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Sections provides raw debug sections by short name ("info", "abbrev",
// "line", ...). A false result means the section is absent.
type Sections interface {
	Section(name string) ([]byte, bool)
	ByteOrder() binary.ByteOrder
}

// Data is the loaded debug information of one object.
type Data struct {
	dwarfData *dwarf.Data
	order     binary.ByteOrder

	info    []byte
	abbrev  []byte
	str     []byte
	line    []byte
	lineStr []byte
	hasLine bool

	abbrevs map[uint64]abbrevTable
}

// extra sections understood by debug/dwarf beyond those taken by dwarf.New.
var extraSections = []string{"addr", "line_str", "str_offsets", "rnglists"}

func Load(s Sections) (_ *Data, err error) {
	d := &Data{order: s.ByteOrder(), abbrevs: map[uint64]abbrevTable{}}
	if d.order == nil {
		d.order = binary.LittleEndian
	}
	info, ok := s.Section("info")
	if !ok {
		return d, nil
	}
	abbrev, ok := s.Section("abbrev")
	if !ok {
		return nil, errors.WithMessage(FormatError, ".debug_info present without .debug_abbrev")
	}
	d.info, d.abbrev = info, abbrev
	d.str, _ = s.Section("str")
	d.line, d.hasLine = s.Section("line")
	d.lineStr, _ = s.Section("line_str")
	ranges, _ := s.Section("ranges")

	if len(info) == 0 {
		return d, nil
	}
	if d.dwarfData, err = dwarf.New(abbrev, nil, nil, info, d.line, nil, ranges, d.str); err != nil {
		return nil, errors.Wrapf(FormatError, "%v", err)
	}
	for _, name := range extraSections {
		data, ok := s.Section(name)
		if !ok {
			continue
		}
		if err = d.dwarfData.AddSection(".debug_"+name, data); err != nil {
			return nil, errors.Wrapf(FormatError, "add .debug_%s: %v", name, err)
		}
	}
	return d, nil
}

// Units returns an iterator over the units of .debug_info. It yields
// nothing when the object carries no debug information.
func (d *Data) Units() *UnitIterator {
	return NewUnitIterator(d.info, d.order)
}
