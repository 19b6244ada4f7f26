package dwarfinfo

import (
	"debug/dwarf"
	"encoding/binary"

	"github.com/pkg/errors"
)

// DWARF 5 unit types (DWARF v5 section 7.5.1).
const (
	utCompile      = 0x01
	utType         = 0x02
	utPartial      = 0x03
	utSkeleton     = 0x04
	utSplitCompile = 0x05
	utSplitType    = 0x06
)

// Unit is the header of one unit in .debug_info.
type Unit struct {
	Offset       dwarf.Offset
	Version      uint16
	Type         uint8
	Is64         bool
	AddrSize     uint8
	AbbrevOffset uint64
	// EntryOffset is the offset of the unit's root entry.
	EntryOffset dwarf.Offset
	// End is the offset of the first byte past the unit.
	End dwarf.Offset
}

// UnitIterator walks the unit headers of a .debug_info section in order.
// It is not restartable.
type UnitIterator struct {
	data  []byte
	order binary.ByteOrder
	off   int
	err   error
}

func NewUnitIterator(info []byte, order binary.ByteOrder) *UnitIterator {
	return &UnitIterator{data: info, order: order}
}

// Next returns the next unit header, or nil at the end of the section.
func (it *UnitIterator) Next() (*Unit, error) {
	if it.err != nil {
		return nil, it.err
	}
	if it.off >= len(it.data) {
		return nil, nil
	}
	u, err := it.parseHeader()
	if err != nil {
		it.err = err
		return nil, err
	}
	it.off = int(u.End)
	return u, nil
}

func (it *UnitIterator) parseHeader() (*Unit, error) {
	b := makeBuf("info", it.order, it.off, it.data[it.off:])
	u := &Unit{Offset: dwarf.Offset(it.off)}

	length := uint64(b.u32())
	if length == 0xffffffff {
		u.Is64 = true
		length = b.u64()
	} else if length >= 0xfffffff0 {
		return nil, errors.Wrapf(FormatError, "unit at %#x: reserved unit length %#x", it.off, length)
	}
	if b.err != nil {
		return nil, b.err
	}
	if length > uint64(len(b.data)) {
		return nil, errors.Wrapf(FormatError, "unit at %#x: length %#x exceeds section", it.off, length)
	}
	u.End = dwarf.Offset(b.off) + dwarf.Offset(length)
	b.data = b.data[:length]

	u.Version = b.u16()
	if b.err == nil && (u.Version < 2 || u.Version > 5) {
		return nil, errors.Wrapf(FormatError, "unit at %#x: unsupported version %d", it.off, u.Version)
	}
	if u.Version >= 5 {
		u.Type = b.u8()
		u.AddrSize = b.u8()
		u.AbbrevOffset = b.offset(u.Is64)
		switch u.Type {
		case utCompile, utPartial:
		case utSkeleton, utSplitCompile:
			b.skip(8) // dwo_id
		case utType, utSplitType:
			b.skip(8) // type_signature
			b.offset(u.Is64)
		default:
			if b.err == nil {
				return nil, errors.Wrapf(FormatError, "unit at %#x: unknown unit type %#x", it.off, u.Type)
			}
		}
	} else {
		u.Type = utCompile
		u.AbbrevOffset = b.offset(u.Is64)
		u.AddrSize = b.u8()
	}
	if b.err != nil {
		return nil, errors.WithMessagef(b.err, "unit at %#x: truncated header", it.off)
	}
	u.EntryOffset = dwarf.Offset(b.off)
	return u, nil
}
