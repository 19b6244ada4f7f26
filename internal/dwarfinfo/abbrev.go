package dwarfinfo

import (
	"debug/dwarf"

	"github.com/pkg/errors"
)

// Attribute forms of .debug_info not already listed for line tables.
const (
	formAddr          = 0x01
	formBlock2        = 0x03
	formBlock4        = 0x04
	formBlock1        = 0x0a
	formFlag          = 0x0c
	formSdata         = 0x0d
	formRefAddr       = 0x10
	formRef1          = 0x11
	formRef2          = 0x12
	formRef4          = 0x13
	formRef8          = 0x14
	formRefUdata      = 0x15
	formIndirect      = 0x16
	formSecOffset     = 0x17
	formExprloc       = 0x18
	formFlagPresent   = 0x19
	formAddrx         = 0x1b
	formRefSup4       = 0x1c
	formStrpSup       = 0x1d
	formRefSig8       = 0x20
	formImplicitConst = 0x21
	formLoclistx      = 0x22
	formRnglistx      = 0x23
	formRefSup8       = 0x24
	formAddrx1        = 0x29
	formAddrx2        = 0x2a
	formAddrx3        = 0x2b
	formAddrx4        = 0x2c
	formGNUAddrIndex  = 0x1f01
	formGNUStrIndex   = 0x1f02
	formGNURefAlt     = 0x1f20
	formGNUStrpAlt    = 0x1f21
)

type abbrevAttr struct {
	attr dwarf.Attr
	form uint64
}

// abbrevTable maps abbreviation codes to their attribute specifications.
type abbrevTable map[uint64][]abbrevAttr

// abbrevsAt decodes the abbreviation table at off in .debug_abbrev. Tables
// are shared between units and decoded once.
func (d *Data) abbrevsAt(off uint64) (abbrevTable, error) {
	if t, ok := d.abbrevs[off]; ok {
		return t, nil
	}
	if off >= uint64(len(d.abbrev)) {
		return nil, errors.Wrapf(FormatError, "abbreviation table offset %#x out of range", off)
	}
	b := makeBuf("abbrev", d.order, int(off), d.abbrev[off:])
	t := abbrevTable{}
	for b.err == nil {
		code := b.uleb()
		if code == 0 {
			break
		}
		b.uleb() // tag
		b.u8()   // has_children
		var attrs []abbrevAttr
		for b.err == nil {
			attr, form := b.uleb(), b.uleb()
			if attr == 0 && form == 0 {
				break
			}
			if form == formImplicitConst {
				b.uleb() // SLEB128 value, same byte length
			}
			attrs = append(attrs, abbrevAttr{attr: dwarf.Attr(attr), form: form})
		}
		t[code] = attrs
	}
	if b.err != nil {
		return nil, errors.WithMessagef(b.err, "abbreviation table at %#x", off)
	}
	d.abbrevs[off] = t
	return t, nil
}

// entryForms returns the form of every attribute of the entry at off, in the
// order debug/dwarf reports the entry's fields. Indirect forms are resolved
// to the form stored in the entry.
func (d *Data) entryForms(u *Unit, off dwarf.Offset) ([]uint64, error) {
	t, err := d.abbrevsAt(u.AbbrevOffset)
	if err != nil {
		return nil, err
	}
	if off < u.EntryOffset || off >= u.End {
		return nil, errors.Wrapf(FormatError, "entry at %#x outside unit at %#x", off, u.Offset)
	}
	b := makeBuf("info", d.order, int(off), d.info[off:u.End])
	code := b.uleb()
	if b.err != nil {
		return nil, b.err
	}
	attrs, ok := t[code]
	if !ok {
		return nil, errors.Wrapf(FormatError, "entry at %#x: unknown abbreviation code %d", off, code)
	}

	forms := make([]uint64, len(attrs))
	indirect := false
	for i, a := range attrs {
		forms[i] = a.form
		indirect = indirect || a.form == formIndirect
	}
	if !indirect {
		return forms, nil
	}
	for i := range forms {
		for forms[i] == formIndirect && b.err == nil {
			forms[i] = b.uleb()
		}
		b.skipValue(forms[i], u)
	}
	if b.err != nil {
		return nil, errors.WithMessagef(b.err, "entry at %#x", off)
	}
	return forms, nil
}
