// Package dwarftest builds small DWARF 4 and 5 sections for tests: units
// with entry trees, a shared abbreviation table, string tables and the
// header of each unit's line-number program.
package dwarftest

import (
	"bytes"
	"debug/dwarf"
	"encoding/binary"
	"fmt"

	"github.com/go-delve/delve/pkg/dwarf/leb128"
)

type Form uint16

const (
	FormData2       Form = 0x05
	FormData4       Form = 0x06
	FormString      Form = 0x08
	FormData1       Form = 0x0b
	FormSdata       Form = 0x0d
	FormStrp        Form = 0x0e
	FormUdata       Form = 0x0f
	FormIndirect    Form = 0x16
	FormSecOffset   Form = 0x17
	FormFlagPresent Form = 0x19
	FormLineStrp    Form = 0x1f
)

// Attr is an attribute value. Val is a string for string forms, uint64 for
// unsigned forms, int64 for FormSdata and an Indirect for FormIndirect.
type Attr struct {
	Attr dwarf.Attr
	Form Form
	Val  interface{}
}

// Indirect is the value of a FormIndirect attribute: the real form is
// written into the entry ahead of the value.
type Indirect struct {
	Form Form
	Val  interface{}
}

type Entry struct {
	Tag      dwarf.Tag
	Attrs    []Attr
	Children []*Entry
}

type File struct {
	Name string
	Dir  uint64
}

type Unit struct {
	// Version is 4 or 5, 0 means 4.
	Version int
	Name    string
	CompDir string
	// Dirs and Files make up the line table. Before DWARF 5 they are the
	// include_directories and file_names sequences (indices from 1).
	Dirs        []string
	Files       []File
	NoLineTable bool
	// InlinePaths encodes DWARF 5 line table paths as DW_FORM_string
	// instead of DW_FORM_line_strp.
	InlinePaths bool
	// Unterminated drops the null entry closing the root's children.
	Unterminated bool
	Children     []*Entry
}

// Subprogram returns a DW_TAG_subprogram entry. Zero line or column values
// are still emitted; use Without to drop an attribute.
func Subprogram(name string, file, line, column uint64) *Entry {
	return &Entry{
		Tag: dwarf.TagSubprogram,
		Attrs: []Attr{
			{dwarf.AttrName, FormStrp, name},
			{dwarf.AttrDeclFile, FormData1, file},
			{dwarf.AttrDeclLine, FormUdata, line},
			{dwarf.AttrDeclColumn, FormData1, column},
		},
	}
}

// Without removes attr from e and returns e.
func (e *Entry) Without(attr dwarf.Attr) *Entry {
	attrs := e.Attrs[:0]
	for _, a := range e.Attrs {
		if a.Attr != attr {
			attrs = append(attrs, a)
		}
	}
	e.Attrs = attrs
	return e
}

// With replaces (or adds) attr on e and returns e.
func (e *Entry) With(attr dwarf.Attr, form Form, val interface{}) *Entry {
	e.Without(attr)
	e.Attrs = append(e.Attrs, Attr{attr, form, val})
	return e
}

type abbrev struct {
	code     uint64
	tag      dwarf.Tag
	children bool
	attrs    []Attr
}

type builder struct {
	info, line bytes.Buffer
	str        strtab
	lineStr    strtab
	abbrevs    []*abbrev
	byKey      map[string]*abbrev
}

type strtab struct {
	buf bytes.Buffer
	off map[string]uint32
}

func (t *strtab) add(s string) uint32 {
	if t.off == nil {
		t.off = map[string]uint32{}
	}
	if off, ok := t.off[s]; ok {
		return off
	}
	off := uint32(t.buf.Len())
	t.buf.WriteString(s)
	t.buf.WriteByte(0)
	t.off[s] = off
	return off
}

// Build encodes units into a fresh set of sections.
func Build(units ...*Unit) *Sections {
	b := &builder{byKey: map[string]*abbrev{}}
	for _, u := range units {
		b.unit(u)
	}
	s := &Sections{m: map[string][]byte{
		"info":     b.info.Bytes(),
		"abbrev":   b.abbrevTable(),
		"str":      b.str.buf.Bytes(),
		"line":     b.line.Bytes(),
		"line_str": b.lineStr.buf.Bytes(),
	}}
	return s
}

func (b *builder) unit(u *Unit) {
	version := u.Version
	if version == 0 {
		version = 4
	}
	start := b.info.Len()
	b.u32(&b.info, 0) // unit_length
	b.u16(&b.info, uint16(version))
	if version >= 5 {
		b.info.WriteByte(0x01) // DW_UT_compile
		b.info.WriteByte(8)
		b.u32(&b.info, 0) // debug_abbrev_offset
	} else {
		b.u32(&b.info, 0)
		b.info.WriteByte(8)
	}

	root := &Entry{Tag: dwarf.TagCompileUnit, Children: u.Children}
	if u.Name != "" {
		root.Attrs = append(root.Attrs, Attr{dwarf.AttrName, FormStrp, u.Name})
	}
	if u.CompDir != "" {
		root.Attrs = append(root.Attrs, Attr{dwarf.AttrCompDir, FormStrp, u.CompDir})
	}
	if !u.NoLineTable {
		off := b.lineTable(u, version)
		root.Attrs = append(root.Attrs, Attr{dwarf.AttrStmtList, FormSecOffset, uint64(off)})
	}
	b.entry(root, true, !u.Unterminated)

	binary.LittleEndian.PutUint32(b.info.Bytes()[start:], uint32(b.info.Len()-start-4))
}

func (b *builder) entry(e *Entry, children, terminate bool) {
	children = children || len(e.Children) > 0
	leb128.EncodeUnsigned(&b.info, b.abbrevFor(e, children))
	for _, a := range e.Attrs {
		b.value(a)
	}
	for _, c := range e.Children {
		b.entry(c, false, true)
	}
	if children && terminate {
		b.info.WriteByte(0)
	}
}

func (b *builder) value(a Attr) {
	switch a.Form {
	case FormString:
		b.info.WriteString(a.Val.(string))
		b.info.WriteByte(0)
	case FormStrp:
		b.u32(&b.info, b.str.add(a.Val.(string)))
	case FormLineStrp:
		b.u32(&b.info, b.lineStr.add(a.Val.(string)))
	case FormData1:
		b.info.WriteByte(uint8(a.Val.(uint64)))
	case FormData2:
		b.u16(&b.info, uint16(a.Val.(uint64)))
	case FormData4, FormSecOffset:
		b.u32(&b.info, uint32(a.Val.(uint64)))
	case FormUdata:
		leb128.EncodeUnsigned(&b.info, a.Val.(uint64))
	case FormSdata:
		leb128.EncodeSigned(&b.info, a.Val.(int64))
	case FormIndirect:
		v := a.Val.(Indirect)
		leb128.EncodeUnsigned(&b.info, uint64(v.Form))
		b.value(Attr{a.Attr, v.Form, v.Val})
	case FormFlagPresent:
	default:
		panic(fmt.Sprintf("dwarftest: unsupported form %#x", a.Form))
	}
}

func (b *builder) abbrevFor(e *Entry, children bool) uint64 {
	key := fmt.Sprint(e.Tag, children)
	for _, a := range e.Attrs {
		key += fmt.Sprintf(" %d/%d", a.Attr, a.Form)
	}
	if a, ok := b.byKey[key]; ok {
		return a.code
	}
	a := &abbrev{code: uint64(len(b.abbrevs) + 1), tag: e.Tag, children: children, attrs: e.Attrs}
	b.abbrevs = append(b.abbrevs, a)
	b.byKey[key] = a
	return a.code
}

func (b *builder) abbrevTable() []byte {
	var buf bytes.Buffer
	for _, a := range b.abbrevs {
		leb128.EncodeUnsigned(&buf, a.code)
		leb128.EncodeUnsigned(&buf, uint64(a.tag))
		if a.children {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		for _, attr := range a.attrs {
			leb128.EncodeUnsigned(&buf, uint64(attr.Attr))
			leb128.EncodeUnsigned(&buf, uint64(attr.Form))
		}
		buf.Write([]byte{0, 0})
	}
	buf.WriteByte(0)
	return buf.Bytes()
}

// lineTable writes the header of a line-number program with an empty
// opcode stream and returns its offset in .debug_line.
func (b *builder) lineTable(u *Unit, version int) int {
	l := &b.line
	start := l.Len()
	b.u32(l, 0) // unit_length
	b.u16(l, uint16(version))
	if version >= 5 {
		l.WriteByte(8) // address_size
		l.WriteByte(0) // segment_selector_size
	}
	lengthAt := l.Len()
	b.u32(l, 0) // header_length
	l.Write([]byte{
		1,    // minimum_instruction_length
		1,    // maximum_operations_per_instruction
		1,    // default_is_stmt
		0xfb, // line_base -5
		14,   // line_range
		13,   // opcode_base
	})
	l.Write([]byte{0, 1, 1, 1, 1, 0, 0, 0, 1, 0, 0, 1})

	if version >= 5 {
		pathForm := uint64(FormLineStrp)
		if u.InlinePaths {
			pathForm = uint64(FormString)
		}
		l.WriteByte(1)
		leb128.EncodeUnsigned(l, 0x1) // DW_LNCT_path
		leb128.EncodeUnsigned(l, pathForm)
		leb128.EncodeUnsigned(l, uint64(len(u.Dirs)))
		for _, d := range u.Dirs {
			b.linePath(u, d)
		}
		l.WriteByte(2)
		leb128.EncodeUnsigned(l, 0x1) // DW_LNCT_path
		leb128.EncodeUnsigned(l, pathForm)
		leb128.EncodeUnsigned(l, 0x2) // DW_LNCT_directory_index
		leb128.EncodeUnsigned(l, uint64(FormUdata))
		leb128.EncodeUnsigned(l, uint64(len(u.Files)))
		for _, f := range u.Files {
			b.linePath(u, f.Name)
			leb128.EncodeUnsigned(l, f.Dir)
		}
	} else {
		for _, d := range u.Dirs {
			l.WriteString(d)
			l.WriteByte(0)
		}
		l.WriteByte(0)
		for _, f := range u.Files {
			l.WriteString(f.Name)
			l.WriteByte(0)
			leb128.EncodeUnsigned(l, f.Dir)
			leb128.EncodeUnsigned(l, 0) // mtime
			leb128.EncodeUnsigned(l, 0) // length
		}
		l.WriteByte(0)
	}

	binary.LittleEndian.PutUint32(l.Bytes()[lengthAt:], uint32(l.Len()-lengthAt-4))
	binary.LittleEndian.PutUint32(l.Bytes()[start:], uint32(l.Len()-start-4))
	return start
}

func (b *builder) linePath(u *Unit, s string) {
	if u.InlinePaths {
		b.line.WriteString(s)
		b.line.WriteByte(0)
		return
	}
	b.u32(&b.line, b.lineStr.add(s))
}

func (b *builder) u16(buf *bytes.Buffer, v uint16) {
	var p [2]byte
	binary.LittleEndian.PutUint16(p[:], v)
	buf.Write(p[:])
}

func (b *builder) u32(buf *bytes.Buffer, v uint32) {
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], v)
	buf.Write(p[:])
}

// Sections implements dwarfinfo.Sections over built or hand-edited data.
type Sections struct {
	m map[string][]byte
}

func (s *Sections) Section(name string) ([]byte, bool) {
	data, ok := s.m[name]
	return data, ok
}

func (s *Sections) ByteOrder() binary.ByteOrder {
	return binary.LittleEndian
}

func (s *Sections) Set(name string, data []byte) *Sections {
	s.m[name] = data
	return s
}

func (s *Sections) Delete(name string) *Sections {
	delete(s.m, name)
	return s
}
