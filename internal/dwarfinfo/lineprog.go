package dwarfinfo

import (
	"github.com/pkg/errors"
)

// Attribute forms that may appear in a DWARF 5 line table header.
const (
	formData2     = 0x05
	formData4     = 0x06
	formData8     = 0x07
	formString    = 0x08
	formBlock     = 0x09
	formData1     = 0x0b
	formStrp      = 0x0e
	formUdata     = 0x0f
	formStrx      = 0x1a
	formData16    = 0x1e
	formLineStrp  = 0x1f
	formStrx1     = 0x25
	formStrx2     = 0x26
	formStrx3     = 0x27
	formStrx4     = 0x28
	lnctPath      = 0x1
	lnctDirectory = 0x2
)

// lineString is a path component of a line table. ok is false when the
// string is encoded in a form this package does not resolve.
type lineString struct {
	s  string
	ok bool
}

type lineFile struct {
	name lineString
	dir  uint64
}

// lineTable is the directory and file name tables from a line-number
// program header. The program itself is never decoded.
type lineTable struct {
	version uint16
	dirs    []lineString
	files   []lineFile
}

// file looks up a file by the index used in DW_AT_decl_file: 1-based before
// DWARF 5, 0-based from DWARF 5 on.
func (t *lineTable) file(idx uint64) (lineFile, bool) {
	if t.version < 5 {
		if idx == 0 {
			return lineFile{}, false
		}
		idx--
	}
	if idx >= uint64(len(t.files)) {
		return lineFile{}, false
	}
	return t.files[idx], true
}

// dir looks up a directory. Before DWARF 5 directory 0 is the unit's
// compilation directory.
func (t *lineTable) dir(idx uint64) (lineString, bool) {
	if idx >= uint64(len(t.dirs)) {
		return lineString{}, false
	}
	return t.dirs[idx], true
}

// parseLineTable decodes the header of the line-number program at off in
// .debug_line.
func (d *Data) parseLineTable(off uint64, compDir lineString) (*lineTable, error) {
	if off >= uint64(len(d.line)) {
		return nil, errors.Wrapf(FormatError, "line program offset %#x out of range", off)
	}
	b := makeBuf("line", d.order, int(off), d.line[off:])

	is64 := false
	length := uint64(b.u32())
	if length == 0xffffffff {
		is64 = true
		length = b.u64()
	}
	if b.err != nil {
		return nil, b.err
	}
	if length > uint64(len(b.data)) {
		return nil, errors.Wrapf(FormatError, "line program at %#x: length %#x exceeds section", off, length)
	}
	b.data = b.data[:length]

	t := &lineTable{version: b.u16()}
	if b.err == nil && (t.version < 2 || t.version > 5) {
		return nil, errors.Wrapf(FormatError, "line program at %#x: unsupported version %d", off, t.version)
	}
	if t.version >= 5 {
		b.u8() // address_size
		b.u8() // segment_selector_size
	}
	headerLength := b.offset(is64)
	if b.err == nil && headerLength > uint64(len(b.data)) {
		return nil, errors.Wrapf(FormatError, "line program at %#x: header length %#x exceeds unit", off, headerLength)
	}
	b.data = b.data[:headerLength]

	b.u8() // minimum_instruction_length
	if t.version >= 4 {
		b.u8() // maximum_operations_per_instruction
	}
	b.u8() // default_is_stmt
	b.u8() // line_base
	b.u8() // line_range
	if opcodeBase := b.u8(); opcodeBase > 0 {
		b.skip(int(opcodeBase) - 1) // standard_opcode_lengths
	}

	var err error
	if t.version < 5 {
		t.readTables2(&b, compDir)
	} else {
		err = d.readTables5(&b, t, is64)
	}
	if err == nil {
		err = b.err
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "line program at %#x", off)
	}
	return t, nil
}

// readTables2 reads the include_directories and file_names sequences of a
// DWARF 2-4 header.
func (t *lineTable) readTables2(b *buf, compDir lineString) {
	t.dirs = []lineString{compDir}
	for b.err == nil {
		dir := b.cstring()
		if dir == "" {
			break
		}
		t.dirs = append(t.dirs, lineString{s: dir, ok: true})
	}
	for b.err == nil {
		name := b.cstring()
		if name == "" {
			break
		}
		f := lineFile{name: lineString{s: name, ok: true}, dir: b.uleb()}
		b.uleb() // mtime
		b.uleb() // length
		t.files = append(t.files, f)
	}
}

type entryFormat struct {
	contentType, form uint64
}

func (d *Data) readTables5(b *buf, t *lineTable, is64 bool) error {
	dirFormat := readEntryFormat(b)
	count, err := entryCount(b, dirFormat, "directory")
	if err != nil {
		return err
	}
	for i := uint64(0); i < count && b.err == nil; i++ {
		path, _, err := d.readEntry(b, dirFormat, is64)
		if err != nil {
			return err
		}
		t.dirs = append(t.dirs, path)
	}

	fileFormat := readEntryFormat(b)
	if count, err = entryCount(b, fileFormat, "file name"); err != nil {
		return err
	}
	for i := uint64(0); i < count && b.err == nil; i++ {
		path, dir, err := d.readEntry(b, fileFormat, is64)
		if err != nil {
			return err
		}
		t.files = append(t.files, lineFile{name: path, dir: dir})
	}
	return nil
}

// entryCount reads a directories_count or file_names_count. Every entry
// takes at least one byte, so a count the rest of the header cannot hold
// is malformed.
func entryCount(b *buf, format []entryFormat, what string) (uint64, error) {
	n := b.uleb()
	if b.err != nil {
		return 0, b.err
	}
	if n > 0 && len(format) == 0 {
		return 0, errors.Wrapf(FormatError, "%d %s entries with an empty entry format", n, what)
	}
	if n > uint64(len(b.data)) {
		return 0, errors.Wrapf(FormatError, "%s count %d exceeds header", what, n)
	}
	return n, nil
}

func readEntryFormat(b *buf) []entryFormat {
	n := int(b.u8())
	format := make([]entryFormat, 0, n)
	for i := 0; i < n && b.err == nil; i++ {
		format = append(format, entryFormat{contentType: b.uleb(), form: b.uleb()})
	}
	return format
}

// readEntry reads one directory or file entry, returning its path and
// directory index. Content types other than those two are skipped.
func (d *Data) readEntry(b *buf, format []entryFormat, is64 bool) (path lineString, dir uint64, err error) {
	for _, f := range format {
		var (
			str lineString
			num uint64
		)
		switch f.form {
		case formString:
			str = lineString{s: b.cstring(), ok: true}
		case formLineStrp, formStrp:
			off := b.offset(is64)
			if b.err != nil {
				break
			}
			section, data := "line_str", d.lineStr
			if f.form == formStrp {
				section, data = "str", d.str
			}
			if str.s, err = stringAt(section, data, off); err != nil {
				return
			}
			str.ok = true
		case formStrx, formUdata:
			num = b.uleb()
		case formStrx1, formData1:
			num = uint64(b.u8())
		case formStrx2, formData2:
			num = uint64(b.u16())
		case formStrx3:
			b.skip(3)
		case formStrx4, formData4:
			num = uint64(b.u32())
		case formData8:
			num = b.u64()
		case formData16:
			b.skip(16)
		case formBlock:
			b.skip(int(b.uleb()))
		default:
			return path, dir, errors.Wrapf(FormatError, "unsupported form %#x in line table entry", f.form)
		}

		switch f.contentType {
		case lnctPath:
			path = str
		case lnctDirectory:
			dir = num
		}
	}
	return path, dir, b.err
}
