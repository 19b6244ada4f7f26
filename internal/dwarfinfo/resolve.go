package dwarfinfo

import (
	"debug/dwarf"

	"github.com/pkg/errors"
)

// Function is the declaration site of a function definition.
type Function struct {
	Name   string
	File   string
	Line   uint64
	Column uint64
}

// Fields records which parts of a Function were resolved.
type Fields uint8

const (
	NameField Fields = 1 << iota
	FileField
	LineField
	ColumnField

	AllFields = NameField | FileField | LineField | ColumnField
)

func (f Fields) Missing() (missing []string) {
	for _, x := range []struct {
		field Fields
		name  string
	}{
		{NameField, "name"},
		{FileField, "file"},
		{LineField, "line"},
		{ColumnField, "column"},
	} {
		if f&x.field == 0 {
			missing = append(missing, x.name)
		}
	}
	return
}

// Resolver resolves the functions of one unit. It loads the unit's line
// table on first use.
type Resolver struct {
	data *Data
	unit *Unit

	name        lineString
	compDir     lineString
	stmtList    uint64
	hasStmtList bool

	lines       *lineTable
	linesLoaded bool
	paths       map[uint64]filePath
}

type filePath struct {
	path string
	ok   bool
}

// NewResolver prepares resolution for u, whose root entry is root. root may
// be nil for a unit without entries.
func (d *Data) NewResolver(u *Unit, root *dwarf.Entry) *Resolver {
	r := &Resolver{data: d, unit: u, paths: map[uint64]filePath{}}
	if root == nil {
		return r
	}
	if s, ok := root.Val(dwarf.AttrName).(string); ok {
		r.name = lineString{s: s, ok: true}
	}
	if s, ok := root.Val(dwarf.AttrCompDir).(string); ok {
		r.compDir = lineString{s: s, ok: true}
	}
	if off, ok := root.Val(dwarf.AttrStmtList).(int64); ok && off >= 0 {
		r.stmtList, r.hasStmtList = uint64(off), true
	}
	return r
}

// ModuleFile is the decl_file index naming the unit's own source file.
func (r *Resolver) ModuleFile() uint64 {
	if r.unit.Version >= 5 {
		return 0
	}
	return 1
}

// Function resolves the name, declaring file, line and column of a
// subprogram entry. Attributes whose value has an unexpected kind are
// ignored, and so is a name stored inline rather than in a string section.
// The returned Fields tell which parts were found; only a result with
// AllFields describes a complete record. Errors are reserved for
// structurally invalid entries and line tables.
func (r *Resolver) Function(e *dwarf.Entry) (fn Function, got Fields, err error) {
	forms, err := r.data.entryForms(r.unit, e.Offset)
	if err != nil {
		return Function{}, 0, err
	}
	if len(forms) != len(e.Field) {
		return Function{}, 0, errors.Wrapf(FormatError, "entry at %#x: %d fields for %d attribute forms", e.Offset, len(e.Field), len(forms))
	}
	for i := range e.Field {
		a := attributeOf(&e.Field[i], forms[i])
		switch a.Name {
		case dwarf.AttrName:
			if a.Kind == StringRefValue {
				fn.Name = a.Str
				got |= NameField
			}
		case dwarf.AttrDeclFile:
			if a.Kind != FileIndexValue {
				continue
			}
			path, ok, err := r.FilePath(a.Num)
			if err != nil {
				return Function{}, 0, err
			}
			if ok {
				fn.File = path
				got |= FileField
			}
		case dwarf.AttrDeclLine:
			if a.Kind == UnsignedValue {
				fn.Line = a.Num
				got |= LineField
			}
		case dwarf.AttrDeclColumn:
			if a.Kind == UnsignedValue {
				fn.Column = a.Num
				got |= ColumnField
			}
		}
	}
	return fn, got, nil
}

// FilePath turns a decl_file index into a path. The module file resolves
// to the unit's name; any other index goes through the line table's file
// and directory entries.
func (r *Resolver) FilePath(idx uint64) (string, bool, error) {
	if idx == r.ModuleFile() {
		return r.name.s, r.name.ok, nil
	}
	if p, ok := r.paths[idx]; ok {
		return p.path, p.ok, nil
	}

	t, err := r.lineTable()
	if err != nil || t == nil {
		return "", false, err
	}
	var p filePath
	if f, ok := t.file(idx); ok && f.name.ok {
		if dir, ok := t.dir(f.dir); ok && dir.ok {
			p = filePath{path: joinPath(dir.s, f.name.s), ok: true}
		}
	}
	r.paths[idx] = p
	return p.path, p.ok, nil
}

// lineTable returns nil without error when the unit has no line table.
func (r *Resolver) lineTable() (*lineTable, error) {
	if r.linesLoaded {
		return r.lines, nil
	}
	r.linesLoaded = true
	if !r.hasStmtList || !r.data.hasLine {
		return nil, nil
	}
	t, err := r.data.parseLineTable(r.stmtList, r.compDir)
	if err != nil {
		return nil, err
	}
	r.lines = t
	return t, nil
}
