package dwarfinfo

import "debug/dwarf"

type ValueKind uint8

const (
	OtherValue ValueKind = iota
	// StringRefValue is a string read through .debug_str or another string
	// section, already resolved by debug/dwarf.
	StringRefValue
	InlineStringValue
	FileIndexValue
	UnsignedValue
)

func (k ValueKind) String() string {
	switch k {
	case StringRefValue:
		return "string reference"
	case InlineStringValue:
		return "inline string"
	case FileIndexValue:
		return "file index"
	case UnsignedValue:
		return "unsigned"
	}
	return "other"
}

// Attribute is an entry attribute reduced to the value kinds that function
// resolution interprets.
type Attribute struct {
	Name dwarf.Attr
	Kind ValueKind
	Str  string
	Num  uint64
}

// attributeOf classifies f, whose value was encoded in form.
func attributeOf(f *dwarf.Field, form uint64) Attribute {
	a := Attribute{Name: f.Attr}
	switch f.Class {
	case dwarf.ClassString:
		if s, ok := f.Val.(string); ok {
			a.Kind, a.Str = StringRefValue, s
			if form == formString {
				a.Kind = InlineStringValue
			}
		}
	case dwarf.ClassConstant:
		var n uint64
		switch v := f.Val.(type) {
		case int64:
			if v < 0 {
				return a
			}
			n = uint64(v)
		case uint64:
			n = v
		default:
			return a
		}
		a.Num = n
		if f.Attr == dwarf.AttrDeclFile || f.Attr == dwarf.AttrCallFile {
			a.Kind = FileIndexValue
		} else {
			a.Kind = UnsignedValue
		}
	}
	return a
}
