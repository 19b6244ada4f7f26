package dwarfinfo

import (
	"debug/dwarf"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributeOf(t *testing.T) {
	for _, tc := range []struct {
		field dwarf.Field
		form  uint64
		want  Attribute
	}{
		{
			dwarf.Field{Attr: dwarf.AttrName, Val: "main", Class: dwarf.ClassString},
			formStrp,
			Attribute{Name: dwarf.AttrName, Kind: StringRefValue, Str: "main"},
		},
		{
			dwarf.Field{Attr: dwarf.AttrName, Val: "main", Class: dwarf.ClassString},
			formStrx1,
			Attribute{Name: dwarf.AttrName, Kind: StringRefValue, Str: "main"},
		},
		{
			dwarf.Field{Attr: dwarf.AttrName, Val: "main", Class: dwarf.ClassString},
			formString,
			Attribute{Name: dwarf.AttrName, Kind: InlineStringValue, Str: "main"},
		},
		{
			dwarf.Field{Attr: dwarf.AttrDeclFile, Val: int64(3), Class: dwarf.ClassConstant},
			formData1,
			Attribute{Name: dwarf.AttrDeclFile, Kind: FileIndexValue, Num: 3},
		},
		{
			dwarf.Field{Attr: dwarf.AttrDeclLine, Val: int64(42), Class: dwarf.ClassConstant},
			formData1,
			Attribute{Name: dwarf.AttrDeclLine, Kind: UnsignedValue, Num: 42},
		},
		{
			dwarf.Field{Attr: dwarf.AttrDeclLine, Val: int64(-2), Class: dwarf.ClassConstant},
			formData1,
			Attribute{Name: dwarf.AttrDeclLine, Kind: OtherValue},
		},
		{
			dwarf.Field{Attr: dwarf.AttrDeclColumn, Val: uint64(7), Class: dwarf.ClassConstant},
			formData1,
			Attribute{Name: dwarf.AttrDeclColumn, Kind: UnsignedValue, Num: 7},
		},
		{
			dwarf.Field{Attr: dwarf.AttrLowpc, Val: uint64(0x1000), Class: dwarf.ClassAddress},
			formAddr,
			Attribute{Name: dwarf.AttrLowpc, Kind: OtherValue},
		},
		{
			dwarf.Field{Attr: dwarf.AttrExternal, Val: true, Class: dwarf.ClassFlag},
			formFlagPresent,
			Attribute{Name: dwarf.AttrExternal, Kind: OtherValue},
		},
	} {
		assert.Equal(t, tc.want, attributeOf(&tc.field, tc.form))
	}
}

func TestValueKindString(t *testing.T) {
	assert.Equal(t, "string reference", StringRefValue.String())
	assert.Equal(t, "inline string", InlineStringValue.String())
	assert.Equal(t, "file index", FileIndexValue.String())
	assert.Equal(t, "unsigned", UnsignedValue.String())
	assert.Equal(t, "other", OtherValue.String())
}
