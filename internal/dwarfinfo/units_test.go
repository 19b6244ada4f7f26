package dwarfinfo

import (
	"encoding/binary"
	"testing"

	"github.com/jschwinger233/dwarfctags/internal/dwarftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitIterator(t *testing.T) {
	s := dwarftest.Build(
		&dwarftest.Unit{Version: 4, Name: "a.c"},
		&dwarftest.Unit{Version: 5, Name: "b.c"},
	)
	_, units := loadUnits(t, s)
	require.Len(t, units, 2)

	assert.EqualValues(t, 0, units[0].Offset)
	assert.EqualValues(t, 4, units[0].Version)
	assert.EqualValues(t, 8, units[0].AddrSize)
	assert.EqualValues(t, 11, units[0].EntryOffset)
	assert.False(t, units[0].Is64)

	assert.Equal(t, units[0].End, units[1].Offset)
	assert.EqualValues(t, 5, units[1].Version)
	assert.EqualValues(t, utCompile, units[1].Type)
	assert.Equal(t, units[1].Offset+12, units[1].EntryOffset)

	info, _ := s.Section("info")
	assert.EqualValues(t, len(info), units[1].End)
}

func TestUnitIteratorEmpty(t *testing.T) {
	u, err := NewUnitIterator(nil, binary.LittleEndian).Next()
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestUnitIterator64(t *testing.T) {
	info := []byte{
		0xff, 0xff, 0xff, 0xff,
		11, 0, 0, 0, 0, 0, 0, 0, // unit_length
		4, 0, // version
		0, 0, 0, 0, 0, 0, 0, 0, // debug_abbrev_offset
		8, // address_size
	}
	it := NewUnitIterator(info, binary.LittleEndian)
	u, err := it.Next()
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.Is64)
	assert.EqualValues(t, 23, u.EntryOffset)
	assert.EqualValues(t, 23, u.End)

	u, err = it.Next()
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestUnitIteratorMalformed(t *testing.T) {
	for _, tc := range []struct {
		name string
		info []byte
	}{
		{"length past end", []byte{100, 0, 0, 0, 4, 0}},
		{"bad version", []byte{7, 0, 0, 0, 9, 0, 0, 0, 0, 0, 8}},
		{"truncated header", []byte{2, 0, 0, 0, 4, 0}},
		{"truncated length", []byte{1, 0}},
		{"reserved length", []byte{0xf0, 0xff, 0xff, 0xff, 4, 0}},
		{"unknown unit type", []byte{8, 0, 0, 0, 5, 0, 0x09, 8, 0, 0, 0, 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			it := NewUnitIterator(tc.info, binary.LittleEndian)
			u, err := it.Next()
			assert.Nil(t, u)
			require.ErrorIs(t, err, FormatError)

			// the iterator stays failed
			_, again := it.Next()
			assert.Equal(t, err, again)
		})
	}
}
