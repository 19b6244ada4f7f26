package dwarfinfo

import (
	"debug/dwarf"
	"testing"

	"github.com/jschwinger233/dwarfctags/internal/dwarftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryForms(t *testing.T) {
	for _, tc := range []struct {
		name  string
		entry *dwarftest.Entry
		want  []uint64
	}{
		{
			name:  "plain",
			entry: dwarftest.Subprogram("f", 1, 2, 3),
			want:  []uint64{formStrp, formData1, formUdata, formData1},
		},
		{
			name: "indirect",
			entry: dwarftest.Subprogram("f", 1, 2, 3).
				With(dwarf.AttrDeclLine, dwarftest.FormIndirect, dwarftest.Indirect{Form: dwarftest.FormData2, Val: uint64(2)}).
				With(dwarf.AttrName, dwarftest.FormIndirect, dwarftest.Indirect{Form: dwarftest.FormString, Val: "f"}),
			want: []uint64{formData1, formData1, formData2, formString},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, units := loadUnits(t, dwarftest.Build(&dwarftest.Unit{
				Version:  5,
				Name:     "a.c",
				Children: []*dwarftest.Entry{tc.entry},
			}))
			_, entries := subprograms(t, d, units[0])
			require.Len(t, entries, 1)

			forms, err := d.entryForms(units[0], entries[0].Offset)
			require.NoError(t, err)
			assert.Equal(t, tc.want, forms)
			assert.Len(t, forms, len(entries[0].Field))
		})
	}
}

func TestAbbrevTableShared(t *testing.T) {
	d, units := loadUnits(t, dwarftest.Build(
		&dwarftest.Unit{Name: "a.c", Children: []*dwarftest.Entry{dwarftest.Subprogram("f", 1, 2, 3)}},
		&dwarftest.Unit{Name: "b.c", Children: []*dwarftest.Entry{dwarftest.Subprogram("g", 1, 2, 3)}},
	))
	for _, u := range units {
		_, entries := subprograms(t, d, u)
		require.Len(t, entries, 1)
		_, err := d.entryForms(u, entries[0].Offset)
		require.NoError(t, err)
	}
	assert.Len(t, d.abbrevs, 1)
}

func TestEntryFormsMalformed(t *testing.T) {
	d, units := loadUnits(t, dwarftest.Build(&dwarftest.Unit{
		Name:     "a.c",
		Children: []*dwarftest.Entry{dwarftest.Subprogram("f", 1, 2, 3)},
	}))

	_, err := d.abbrevsAt(1 << 20)
	assert.ErrorIs(t, err, FormatError)

	_, err = d.entryForms(units[0], units[0].End)
	assert.ErrorIs(t, err, FormatError)

	bad := *units[0]
	bad.AbbrevOffset = 1 << 20
	_, err = d.entryForms(&bad, units[0].EntryOffset)
	assert.ErrorIs(t, err, FormatError)
}
