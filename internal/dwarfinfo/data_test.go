package dwarfinfo

import (
	"testing"

	"github.com/jschwinger233/dwarfctags/internal/dwarftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutDebugInfo(t *testing.T) {
	for name, s := range map[string]Sections{
		"absent": dwarftest.Build().Delete("info").Delete("abbrev"),
		"empty":  dwarftest.Build(),
	} {
		t.Run(name, func(t *testing.T) {
			d, err := Load(s)
			require.NoError(t, err)
			u, err := d.Units().Next()
			assert.NoError(t, err)
			assert.Nil(t, u)
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	t.Run("no abbrev", func(t *testing.T) {
		_, err := Load(dwarftest.Build(&dwarftest.Unit{Name: "a.c"}).Delete("abbrev"))
		require.ErrorIs(t, err, FormatError)
	})
	t.Run("short info", func(t *testing.T) {
		_, err := Load(dwarftest.Build().Set("info", []byte{1, 0, 0}))
		require.ErrorIs(t, err, FormatError)
	})
}
