package dwarfinfo

import (
	"debug/dwarf"
	"testing"

	"github.com/stretchr/testify/require"
)

func loadUnits(t *testing.T, s Sections) (*Data, []*Unit) {
	t.Helper()
	d, err := Load(s)
	require.NoError(t, err)
	var units []*Unit
	it := d.Units()
	for {
		u, err := it.Next()
		require.NoError(t, err)
		if u == nil {
			return d, units
		}
		units = append(units, u)
	}
}

// subprograms returns the resolver for u and its subprogram entries in
// traversal order.
func subprograms(t *testing.T, d *Data, u *Unit) (*Resolver, []*dwarf.Entry) {
	t.Helper()
	tree, err := d.Tree(u)
	require.NoError(t, err)
	var entries []*dwarf.Entry
	w := tree.Walk()
	for {
		_, e, ok := w.Next()
		if !ok {
			break
		}
		if e.Tag == dwarf.TagSubprogram {
			entries = append(entries, e)
		}
	}
	return d.NewResolver(u, tree.Root()), entries
}
