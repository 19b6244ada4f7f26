package dwarfinfo

import (
	"debug/dwarf"

	"github.com/pkg/errors"
)

const noNode = -1

// Node is one entry of a unit. Links are indices into Tree.Nodes, noNode
// when absent.
type Node struct {
	Entry       *dwarf.Entry
	Parent      int
	FirstChild  int
	NextSibling int
}

// Tree holds the entries of one unit in file order, the root at index 0.
type Tree struct {
	Nodes []Node
}

func (t *Tree) Root() *dwarf.Entry {
	if len(t.Nodes) == 0 {
		return nil
	}
	return t.Nodes[0].Entry
}

// Tree decodes all entries of u.
func (d *Data) Tree(u *Unit) (*Tree, error) {
	t := &Tree{}
	if u.EntryOffset >= u.End {
		return t, nil
	}
	r := d.dwarfData.Reader()
	r.Seek(u.EntryOffset)

	// open holds the entries whose children are being read; last holds the
	// most recent child of each of them.
	var open, last []int
	for {
		e, err := r.Next()
		if err != nil {
			return nil, errors.Wrapf(FormatError, "unit at %#x: %v", u.Offset, err)
		}
		if e == nil {
			return nil, errors.Wrapf(FormatError, "unit at %#x: entry tree truncated", u.Offset)
		}
		if e.Tag == 0 {
			if len(open) == 0 {
				return nil, errors.Wrapf(FormatError, "unit at %#x: null root entry", u.Offset)
			}
			open, last = open[:len(open)-1], last[:len(last)-1]
			if len(open) == 0 {
				return t, nil
			}
			continue
		}
		if e.Offset < u.EntryOffset || e.Offset >= u.End {
			return nil, errors.Wrapf(FormatError, "unit at %#x: entry tree runs past unit end %#x", u.Offset, u.End)
		}

		idx := len(t.Nodes)
		n := Node{Entry: e, Parent: noNode, FirstChild: noNode, NextSibling: noNode}
		if len(open) > 0 {
			top := len(open) - 1
			n.Parent = open[top]
			if last[top] == noNode {
				t.Nodes[open[top]].FirstChild = idx
			} else {
				t.Nodes[last[top]].NextSibling = idx
			}
			last[top] = idx
		}
		t.Nodes = append(t.Nodes, n)

		if e.Children {
			open, last = append(open, idx), append(last, noNode)
		} else if len(open) == 0 {
			return t, nil
		}
	}
}

// Walker visits the nodes of a Tree depth first, parents before children,
// siblings in file order. The pending stack holds at most one sibling per
// level, so deep trees do not grow the goroutine stack.
type Walker struct {
	tree  *Tree
	stack []pending
}

type pending struct {
	node, depth int
}

func (t *Tree) Walk() *Walker {
	w := &Walker{tree: t}
	if len(t.Nodes) > 0 {
		w.stack = append(w.stack, pending{node: 0})
	}
	return w
}

// Next returns the next entry and its depth below the root. ok is false
// once every node has been visited.
func (w *Walker) Next() (depth int, e *dwarf.Entry, ok bool) {
	if len(w.stack) == 0 {
		return 0, nil, false
	}
	p := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	n := &w.tree.Nodes[p.node]
	if n.NextSibling != noNode {
		w.stack = append(w.stack, pending{node: n.NextSibling, depth: p.depth})
	}
	if n.FirstChild != noNode {
		w.stack = append(w.stack, pending{node: n.FirstChild, depth: p.depth + 1})
	}
	return p.depth, n.Entry, true
}
