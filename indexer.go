package main

import (
	"debug/dwarf"
	"io"

	"github.com/jschwinger233/dwarfctags/internal/ctags"
	"github.com/jschwinger233/dwarfctags/internal/dwarfinfo"
	"github.com/jschwinger233/dwarfctags/objfile"
	log "github.com/sirupsen/logrus"
)

// Stats counts what a run saw. Skipped is the number of subprogram entries
// that lacked one of name, file, line or column.
type Stats struct {
	Units       int
	Entries     int
	Subprograms int
	Skipped     int
	Records     int
	Duplicates  int
}

type Indexer struct {
	sections  dwarfinfo.Sections
	collector ctags.Collector
	stats     Stats
}

func NewIndexer(sections dwarfinfo.Sections) *Indexer {
	return &Indexer{sections: sections}
}

// OpenIndexer opens the object file at bin.
func OpenIndexer(bin string) (_ *Indexer, err error) {
	f, err := objfile.Open(bin)
	if err != nil {
		return
	}
	log.WithFields(log.Fields{"path": bin, "format": f.Format()}).Debug("opened object file")
	return NewIndexer(f), nil
}

// Index traverses every unit and collects the resolved functions. Nothing
// is written; see Emit.
func (i *Indexer) Index() (err error) {
	data, err := dwarfinfo.Load(i.sections)
	if err != nil {
		return
	}
	units := data.Units()
	for {
		unit, err := units.Next()
		if err != nil {
			return err
		}
		if unit == nil {
			break
		}
		if err = i.indexUnit(data, unit); err != nil {
			return err
		}
	}
	return nil
}

func (i *Indexer) indexUnit(data *dwarfinfo.Data, unit *dwarfinfo.Unit) error {
	tree, err := data.Tree(unit)
	if err != nil {
		return err
	}
	i.stats.Units++
	log.WithFields(log.Fields{
		"offset":  unit.Offset,
		"version": unit.Version,
		"entries": len(tree.Nodes),
	}).Debug("visiting unit")

	resolver := data.NewResolver(unit, tree.Root())
	walker := tree.Walk()
	for {
		_, entry, ok := walker.Next()
		if !ok {
			return nil
		}
		i.stats.Entries++
		if entry.Tag != dwarf.TagSubprogram {
			continue
		}
		i.stats.Subprograms++

		fn, got, err := resolver.Function(entry)
		if err != nil {
			return err
		}
		if got != dwarfinfo.AllFields {
			i.stats.Skipped++
			log.WithFields(log.Fields{"offset": entry.Offset, "missing": got.Missing()}).Debug("skipping subprogram")
			continue
		}
		i.collector.Add(ctags.Record{Name: fn.Name, File: fn.File, Line: fn.Line, Column: fn.Column})
	}
}

// Emit writes the sorted, deduplicated index.
func (i *Indexer) Emit(w io.Writer) error {
	records := i.collector.Records()
	i.stats.Records = len(records)
	i.stats.Duplicates = i.collector.Duplicates()
	return ctags.Write(w, records)
}

func (i *Indexer) Stats() Stats {
	return i.stats
}
