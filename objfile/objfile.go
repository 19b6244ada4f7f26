package objfile

import (
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
	"os"

	"github.com/go-delve/delve/pkg/dwarf/godwarf"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DebugSections lists the DWARF sections loaded at open time, by the short
// name used in Section.
var DebugSections = []string{
	"abbrev",
	"info",
	"str",
	"line",
	"line_str",
	"str_offsets",
	"addr",
	"ranges",
	"rnglists",
}

type Format string

const (
	ELF   Format = "elf"
	MachO Format = "macho"
	PE    Format = "pe"
)

// File is an object file whose debug sections have been read into memory.
type File struct {
	path     string
	format   Format
	order    binary.ByteOrder
	sections map[string][]byte
}

type container struct {
	format Format
	order  binary.ByteOrder
	has    func(name string) bool
	data   func(name string) ([]byte, error)
	close  func() error
}

func Open(path string) (_ *File, err error) {
	binFile, err := os.Open(path)
	if err != nil {
		return
	}
	defer binFile.Close()

	c, err := detect(binFile)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	defer c.close()

	f := &File{
		path:     path,
		format:   c.format,
		order:    c.order,
		sections: map[string][]byte{},
	}
	for _, name := range DebugSections {
		if !c.has(name) {
			continue
		}
		data, err := c.data(name)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: read .debug_%s", path, name)
		}
		if data == nil {
			data = []byte{}
		}
		f.sections[name] = data
		log.WithFields(log.Fields{"section": name, "size": len(data)}).Debug("loaded debug section")
	}
	return f, nil
}

func detect(binFile *os.File) (*container, error) {
	if ef, err := elf.NewFile(binFile); err == nil {
		return &container{
			format: ELF,
			order:  ef.ByteOrder,
			has: func(name string) bool {
				return ef.Section(".debug_"+name) != nil || ef.Section(".zdebug_"+name) != nil
			},
			data:  func(name string) ([]byte, error) { return godwarf.GetDebugSectionElf(ef, name) },
			close: ef.Close,
		}, nil
	}
	if mf, err := macho.NewFile(binFile); err == nil {
		return &container{
			format: MachO,
			order:  mf.ByteOrder,
			has: func(name string) bool {
				return mf.Section("__debug_"+name) != nil || mf.Section("__zdebug_"+name) != nil
			},
			data:  func(name string) ([]byte, error) { return godwarf.GetDebugSectionMacho(mf, name) },
			close: mf.Close,
		}, nil
	}
	if pf, err := pe.NewFile(binFile); err == nil {
		return &container{
			format: PE,
			order:  binary.LittleEndian,
			has: func(name string) bool {
				return pf.Section(".debug_"+name) != nil || pf.Section(".zdebug_"+name) != nil
			},
			data:  func(name string) ([]byte, error) { return godwarf.GetDebugSectionPE(pf, name) },
			close: pf.Close,
		}, nil
	}
	return nil, UnknownFormatError
}

// Section returns the contents of the named debug section. The boolean is
// false when the object has no such section, which is distinct from a
// present section of length zero.
func (f *File) Section(name string) ([]byte, bool) {
	data, ok := f.sections[name]
	return data, ok
}

func (f *File) ByteOrder() binary.ByteOrder {
	return f.order
}

func (f *File) Format() Format {
	return f.format
}

func (f *File) Path() string {
	return f.path
}
