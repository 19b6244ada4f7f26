package dwarfinfo

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-delve/delve/pkg/dwarf/leb128"
	"github.com/pkg/errors"
)

// buf decodes a DWARF byte stream. The first failure is latched in err and
// every later read returns zero values.
type buf struct {
	name  string
	order binary.ByteOrder
	off   int
	data  []byte
	err   error
}

func makeBuf(name string, order binary.ByteOrder, off int, data []byte) buf {
	return buf{name: name, order: order, off: off, data: data}
}

func (b *buf) fail(msg string) {
	if b.err == nil {
		b.err = errors.Wrapf(FormatError, "%s at %#x: %s", b.name, b.off, msg)
	}
	b.data = nil
}

func (b *buf) bytes(n int) []byte {
	if b.err != nil {
		return nil
	}
	if n < 0 || len(b.data) < n {
		b.fail("underflow")
		return nil
	}
	p := b.data[:n]
	b.data = b.data[n:]
	b.off += n
	return p
}

func (b *buf) skip(n int) { b.bytes(n) }

func (b *buf) u8() uint8 {
	p := b.bytes(1)
	if p == nil {
		return 0
	}
	return p[0]
}

func (b *buf) u16() uint16 {
	p := b.bytes(2)
	if p == nil {
		return 0
	}
	return b.order.Uint16(p)
}

func (b *buf) u32() uint32 {
	p := b.bytes(4)
	if p == nil {
		return 0
	}
	return b.order.Uint32(p)
}

func (b *buf) u64() uint64 {
	p := b.bytes(8)
	if p == nil {
		return 0
	}
	return b.order.Uint64(p)
}

// offset reads a section offset, 8 bytes wide in 64-bit DWARF.
func (b *buf) offset(is64 bool) uint64 {
	if is64 {
		return b.u64()
	}
	return uint64(b.u32())
}

// uleb reads an unsigned LEB128 value. The terminating byte is located
// first so that truncated input is reported instead of decoded.
func (b *buf) uleb() uint64 {
	if b.err != nil {
		return 0
	}
	end := -1
	for i, c := range b.data {
		if c&0x80 == 0 {
			end = i
			break
		}
	}
	if end < 0 {
		b.fail("truncated LEB128")
		return 0
	}
	v, n := leb128.DecodeUnsigned(bytes.NewReader(b.data[:end+1]))
	b.data = b.data[n:]
	b.off += int(n)
	return v
}

// skipValue skips one attribute value of the given form in unit u.
func (b *buf) skipValue(form uint64, u *Unit) {
	switch form {
	case formFlagPresent, formImplicitConst:
	case formData1, formRef1, formFlag, formStrx1, formAddrx1:
		b.skip(1)
	case formData2, formRef2, formStrx2, formAddrx2:
		b.skip(2)
	case formStrx3, formAddrx3:
		b.skip(3)
	case formData4, formRef4, formRefSup4, formStrx4, formAddrx4:
		b.skip(4)
	case formData8, formRef8, formRefSig8, formRefSup8:
		b.skip(8)
	case formData16:
		b.skip(16)
	case formAddr:
		b.skip(int(u.AddrSize))
	case formRefAddr:
		if u.Version <= 2 {
			b.skip(int(u.AddrSize))
		} else {
			b.offset(u.Is64)
		}
	case formStrp, formLineStrp, formSecOffset, formStrpSup, formGNURefAlt, formGNUStrpAlt:
		b.offset(u.Is64)
	case formSdata, formUdata, formRefUdata, formStrx, formAddrx, formLoclistx, formRnglistx,
		formGNUAddrIndex, formGNUStrIndex:
		b.uleb()
	case formString:
		b.cstring()
	case formBlock1:
		b.skip(int(b.u8()))
	case formBlock2:
		b.skip(int(b.u16()))
	case formBlock4:
		b.skip(int(b.u32()))
	case formBlock, formExprloc:
		b.skip(int(b.uleb()))
	default:
		b.fail(fmt.Sprintf("unknown form %#x", form))
	}
}

// cstring reads a NUL terminated string.
func (b *buf) cstring() string {
	if b.err != nil {
		return ""
	}
	i := bytes.IndexByte(b.data, 0)
	if i < 0 {
		b.fail("unterminated string")
		return ""
	}
	s := string(b.data[:i])
	b.data = b.data[i+1:]
	b.off += i + 1
	return s
}

// stringAt returns the NUL terminated string starting at off in a string
// section.
func stringAt(section string, data []byte, off uint64) (string, error) {
	if off >= uint64(len(data)) {
		return "", errors.Wrapf(FormatError, "%s offset %#x out of range", section, off)
	}
	s := data[off:]
	i := bytes.IndexByte(s, 0)
	if i < 0 {
		return "", errors.Wrapf(FormatError, "%s offset %#x: unterminated string", section, off)
	}
	return string(s[:i]), nil
}
