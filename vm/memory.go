package vm

import (
	"fmt"

	"github.com/rv32emu/rv32emu/isa"
)

// Fixed section bases and sizes, shared with the parser/encoder via
// package isa. Text and data grow from their compiled size; the stack
// is pre-allocated for its full extent since nothing else in the model
// ever resizes it.
const (
	TextBase  = isa.TextBase
	DataBase  = isa.DataBase
	StackBase = isa.StackBase
	StackSize = isa.StackSize
	HeapBase  = isa.HeapBase
	HeapSize  = isa.HeapSize
)

// FaultKind classifies a memory access failure.
type FaultKind int

const (
	OutOfBounds FaultKind = iota
	WriteToReadOnly
	UnalignedAccess
	ExecuteFromNonExecutable
)

func (k FaultKind) String() string {
	switch k {
	case OutOfBounds:
		return "out of bounds"
	case WriteToReadOnly:
		return "write to read-only memory"
	case UnalignedAccess:
		return "unaligned access"
	case ExecuteFromNonExecutable:
		return "execute from non-executable memory"
	default:
		return "unknown fault"
	}
}

// MemoryFault is raised by any access outside the mapped segments, or
// one that violates alignment or a permission rule.
type MemoryFault struct {
	Kind    FaultKind
	Address uint32
}

func (f *MemoryFault) Error() string {
	return fmt.Sprintf("%s at 0x%08X", f.Kind, f.Address)
}

// segment is one of the four disjoint regions text/data/heap/stack can
// occupy. Text and data are sized to the bytes the encoder produced;
// heap and stack are always pre-allocated to their full extent.
type segment struct {
	name       string
	base       uint32
	data       []byte
	readOnly   bool
	readCount  uint64
	writeCount uint64
}

func (s *segment) contains(addr uint32) bool {
	return addr >= s.base && addr < s.base+uint32(len(s.data))
}

// Memory is the four-segment address space the execution engine reads
// and writes through. Text is writable by ordinary stores unless
// MakeCodeReadOnly has been called: this model does not enforce W^X
// separation between code and data by default.
type Memory struct {
	text  *segment
	data  *segment
	heap  *segment
	stack *segment
}

// NewMemory allocates the heap and stack segments (always present,
// zero filled) with no text or data yet; Load installs those.
func NewMemory() *Memory {
	return &Memory{
		text:  &segment{name: "text", base: TextBase, data: nil},
		data:  &segment{name: "data", base: DataBase, data: nil},
		heap:  &segment{name: "heap", base: HeapBase, data: make([]byte, HeapSize)},
		stack: &segment{name: "stack", base: StackBase, data: make([]byte, StackSize)},
	}
}

// Load replaces the text and data segments wholesale, leaving the heap
// and stack's existing contents untouched.
func (m *Memory) Load(text, data []byte) {
	m.text = &segment{name: "text", base: TextBase, data: append([]byte(nil), text...)}
	m.data = &segment{name: "data", base: DataBase, data: append([]byte(nil), data...)}
}

// Reset zero-fills the heap and stack and clears text/data back to
// empty.
func (m *Memory) Reset() {
	m.text = &segment{name: "text", base: TextBase, data: nil}
	m.data = &segment{name: "data", base: DataBase, data: nil}
	for i := range m.heap.data {
		m.heap.data[i] = 0
	}
	for i := range m.stack.data {
		m.stack.data[i] = 0
	}
}

// MakeCodeReadOnly flips the text segment to read-only. Not called by
// default: the base behavior spec'd is a writable text segment, but a
// caller that wants to catch self-modifying code as a fault can opt in
// after Load.
func (m *Memory) MakeCodeReadOnly() {
	m.text.readOnly = true
}

func (m *Memory) segments() [4]*segment {
	return [4]*segment{m.text, m.data, m.heap, m.stack}
}

func (m *Memory) findSegment(addr uint32) *segment {
	for _, s := range m.segments() {
		if s.contains(addr) {
			return s
		}
	}
	return nil
}

func checkAlignment(addr uint32, size uint32) error {
	if size == 1 {
		return nil
	}
	if addr%size != 0 {
		return &MemoryFault{Kind: UnalignedAccess, Address: addr}
	}
	return nil
}

// ReadByte reads a single byte.
func (m *Memory) ReadByte(addr uint32) (byte, error) {
	seg := m.findSegment(addr)
	if seg == nil {
		return 0, &MemoryFault{Kind: OutOfBounds, Address: addr}
	}
	seg.readCount++
	return seg.data[addr-seg.base], nil
}

// WriteByte writes a single byte.
func (m *Memory) WriteByte(addr uint32, value byte) error {
	seg := m.findSegment(addr)
	if seg == nil {
		return &MemoryFault{Kind: OutOfBounds, Address: addr}
	}
	if seg.readOnly {
		return &MemoryFault{Kind: WriteToReadOnly, Address: addr}
	}
	seg.writeCount++
	seg.data[addr-seg.base] = value
	return nil
}

// ReadHalf reads a little-endian 16-bit halfword.
func (m *Memory) ReadHalf(addr uint32) (uint16, error) {
	if err := checkAlignment(addr, 2); err != nil {
		return 0, err
	}
	lo, err := m.ReadByte(addr)
	if err != nil {
		return 0, err
	}
	hi, err := m.ReadByte(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// WriteHalf writes a little-endian 16-bit halfword.
func (m *Memory) WriteHalf(addr uint32, value uint16) error {
	if err := checkAlignment(addr, 2); err != nil {
		return err
	}
	if err := m.WriteByte(addr, byte(value)); err != nil {
		return err
	}
	return m.WriteByte(addr+1, byte(value>>8))
}

// ReadWord reads a little-endian 32-bit word.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if err := checkAlignment(addr, 4); err != nil {
		return 0, err
	}
	var value uint32
	for i := uint32(0); i < 4; i++ {
		b, err := m.ReadByte(addr + i)
		if err != nil {
			return 0, err
		}
		value |= uint32(b) << (8 * i)
	}
	return value, nil
}

// WriteWord writes a little-endian 32-bit word.
func (m *Memory) WriteWord(addr uint32, value uint32) error {
	if err := checkAlignment(addr, 4); err != nil {
		return err
	}
	for i := uint32(0); i < 4; i++ {
		if err := m.WriteByte(addr+i, byte(value>>(8*i))); err != nil {
			return err
		}
	}
	return nil
}

// CheckExecutable returns ExecuteFromNonExecutable if addr is mapped
// but outside the text segment, or OutOfBounds if it isn't mapped at
// all.
func (m *Memory) CheckExecutable(addr uint32) error {
	if m.text.contains(addr) {
		return nil
	}
	if m.findSegment(addr) != nil {
		return &MemoryFault{Kind: ExecuteFromNonExecutable, Address: addr}
	}
	return &MemoryFault{Kind: OutOfBounds, Address: addr}
}

// SegmentStat reports access counters for one mapped segment, as
// returned by Memory.SegmentStats.
type SegmentStat struct {
	Name       string
	Base       uint32
	Size       uint32
	ReadCount  uint64
	WriteCount uint64
}

// SegmentStats returns counters for all four segments in text/data/heap/stack order.
func (m *Memory) SegmentStats() []SegmentStat {
	segs := m.segments()
	stats := make([]SegmentStat, len(segs))
	for i, s := range segs {
		stats[i] = SegmentStat{
			Name:       s.name,
			Base:       s.base,
			Size:       uint32(len(s.data)),
			ReadCount:  s.readCount,
			WriteCount: s.writeCount,
		}
	}
	return stats
}
