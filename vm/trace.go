package vm

import (
	"fmt"
	"io"

	"github.com/rv32emu/rv32emu/decoder"
)

// TraceEntry is one recorded step: the address it executed at and the
// raw word fetched there.
type TraceEntry struct {
	Sequence uint64
	Address  uint32
	Word     uint32
}

// ExecutionTrace records an ordered log of executed instructions, for
// the debugger's instruction history view.
type ExecutionTrace struct {
	Enabled    bool
	Writer     io.Writer
	MaxEntries int

	entries []TraceEntry
}

// NewExecutionTrace creates a trace writing human-readable lines to w
// as well as keeping entries in memory, bounded by MaxEntries.
func NewExecutionTrace(w io.Writer) *ExecutionTrace {
	return &ExecutionTrace{
		Enabled:    true,
		Writer:     w,
		MaxEntries: 100000,
		entries:    make([]TraceEntry, 0, 1024),
	}
}

// Record appends one entry, evicting the oldest entry once MaxEntries
// is reached, and writes a line to Writer if one is configured.
func (t *ExecutionTrace) Record(addr, word uint32) {
	if !t.Enabled {
		return
	}
	entry := TraceEntry{Sequence: uint64(len(t.entries)), Address: addr, Word: word}
	if len(t.entries) >= t.MaxEntries {
		t.entries = t.entries[1:]
	}
	t.entries = append(t.entries, entry)

	if t.Writer != nil {
		fmt.Fprintf(t.Writer, "%06d 0x%08X %s\n", entry.Sequence, addr, decoder.Disassemble(decoder.Decode(word)))
	}
}

// Entries returns the recorded trace, oldest first.
func (t *ExecutionTrace) Entries() []TraceEntry {
	return t.entries
}

// Clear discards all recorded entries.
func (t *ExecutionTrace) Clear() {
	t.entries = t.entries[:0]
}
