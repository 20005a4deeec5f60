package vm

import (
	"sort"

	"github.com/rv32emu/rv32emu/decoder"
)

// PerformanceStatistics tallies per-mnemonic execution counts and
// overall instruction/branch totals across a run.
type PerformanceStatistics struct {
	Enabled bool

	TotalInstructions uint64
	BranchCount       uint64
	BranchTakenCount  uint64

	InstructionCounts map[string]uint64
}

// NewPerformanceStatistics creates an enabled, empty statistics tracker.
func NewPerformanceStatistics() *PerformanceStatistics {
	return &PerformanceStatistics{
		Enabled:           true,
		InstructionCounts: make(map[string]uint64),
	}
}

// RecordInstruction tallies one executed instruction by its mnemonic.
func (s *PerformanceStatistics) RecordInstruction(op decoder.Op) {
	if !s.Enabled {
		return
	}
	s.TotalInstructions++
	s.InstructionCounts[op.Mnemonic()]++

	switch op {
	case decoder.OpBeq, decoder.OpBne, decoder.OpBlt, decoder.OpBge, decoder.OpBltu, decoder.OpBgeu:
		s.BranchCount++
	}
}

// RecordBranchTaken increments the taken-branch count; the caller
// already knows the branch it just recorded was taken.
func (s *PerformanceStatistics) RecordBranchTaken() {
	if s.Enabled {
		s.BranchTakenCount++
	}
}

// MnemonicCount is one row of a sorted breakdown.
type MnemonicCount struct {
	Mnemonic string
	Count    uint64
}

// Breakdown returns instruction counts sorted by descending count, for
// a summary view.
func (s *PerformanceStatistics) Breakdown() []MnemonicCount {
	rows := make([]MnemonicCount, 0, len(s.InstructionCounts))
	for m, c := range s.InstructionCounts {
		rows = append(rows, MnemonicCount{Mnemonic: m, Count: c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Mnemonic < rows[j].Mnemonic
	})
	return rows
}

// Reset clears all counters.
func (s *PerformanceStatistics) Reset() {
	s.TotalInstructions = 0
	s.BranchCount = 0
	s.BranchTakenCount = 0
	s.InstructionCounts = make(map[string]uint64)
}
