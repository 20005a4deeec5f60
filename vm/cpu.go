package vm

// CPU represents the RV32I processor state: the 32-entry integer
// register file, program counter, and a cycle counter for statistics.
type CPU struct {
	X  [32]uint32
	PC uint32

	Cycles uint64
}

// NewCPU creates a new CPU instance with all registers zeroed.
func NewCPU() *CPU {
	return &CPU{}
}

// Reset zeros every register, the PC, and the cycle counter.
func (c *CPU) Reset() {
	for i := range c.X {
		c.X[i] = 0
	}
	c.PC = 0
	c.Cycles = 0
}

// Read returns the value of register i. x0 always reads as zero.
func (c *CPU) Read(i int) uint32 {
	if i == 0 {
		return 0
	}
	return c.X[i]
}

// Write sets register i to value. Writes to x0 are silently discarded.
func (c *CPU) Write(i int, value uint32) {
	if i == 0 {
		return
	}
	c.X[i] = value
}

// IncrementPC advances the PC by one instruction word.
func (c *CPU) IncrementPC() {
	c.PC += 4
}

// IncrementCycles adds n to the cycle counter.
func (c *CPU) IncrementCycles(n uint64) {
	c.Cycles += n
}
