package vm_test

import (
	"testing"

	"github.com/rv32emu/rv32emu/vm"
)

func TestCPUX0AlwaysZero(t *testing.T) {
	cpu := vm.NewCPU()
	cpu.Write(0, 0xDEADBEEF)
	if got := cpu.Read(0); got != 0 {
		t.Fatalf("x0 = 0x%X, want 0", got)
	}
}

func TestCPUReadWriteRoundTrip(t *testing.T) {
	cpu := vm.NewCPU()
	cpu.Write(5, 0x12345678)
	if got := cpu.Read(5); got != 0x12345678 {
		t.Fatalf("x5 = 0x%X, want 0x12345678", got)
	}
}

func TestCPUResetZeroesEverything(t *testing.T) {
	cpu := vm.NewCPU()
	cpu.Write(1, 1)
	cpu.PC = 0x1000
	cpu.IncrementCycles(5)
	cpu.Reset()
	if cpu.Read(1) != 0 || cpu.PC != 0 || cpu.Cycles != 0 {
		t.Fatalf("expected zeroed CPU after reset, got %+v", cpu)
	}
}

func TestCPUIncrementPC(t *testing.T) {
	cpu := vm.NewCPU()
	cpu.PC = 0x0040_0000
	cpu.IncrementPC()
	if cpu.PC != 0x0040_0004 {
		t.Fatalf("PC = 0x%X, want 0x00400004", cpu.PC)
	}
}
