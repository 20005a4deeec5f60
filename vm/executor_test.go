package vm_test

import (
	"testing"

	"github.com/rv32emu/rv32emu/vm"
)

func newLoadedVM(t *testing.T, text []byte) *vm.VM {
	t.Helper()
	m := vm.NewVM()
	m.Load(text, nil)
	return m
}

func TestStepAddiWithNegativeImmediate(t *testing.T) {
	// addi x1, x2, -1
	text := []byte{0x93, 0x00, 0xF1, 0xFF}
	m := newLoadedVM(t, text)
	m.CPU.Write(2, 10)

	if err := m.Step(); err != nil {
		t.Fatalf("unexpected step error: %v", err)
	}
	if got := m.CPU.Read(1); got != 9 {
		t.Fatalf("x1 = %d, want 9", got)
	}
	if m.PC() != vm.TextBase+4 {
		t.Fatalf("PC = 0x%X, want 0x%X", m.PC(), vm.TextBase+4)
	}
}

func TestStepSltVsSltu(t *testing.T) {
	// slt x3, x1, x2 ; sltu x3, x1, x2 encoded back to back
	text := []byte{
		0xB3, 0xA1, 0x20, 0x00, // slt x3, x1, x2
		0xB3, 0xB1, 0x20, 0x00, // sltu x3, x1, x2
	}
	m := newLoadedVM(t, text)
	m.CPU.Write(1, 0xFFFFFFFF)
	m.CPU.Write(2, 1)

	if err := m.Step(); err != nil {
		t.Fatalf("slt step error: %v", err)
	}
	if got := m.CPU.Read(3); got != 1 {
		t.Fatalf("slt x3 = %d, want 1", got)
	}

	if err := m.Step(); err != nil {
		t.Fatalf("sltu step error: %v", err)
	}
	if got := m.CPU.Read(3); got != 0 {
		t.Fatalf("sltu x3 = %d, want 0", got)
	}
}

func TestStepJalrForcesLSBZero(t *testing.T) {
	// jalr x1, 1(x2)
	text := []byte{0xE7, 0x00, 0x11, 0x00}
	m := newLoadedVM(t, text)
	m.CPU.Write(2, 0x200)

	if err := m.Step(); err != nil {
		t.Fatalf("unexpected step error: %v", err)
	}
	if got := m.CPU.Read(1); got != vm.TextBase+4 {
		t.Fatalf("x1 = 0x%X, want 0x%X", got, vm.TextBase+4)
	}
	if m.PC() != 0x200 {
		t.Fatalf("PC = 0x%X, want 0x200", m.PC())
	}
}

func TestStepX0WritesDiscarded(t *testing.T) {
	// addi x0, x1, 5
	text := []byte{0x13, 0x80, 0x50, 0x00}
	m := newLoadedVM(t, text)
	m.CPU.Write(1, 10)

	if err := m.Step(); err != nil {
		t.Fatalf("unexpected step error: %v", err)
	}
	if got := m.CPU.Read(0); got != 0 {
		t.Fatalf("x0 = %d, want 0", got)
	}
}

func TestStepIllegalInstruction(t *testing.T) {
	m := newLoadedVM(t, []byte{0x01, 0x00, 0x00, 0x00})
	err := m.Step()
	if err == nil {
		t.Fatal("expected an illegal instruction error")
	}
	if _, ok := err.(*vm.IllegalInstructionError); !ok {
		t.Fatalf("expected *IllegalInstructionError, got %T", err)
	}
}

func TestStepEbreakAndEcall(t *testing.T) {
	m := newLoadedVM(t, []byte{0x73, 0x00, 0x10, 0x00}) // ebreak
	err := m.Step()
	if _, ok := err.(*vm.EbreakError); !ok {
		t.Fatalf("expected *EbreakError, got %T (%v)", err, err)
	}

	m2 := newLoadedVM(t, []byte{0x73, 0x00, 0x00, 0x00}) // ecall
	err = m2.Step()
	if _, ok := err.(*vm.EcallError); !ok {
		t.Fatalf("expected *EcallError, got %T (%v)", err, err)
	}
}

func TestStepFetchOutOfBoundsFaults(t *testing.T) {
	m := vm.NewVM()
	m.Load(nil, nil)
	err := m.Step()
	if err == nil {
		t.Fatal("expected a memory fault stepping with no text segment")
	}
	if _, ok := err.(*vm.MemoryFault); !ok {
		t.Fatalf("expected *MemoryFault, got %T", err)
	}
}
