package vm

import (
	"fmt"

	"github.com/rv32emu/rv32emu/decoder"
)

// IllegalInstructionError is returned by Step when the fetched word
// does not decode to any recognized RV32I instruction.
type IllegalInstructionError struct {
	Word uint32
	PC   uint32
}

func (e *IllegalInstructionError) Error() string {
	return fmt.Sprintf("illegal instruction 0x%08X at PC=0x%08X", e.Word, e.PC)
}

// EbreakError is returned by Step when an ebreak instruction executes.
type EbreakError struct{ PC uint32 }

func (e *EbreakError) Error() string {
	return fmt.Sprintf("ebreak at PC=0x%08X", e.PC)
}

// EcallError is returned by Step when an ecall instruction executes.
// The core does not implement any syscall ABI; the caller decides what
// an environment call means.
type EcallError struct{ PC uint32 }

func (e *EcallError) Error() string {
	return fmt.Sprintf("ecall at PC=0x%08X", e.PC)
}

// VM ties a CPU and Memory together and drives the fetch/decode/execute
// loop. It is single-threaded and synchronous: Step runs to completion
// or error in one call, with no suspension.
type VM struct {
	CPU    *CPU
	Memory *Memory

	Trace      *ExecutionTrace
	Statistics *PerformanceStatistics
}

// NewVM creates a VM with a fresh CPU and Memory, stack pre-allocated
// and zero filled, text and data empty until Load.
func NewVM() *VM {
	return &VM{
		CPU:        NewCPU(),
		Memory:     NewMemory(),
		Statistics: NewPerformanceStatistics(),
	}
}

// spRegister is x2, the sp ABI alias.
const spRegister = 2

// Load installs newly compiled text and data bytes, replacing whatever
// was there before, and resets registers and PC to TextBase. The stack
// is left as-is (already zero-filled on construction); sp (x2) is set
// to StackBase so a program using the conventional stack pointer
// doesn't fault on its first push.
func (vm *VM) Load(text, data []byte) {
	vm.Memory.Load(text, data)
	vm.CPU.Reset()
	vm.CPU.PC = TextBase
	vm.CPU.Write(spRegister, StackBase)
}

// PC returns the current program counter.
func (vm *VM) PC() uint32 {
	return vm.CPU.PC
}

// Registers returns a copy of the register file, x0 included (always 0).
func (vm *VM) Registers() [32]uint32 {
	regs := vm.CPU.X
	regs[0] = 0
	return regs
}

// ReadMemoryWord reads a word through the VM's memory, for inspection
// by the debugger/TUI.
func (vm *VM) ReadMemoryWord(addr uint32) (uint32, error) {
	return vm.Memory.ReadWord(addr)
}

// Step fetches, decodes, and executes exactly one instruction,
// advancing PC and the cycle counter on success. It returns
// *IllegalInstructionError, *MemoryFault, *EbreakError, or *EcallError
// on failure; the caller halts the run loop on any non-nil error.
func (vm *VM) Step() error {
	pc := vm.CPU.PC

	if err := vm.Memory.CheckExecutable(pc); err != nil {
		return err
	}

	word, err := vm.Memory.ReadWord(pc)
	if err != nil {
		return err
	}

	inst := decoder.Decode(word)
	if inst.Op == decoder.OpIllegal {
		return &IllegalInstructionError{Word: word, PC: pc}
	}

	nextPC := pc + 4

	if err := vm.execute(inst, pc, &nextPC); err != nil {
		return err
	}

	vm.CPU.PC = nextPC
	vm.CPU.IncrementCycles(1)
	if vm.Trace != nil {
		vm.Trace.Record(pc, word)
	}
	if vm.Statistics != nil {
		vm.Statistics.RecordInstruction(inst.Op)
	}
	return nil
}

// Run executes Step in a tight loop until it returns an error (the
// caller's definition of halt), or until shouldContinue returns false,
// checked between steps for cooperative cancellation.
func (vm *VM) Run(shouldContinue func() bool) error {
	for shouldContinue == nil || shouldContinue() {
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) execute(inst decoder.Instruction, pc uint32, nextPC *uint32) error {
	switch inst.Op {
	case decoder.OpAdd:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)+vm.CPU.Read(inst.Rs2))
	case decoder.OpSub:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)-vm.CPU.Read(inst.Rs2))
	case decoder.OpSll:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)<<(vm.CPU.Read(inst.Rs2)&0x1F))
	case decoder.OpSlt:
		vm.CPU.Write(inst.Rd, boolToReg(AsInt32(vm.CPU.Read(inst.Rs1)) < AsInt32(vm.CPU.Read(inst.Rs2))))
	case decoder.OpSltu:
		vm.CPU.Write(inst.Rd, boolToReg(vm.CPU.Read(inst.Rs1) < vm.CPU.Read(inst.Rs2)))
	case decoder.OpXor:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)^vm.CPU.Read(inst.Rs2))
	case decoder.OpSrl:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)>>(vm.CPU.Read(inst.Rs2)&0x1F))
	case decoder.OpSra:
		vm.CPU.Write(inst.Rd, AsUint32(AsInt32(vm.CPU.Read(inst.Rs1))>>(vm.CPU.Read(inst.Rs2)&0x1F)))
	case decoder.OpOr:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)|vm.CPU.Read(inst.Rs2))
	case decoder.OpAnd:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)&vm.CPU.Read(inst.Rs2))

	case decoder.OpAddi:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)+AsUint32(inst.Imm))
	case decoder.OpSlti:
		vm.CPU.Write(inst.Rd, boolToReg(AsInt32(vm.CPU.Read(inst.Rs1)) < inst.Imm))
	case decoder.OpSltiu:
		vm.CPU.Write(inst.Rd, boolToReg(vm.CPU.Read(inst.Rs1) < AsUint32(inst.Imm)))
	case decoder.OpXori:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)^AsUint32(inst.Imm))
	case decoder.OpOri:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)|AsUint32(inst.Imm))
	case decoder.OpAndi:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)&AsUint32(inst.Imm))
	case decoder.OpSlli:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)<<inst.Shamt)
	case decoder.OpSrli:
		vm.CPU.Write(inst.Rd, vm.CPU.Read(inst.Rs1)>>inst.Shamt)
	case decoder.OpSrai:
		vm.CPU.Write(inst.Rd, AsUint32(AsInt32(vm.CPU.Read(inst.Rs1))>>inst.Shamt))

	case decoder.OpLb, decoder.OpLh, decoder.OpLw, decoder.OpLbu, decoder.OpLhu:
		return vm.executeLoad(inst)

	case decoder.OpSb, decoder.OpSh, decoder.OpSw:
		return vm.executeStore(inst)

	case decoder.OpBeq, decoder.OpBne, decoder.OpBlt, decoder.OpBge, decoder.OpBltu, decoder.OpBgeu:
		if branchTaken(inst.Op, vm.CPU.Read(inst.Rs1), vm.CPU.Read(inst.Rs2)) {
			*nextPC = AsUint32(int32(pc) + inst.Imm)
			if vm.Statistics != nil {
				vm.Statistics.RecordBranchTaken()
			}
		}

	case decoder.OpJal:
		vm.CPU.Write(inst.Rd, pc+4)
		*nextPC = AsUint32(int32(pc) + inst.Imm)

	case decoder.OpJalr:
		target := (vm.CPU.Read(inst.Rs1) + AsUint32(inst.Imm)) &^ 1
		vm.CPU.Write(inst.Rd, pc+4)
		*nextPC = target

	case decoder.OpLui:
		vm.CPU.Write(inst.Rd, AsUint32(inst.Imm))

	case decoder.OpAuipc:
		vm.CPU.Write(inst.Rd, pc+AsUint32(inst.Imm))

	case decoder.OpEcall:
		return &EcallError{PC: pc}

	case decoder.OpEbreak:
		return &EbreakError{PC: pc}

	case decoder.OpFence:
		// no-op

	default:
		return &IllegalInstructionError{PC: pc}
	}
	return nil
}

func (vm *VM) executeLoad(inst decoder.Instruction) error {
	addr := vm.CPU.Read(inst.Rs1) + AsUint32(inst.Imm)
	switch inst.Op {
	case decoder.OpLb:
		b, err := vm.Memory.ReadByte(addr)
		if err != nil {
			return err
		}
		vm.CPU.Write(inst.Rd, AsUint32(int32(int8(b))))
	case decoder.OpLbu:
		b, err := vm.Memory.ReadByte(addr)
		if err != nil {
			return err
		}
		vm.CPU.Write(inst.Rd, uint32(b))
	case decoder.OpLh:
		h, err := vm.Memory.ReadHalf(addr)
		if err != nil {
			return err
		}
		vm.CPU.Write(inst.Rd, AsUint32(int32(int16(h))))
	case decoder.OpLhu:
		h, err := vm.Memory.ReadHalf(addr)
		if err != nil {
			return err
		}
		vm.CPU.Write(inst.Rd, uint32(h))
	case decoder.OpLw:
		w, err := vm.Memory.ReadWord(addr)
		if err != nil {
			return err
		}
		vm.CPU.Write(inst.Rd, w)
	}
	return nil
}

func (vm *VM) executeStore(inst decoder.Instruction) error {
	addr := vm.CPU.Read(inst.Rs1) + AsUint32(inst.Imm)
	value := vm.CPU.Read(inst.Rs2)
	switch inst.Op {
	case decoder.OpSb:
		return vm.Memory.WriteByte(addr, byte(value))
	case decoder.OpSh:
		return vm.Memory.WriteHalf(addr, uint16(value))
	case decoder.OpSw:
		return vm.Memory.WriteWord(addr, value)
	}
	return nil
}

func branchTaken(op decoder.Op, rs1, rs2 uint32) bool {
	switch op {
	case decoder.OpBeq:
		return rs1 == rs2
	case decoder.OpBne:
		return rs1 != rs2
	case decoder.OpBlt:
		return AsInt32(rs1) < AsInt32(rs2)
	case decoder.OpBge:
		return AsInt32(rs1) >= AsInt32(rs2)
	case decoder.OpBltu:
		return rs1 < rs2
	case decoder.OpBgeu:
		return rs1 >= rs2
	default:
		return false
	}
}

func boolToReg(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
