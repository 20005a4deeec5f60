package encoder

import (
	"fmt"

	"github.com/rv32emu/rv32emu/parser"
)

// opcode values for the RV32I instruction formats.
const (
	opR       = 0x33
	opIAlu    = 0x13
	opILoad   = 0x03
	opIJalr   = 0x67
	opS       = 0x23
	opB       = 0x63
	opLUI     = 0x37
	opAUIPC   = 0x17
	opJAL     = 0x6F
	opSystem  = 0x73
	wordFence = 0x0000000F
	wordEcall = 0x00000073
	wordEbreak = 0x00100073
)

type rFields struct{ funct3, funct7 uint32 }

var rTypeTable = map[string]rFields{
	"add": {0, 0x00}, "sub": {0, 0x20}, "sll": {1, 0x00}, "slt": {2, 0x00},
	"sltu": {3, 0x00}, "xor": {4, 0x00}, "srl": {5, 0x00}, "sra": {5, 0x20},
	"or": {6, 0x00}, "and": {7, 0x00},
}

var iAluTable = map[string]uint32{
	"addi": 0, "slti": 2, "sltiu": 3, "xori": 4, "ori": 6, "andi": 7,
}

type shiftFields struct{ funct3, variant uint32 }

var shiftTable = map[string]shiftFields{
	"slli": {1, 0x00}, "srli": {5, 0x00}, "srai": {5, 0x20},
}

var loadTable = map[string]uint32{
	"lb": 0, "lh": 1, "lw": 2, "lbu": 4, "lhu": 5,
}

var storeTable = map[string]uint32{
	"sb": 0, "sh": 1, "sw": 2,
}

var branchTable = map[string]uint32{
	"beq": 0, "bne": 1, "blt": 4, "bge": 5, "bltu": 6, "bgeu": 7,
}

// EncodeInstruction produces the 32-bit machine word for one parsed
// instruction statement. addr is the address the instruction is placed
// at, needed to compute PC-relative branch/jump displacements.
func EncodeInstruction(stmt *parser.Statement, addr uint32, symbols *parser.SymbolTable) (uint32, error) {
	mnemonic := stmt.Name
	ops := stmt.Operands

	if f, ok := rTypeTable[mnemonic]; ok {
		rd, rs1, rs2, err := threeRegisters(ops)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", mnemonic, err)
		}
		return f.funct7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | f.funct3<<12 | uint32(rd)<<7 | opR, nil
	}

	if funct3, ok := shiftTable[mnemonic]; ok {
		rd, rs1, shamt, err := regRegShamt(ops)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", mnemonic, err)
		}
		if shamt < 0 || shamt > 31 {
			return 0, fmt.Errorf("%s: shift amount %d out of range 0-31", mnemonic, shamt)
		}
		return funct3.variant<<25 | uint32(shamt)<<20 | uint32(rs1)<<15 | funct3.funct3<<12 | uint32(rd)<<7 | opIAlu, nil
	}

	if funct3, ok := iAluTable[mnemonic]; ok {
		rd, rs1, imm, err := regRegImm(ops)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", mnemonic, err)
		}
		return encodeIType(opIAlu, funct3, rd, rs1, imm), nil
	}

	if funct3, ok := loadTable[mnemonic]; ok {
		rd, base, offset, err := loadStoreOperand(ops)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", mnemonic, err)
		}
		return encodeIType(opILoad, funct3, rd, base, offset), nil
	}

	if mnemonic == "jalr" {
		rd, base, offset, err := loadStoreOperand(ops)
		if err != nil {
			return 0, fmt.Errorf("jalr: %w", err)
		}
		return encodeIType(opIJalr, 0, rd, base, offset), nil
	}

	if funct3, ok := storeTable[mnemonic]; ok {
		src, base, offset, err := loadStoreOperand(ops)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", mnemonic, err)
		}
		return encodeSType(funct3, base, src, offset), nil
	}

	if funct3, ok := branchTable[mnemonic]; ok {
		rs1, rs2, target, err := branchOperand(ops, addr, symbols)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", mnemonic, err)
		}
		return encodeBType(funct3, rs1, rs2, target), nil
	}

	switch mnemonic {
	case "lui", "auipc":
		rd, imm, err := regImm(ops)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", mnemonic, err)
		}
		opcode := uint32(opLUI)
		if mnemonic == "auipc" {
			opcode = opAUIPC
		}
		return (uint32(imm)<<12 &^ 0xFFF) | uint32(rd)<<7 | opcode, nil

	case "jal":
		rd, target, err := jumpOperand(ops, addr, symbols)
		if err != nil {
			return 0, fmt.Errorf("jal: %w", err)
		}
		return encodeJType(rd, target), nil

	case "ecall":
		return wordEcall, nil
	case "ebreak":
		return wordEbreak, nil
	case "fence":
		return wordFence, nil
	}

	return 0, fmt.Errorf("unsupported mnemonic: %s", mnemonic)
}

func encodeIType(opcode, funct3 uint32, rd, rs1 int, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

func encodeSType(funct3 uint32, rs1, rs2 int, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>5)&0x7F)<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | (u&0x1F)<<7 | opS
}

func encodeBType(funct3 uint32, rs1, rs2 int, imm int32) uint32 {
	u := uint32(imm)
	imm12 := (u >> 12) & 1
	imm11 := (u >> 11) & 1
	imm10_5 := (u >> 5) & 0x3F
	imm4_1 := (u >> 1) & 0xF
	return imm12<<31 | imm10_5<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | imm4_1<<8 | imm11<<7 | opB
}

func encodeJType(rd int, imm int32) uint32 {
	u := uint32(imm)
	imm20 := (u >> 20) & 1
	imm10_1 := (u >> 1) & 0x3FF
	imm11 := (u >> 11) & 1
	imm19_12 := (u >> 12) & 0xFF
	return imm20<<31 | imm10_1<<21 | imm11<<20 | imm19_12<<12 | uint32(rd)<<7 | opJAL
}

func threeRegisters(ops []parser.Operand) (rd, rs1, rs2 int, err error) {
	if len(ops) != 3 || ops[0].Kind != parser.OperandRegister || ops[1].Kind != parser.OperandRegister || ops[2].Kind != parser.OperandRegister {
		return 0, 0, 0, fmt.Errorf("expected rd, rs1, rs2")
	}
	return ops[0].Reg, ops[1].Reg, ops[2].Reg, nil
}

func regRegImm(ops []parser.Operand) (rd, rs1 int, imm int32, err error) {
	if len(ops) != 3 || ops[0].Kind != parser.OperandRegister || ops[1].Kind != parser.OperandRegister || ops[2].Kind != parser.OperandImmediate {
		return 0, 0, 0, fmt.Errorf("expected rd, rs1, immediate")
	}
	return ops[0].Reg, ops[1].Reg, ops[2].Imm, nil
}

func regRegShamt(ops []parser.Operand) (rd, rs1 int, shamt int32, err error) {
	return regRegImm(ops)
}

func regImm(ops []parser.Operand) (rd int, imm int32, err error) {
	if len(ops) != 2 || ops[0].Kind != parser.OperandRegister || ops[1].Kind != parser.OperandImmediate {
		return 0, 0, fmt.Errorf("expected rd, immediate")
	}
	return ops[0].Reg, ops[1].Imm, nil
}

// loadStoreOperand parses `rd, offset(base)` (loads, jalr) or
// `src, offset(base)` (stores) into its three parts.
func loadStoreOperand(ops []parser.Operand) (reg, base int, offset int32, err error) {
	if len(ops) != 2 || ops[0].Kind != parser.OperandRegister || ops[1].Kind != parser.OperandMemory {
		return 0, 0, 0, fmt.Errorf("expected register, offset(base)")
	}
	if ops[1].MemOffsetIsLabel {
		return 0, 0, 0, fmt.Errorf("label offsets are not supported in memory operands")
	}
	return ops[0].Reg, ops[1].Reg, ops[1].Imm, nil
}

func branchOperand(ops []parser.Operand, addr uint32, symbols *parser.SymbolTable) (rs1, rs2 int, pcRelative int32, err error) {
	if len(ops) != 3 || ops[0].Kind != parser.OperandRegister || ops[1].Kind != parser.OperandRegister {
		return 0, 0, 0, fmt.Errorf("expected rs1, rs2, target")
	}
	target, err := resolveBranchTarget(ops[2], symbols)
	if err != nil {
		return 0, 0, 0, err
	}
	// #nosec G115 -- addresses stay well within int32 range for any realistic program
	pcRelative = int32(target) - int32(addr)
	return ops[0].Reg, ops[1].Reg, pcRelative, nil
}

func jumpOperand(ops []parser.Operand, addr uint32, symbols *parser.SymbolTable) (rd int, pcRelative int32, err error) {
	if len(ops) != 2 || ops[0].Kind != parser.OperandRegister {
		return 0, 0, fmt.Errorf("expected rd, target")
	}
	target, err := resolveBranchTarget(ops[1], symbols)
	if err != nil {
		return 0, 0, err
	}
	// #nosec G115 -- addresses stay well within int32 range for any realistic program
	pcRelative = int32(target) - int32(addr)
	return ops[0].Reg, pcRelative, nil
}

func resolveBranchTarget(op parser.Operand, symbols *parser.SymbolTable) (uint32, error) {
	switch op.Kind {
	case parser.OperandLabel:
		return symbols.Get(op.Label)
	case parser.OperandImmediate:
		return uint32(op.Imm), nil
	default:
		return 0, fmt.Errorf("expected a label or immediate branch target")
	}
}
