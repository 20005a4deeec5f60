// Package decoder converts 32-bit RV32I machine words into a typed
// instruction representation, the inverse of package encoder.
package decoder

// Op tags a decoded Instruction's RV32I opcode/funct3/funct7 combination.
type Op int

const (
	OpIllegal Op = iota
	OpAdd
	OpSub
	OpSll
	OpSlt
	OpSltu
	OpXor
	OpSrl
	OpSra
	OpOr
	OpAnd
	OpAddi
	OpSlti
	OpSltiu
	OpXori
	OpOri
	OpAndi
	OpSlli
	OpSrli
	OpSrai
	OpLb
	OpLh
	OpLw
	OpLbu
	OpLhu
	OpSb
	OpSh
	OpSw
	OpBeq
	OpBne
	OpBlt
	OpBge
	OpBltu
	OpBgeu
	OpJal
	OpJalr
	OpLui
	OpAuipc
	OpEcall
	OpEbreak
	OpFence
)

// Instruction is a tagged decoded instruction. Fields not meaningful for
// a given Op are left zero. Imm is always sign-extended to a full signed
// 32-bit value by the time Decode returns it; execute never sees a raw
// bit field.
type Instruction struct {
	Op    Op
	Rd    int
	Rs1   int
	Rs2   int
	Imm   int32
	Shamt uint32
}

const (
	opcodeR      = 0x33
	opcodeIAlu   = 0x13
	opcodeILoad  = 0x03
	opcodeJalr   = 0x67
	opcodeS      = 0x23
	opcodeB      = 0x63
	opcodeLUI    = 0x37
	opcodeAUIPC  = 0x17
	opcodeJAL    = 0x6F
	opcodeSystem = 0x73
	opcodeFence  = 0x0F
)

var rTypeOps = map[[2]uint32]Op{
	{0, 0x00}: OpAdd, {0, 0x20}: OpSub, {1, 0x00}: OpSll, {2, 0x00}: OpSlt,
	{3, 0x00}: OpSltu, {4, 0x00}: OpXor, {5, 0x00}: OpSrl, {5, 0x20}: OpSra,
	{6, 0x00}: OpOr, {7, 0x00}: OpAnd,
}

var iAluOps = map[uint32]Op{
	0: OpAddi, 2: OpSlti, 3: OpSltiu, 4: OpXori, 6: OpOri, 7: OpAndi,
}

var loadOps = map[uint32]Op{
	0: OpLb, 1: OpLh, 2: OpLw, 4: OpLbu, 5: OpLhu,
}

var storeOps = map[uint32]Op{
	0: OpSb, 1: OpSh, 2: OpSw,
}

var branchOps = map[uint32]Op{
	0: OpBeq, 1: OpBne, 4: OpBlt, 5: OpBge, 6: OpBltu, 7: OpBgeu,
}

// Decode decodes one 32-bit machine word. Unknown (opcode, funct3,
// funct7) combinations, and jalr with a non-zero funct3, decode to
// OpIllegal.
func Decode(word uint32) Instruction {
	opcode := word & 0x7F
	rd := int((word >> 7) & 0x1F)
	funct3 := (word >> 12) & 0x7
	rs1 := int((word >> 15) & 0x1F)
	rs2 := int((word >> 20) & 0x1F)
	funct7 := (word >> 25) & 0x7F

	switch opcode {
	case opcodeR:
		op, ok := rTypeOps[[2]uint32{funct3, funct7}]
		if !ok {
			return Instruction{Op: OpIllegal}
		}
		return Instruction{Op: op, Rd: rd, Rs1: rs1, Rs2: rs2}

	case opcodeIAlu:
		return decodeIAlu(word, funct3, rd, rs1)

	case opcodeILoad:
		op, ok := loadOps[funct3]
		if !ok {
			return Instruction{Op: OpIllegal}
		}
		return Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: signExtend(word>>20, 12)}

	case opcodeJalr:
		if funct3 != 0 {
			return Instruction{Op: OpIllegal}
		}
		return Instruction{Op: OpJalr, Rd: rd, Rs1: rs1, Imm: signExtend(word>>20, 12)}

	case opcodeS:
		op, ok := storeOps[funct3]
		if !ok {
			return Instruction{Op: OpIllegal}
		}
		imm11_5 := (word >> 25) & 0x7F
		imm4_0 := (word >> 7) & 0x1F
		imm := signExtend((imm11_5<<5)|imm4_0, 12)
		return Instruction{Op: op, Rs1: rs1, Rs2: rs2, Imm: imm}

	case opcodeB:
		op, ok := branchOps[funct3]
		if !ok {
			return Instruction{Op: OpIllegal}
		}
		imm12 := (word >> 31) & 1
		imm11 := (word >> 7) & 1
		imm10_5 := (word >> 25) & 0x3F
		imm4_1 := (word >> 8) & 0xF
		raw := (imm12 << 12) | (imm11 << 11) | (imm10_5 << 5) | (imm4_1 << 1)
		return Instruction{Op: op, Rs1: rs1, Rs2: rs2, Imm: signExtend(raw, 13)}

	case opcodeLUI:
		return Instruction{Op: OpLui, Rd: rd, Imm: int32(word &^ 0xFFF)}

	case opcodeAUIPC:
		return Instruction{Op: OpAuipc, Rd: rd, Imm: int32(word &^ 0xFFF)}

	case opcodeJAL:
		imm20 := (word >> 31) & 1
		imm19_12 := (word >> 12) & 0xFF
		imm11 := (word >> 20) & 1
		imm10_1 := (word >> 21) & 0x3FF
		raw := (imm20 << 20) | (imm19_12 << 12) | (imm11 << 11) | (imm10_1 << 1)
		return Instruction{Op: OpJal, Rd: rd, Imm: signExtend(raw, 21)}

	case opcodeSystem:
		switch word {
		case 0x00000073:
			return Instruction{Op: OpEcall}
		case 0x00100073:
			return Instruction{Op: OpEbreak}
		default:
			return Instruction{Op: OpIllegal}
		}

	case opcodeFence:
		if word == 0x0000000F {
			return Instruction{Op: OpFence}
		}
		return Instruction{Op: OpIllegal}

	default:
		return Instruction{Op: OpIllegal}
	}
}

func decodeIAlu(word, funct3 uint32, rd, rs1 int) Instruction {
	if funct3 == 1 || funct3 == 5 {
		variant := (word >> 25) & 0x7F
		shamt := (word >> 20) & 0x1F
		switch {
		case funct3 == 1 && variant == 0x00:
			return Instruction{Op: OpSlli, Rd: rd, Rs1: rs1, Shamt: shamt}
		case funct3 == 5 && variant == 0x00:
			return Instruction{Op: OpSrli, Rd: rd, Rs1: rs1, Shamt: shamt}
		case funct3 == 5 && variant == 0x20:
			return Instruction{Op: OpSrai, Rd: rd, Rs1: rs1, Shamt: shamt}
		default:
			return Instruction{Op: OpIllegal}
		}
	}
	op, ok := iAluOps[funct3]
	if !ok {
		return Instruction{Op: OpIllegal}
	}
	return Instruction{Op: op, Rd: rd, Rs1: rs1, Imm: signExtend(word>>20, 12)}
}

// signExtend sign-extends the low `bits` bits of value to a full int32.
func signExtend(value uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(value<<shift) >> shift
}
