package decoder

import "fmt"

var mnemonics = map[Op]string{
	OpAdd: "add", OpSub: "sub", OpSll: "sll", OpSlt: "slt", OpSltu: "sltu",
	OpXor: "xor", OpSrl: "srl", OpSra: "sra", OpOr: "or", OpAnd: "and",
	OpAddi: "addi", OpSlti: "slti", OpSltiu: "sltiu", OpXori: "xori",
	OpOri: "ori", OpAndi: "andi", OpSlli: "slli", OpSrli: "srli", OpSrai: "srai",
	OpLb: "lb", OpLh: "lh", OpLw: "lw", OpLbu: "lbu", OpLhu: "lhu",
	OpSb: "sb", OpSh: "sh", OpSw: "sw",
	OpBeq: "beq", OpBne: "bne", OpBlt: "blt", OpBge: "bge", OpBltu: "bltu", OpBgeu: "bgeu",
	OpJal: "jal", OpJalr: "jalr", OpLui: "lui", OpAuipc: "auipc",
	OpEcall: "ecall", OpEbreak: "ebreak", OpFence: "fence",
}

// Mnemonic returns the lower-case RV32I mnemonic for op, or "illegal".
func (op Op) Mnemonic() string {
	if m, ok := mnemonics[op]; ok {
		return m
	}
	return "illegal"
}

func reg(n int) string {
	return fmt.Sprintf("x%d", n)
}

// Disassemble renders a decoded instruction as assembly text, for the
// debugger and TUI disassembly views. It is not a parser round trip:
// register names are always the "xN" form, not ABI aliases.
func Disassemble(inst Instruction) string {
	switch inst.Op {
	case OpAdd, OpSub, OpSll, OpSlt, OpSltu, OpXor, OpSrl, OpSra, OpOr, OpAnd:
		return fmt.Sprintf("%s %s, %s, %s", inst.Op.Mnemonic(), reg(inst.Rd), reg(inst.Rs1), reg(inst.Rs2))

	case OpAddi, OpSlti, OpSltiu, OpXori, OpOri, OpAndi:
		return fmt.Sprintf("%s %s, %s, %d", inst.Op.Mnemonic(), reg(inst.Rd), reg(inst.Rs1), inst.Imm)

	case OpSlli, OpSrli, OpSrai:
		return fmt.Sprintf("%s %s, %s, %d", inst.Op.Mnemonic(), reg(inst.Rd), reg(inst.Rs1), inst.Shamt)

	case OpLb, OpLh, OpLw, OpLbu, OpLhu:
		return fmt.Sprintf("%s %s, %d(%s)", inst.Op.Mnemonic(), reg(inst.Rd), inst.Imm, reg(inst.Rs1))

	case OpJalr:
		return fmt.Sprintf("jalr %s, %d(%s)", reg(inst.Rd), inst.Imm, reg(inst.Rs1))

	case OpSb, OpSh, OpSw:
		return fmt.Sprintf("%s %s, %d(%s)", inst.Op.Mnemonic(), reg(inst.Rs2), inst.Imm, reg(inst.Rs1))

	case OpBeq, OpBne, OpBlt, OpBge, OpBltu, OpBgeu:
		return fmt.Sprintf("%s %s, %s, %d", inst.Op.Mnemonic(), reg(inst.Rs1), reg(inst.Rs2), inst.Imm)

	case OpJal:
		return fmt.Sprintf("jal %s, %d", reg(inst.Rd), inst.Imm)

	case OpLui, OpAuipc:
		return fmt.Sprintf("%s %s, 0x%X", inst.Op.Mnemonic(), reg(inst.Rd), uint32(inst.Imm)>>12)

	case OpEcall, OpEbreak, OpFence:
		return inst.Op.Mnemonic()

	default:
		return "illegal"
	}
}
