package decoder_test

import (
	"testing"

	"github.com/rv32emu/rv32emu/decoder"
)

func TestDecodeAdd(t *testing.T) {
	inst := decoder.Decode(0x003100B3) // add x1, x2, x3
	if inst.Op != decoder.OpAdd {
		t.Fatalf("expected OpAdd, got %v", inst.Op)
	}
	if inst.Rd != 1 || inst.Rs1 != 2 || inst.Rs2 != 3 {
		t.Fatalf("unexpected operands: %+v", inst)
	}
}

func TestDecodeAddiNegative(t *testing.T) {
	inst := decoder.Decode(0xFFF10093) // addi x1, x2, -1
	if inst.Op != decoder.OpAddi {
		t.Fatalf("expected OpAddi, got %v", inst.Op)
	}
	if inst.Rd != 1 || inst.Rs1 != 2 || inst.Imm != -1 {
		t.Fatalf("unexpected fields: %+v", inst)
	}
}

func TestDecodeJalrKeepsImmediateLSB(t *testing.T) {
	inst := decoder.Decode(0x00110067) // jalr x0, 1(x2)
	if inst.Op != decoder.OpJalr {
		t.Fatalf("expected OpJalr, got %v", inst.Op)
	}
	if inst.Imm != 1 {
		t.Fatalf("expected imm 1, got %d", inst.Imm)
	}
}

func TestDecodeJalrNonZeroFunct3Illegal(t *testing.T) {
	word := uint32(0x00111067) // funct3 = 1, should be illegal
	inst := decoder.Decode(word)
	if inst.Op != decoder.OpIllegal {
		t.Fatalf("expected OpIllegal for jalr with non-zero funct3, got %v", inst.Op)
	}
}

func TestDecodeUnknownOpcodeIllegal(t *testing.T) {
	inst := decoder.Decode(0x00000001)
	if inst.Op != decoder.OpIllegal {
		t.Fatalf("expected OpIllegal, got %v", inst.Op)
	}
}

func TestDecodeShiftVariants(t *testing.T) {
	// srli x1, x2, 5: funct3=5, variant=0x00
	srli := decoder.Decode(0x00515093)
	if srli.Op != decoder.OpSrli || srli.Shamt != 5 {
		t.Fatalf("unexpected srli decode: %+v", srli)
	}

	// srai x1, x2, 5: funct3=5, variant=0x20
	srai := decoder.Decode(0x40515093)
	if srai.Op != decoder.OpSrai || srai.Shamt != 5 {
		t.Fatalf("unexpected srai decode: %+v", srai)
	}
}

func TestDecodeBranchSignExtension(t *testing.T) {
	// beq x1, x2, -2 : imm field all set to represent -2 (bit0 implicit 0)
	// encode manually: imm=-2 -> u=0xFFFFFFFE
	// imm12=1 imm11=1 imm10_5=0x3F imm4_1=0xF
	word := uint32(1)<<31 | uint32(0x3F)<<25 | uint32(2)<<20 | uint32(1)<<15 | uint32(0)<<12 | uint32(0xF)<<8 | uint32(1)<<7 | 0x63
	inst := decoder.Decode(word)
	if inst.Op != decoder.OpBeq {
		t.Fatalf("expected OpBeq, got %v", inst.Op)
	}
	if inst.Imm != -2 {
		t.Fatalf("expected imm -2, got %d", inst.Imm)
	}
}

func TestDecodeLui(t *testing.T) {
	inst := decoder.Decode(0x000010B7) // lui x1, 1
	if inst.Op != decoder.OpLui {
		t.Fatalf("expected OpLui, got %v", inst.Op)
	}
	if inst.Imm != 0x1000 {
		t.Fatalf("expected imm 0x1000, got 0x%X", inst.Imm)
	}
}

func TestDecodeSystemInstructions(t *testing.T) {
	if decoder.Decode(0x00000073).Op != decoder.OpEcall {
		t.Fatal("expected ecall to decode")
	}
	if decoder.Decode(0x00100073).Op != decoder.OpEbreak {
		t.Fatal("expected ebreak to decode")
	}
	if decoder.Decode(0x0000000F).Op != decoder.OpFence {
		t.Fatal("expected fence to decode")
	}
}

func TestDisassembleRoundTripText(t *testing.T) {
	inst := decoder.Decode(0x003100B3)
	got := decoder.Disassemble(inst)
	want := "add x1, x2, x3"
	if got != want {
		t.Fatalf("Disassemble = %q, want %q", got, want)
	}
}
