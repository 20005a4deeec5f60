// Package isa holds the RV32I memory map and register-naming tables shared
// by the parser, encoder, decoder, vm, and loader packages.
package isa

// Segment bases. Fixed per the RV32I toolchain's memory map: code at
// TextBase, initialized data at DataBase, and a single-region stack
// occupying StackSize bytes starting at StackBase.
const (
	TextBase  uint32 = 0x0040_0000
	DataBase  uint32 = 0x1001_0000
	StackBase uint32 = 0x7FFF_FFFF
	StackSize uint32 = 1 << 20 // 1 MiB

	// HeapBase sits above the data segment's typical footprint, far
	// enough that ordinary programs never collide with it. Nothing
	// auto-populates this region; it exists so ECALL-surfaced
	// memory-growth experiments have somewhere addressable to target.
	HeapBase uint32 = 0x1002_0000
	HeapSize uint32 = 1 << 20 // 1 MiB
)

// Section names as used in the debug map and symbol table.
const (
	SectionText = ".text"
	SectionData = ".data"
)

// abiAliases maps ABI register names to xN indices. fp aliases s0.
var abiAliases = map[string]int{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23, "s8": 24, "s9": 25, "s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// RegisterByName resolves a register token (either "xN" or an ABI alias)
// to its index 0-31. Returns ok=false if name is neither.
func RegisterByName(name string) (int, bool) {
	if n, ok := abiAliases[name]; ok {
		return n, true
	}
	if len(name) >= 2 && name[0] == 'x' {
		n := 0
		for _, c := range name[1:] {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
		}
		if n >= 0 && n <= 31 {
			return n, true
		}
	}
	return 0, false
}

// Mnemonics is the set of recognized RV32I base-instruction mnemonics,
// lower-cased, used by the lexer to classify identifiers.
var Mnemonics = map[string]bool{
	"add": true, "sub": true, "sll": true, "slt": true, "sltu": true,
	"xor": true, "srl": true, "sra": true, "or": true, "and": true,
	"addi": true, "slti": true, "sltiu": true, "xori": true, "ori": true, "andi": true,
	"slli": true, "srli": true, "srai": true,
	"lb": true, "lh": true, "lw": true, "lbu": true, "lhu": true,
	"sb": true, "sh": true, "sw": true,
	"beq": true, "bne": true, "blt": true, "bge": true, "bltu": true, "bgeu": true,
	"jal": true, "jalr": true,
	"lui": true, "auipc": true,
	"ecall": true, "ebreak": true, "fence": true,
}
