package parser

import (
	"fmt"

	"github.com/rv32emu/rv32emu/isa"
)

// BuildSymbolTable performs the single linear symbol-table pass described
// in the symbol table component: it tracks the current section and a byte
// offset per section, relative to the fixed section bases, assigning each
// label the address at which it appears.
func BuildSymbolTable(statements []*Statement) (*SymbolTable, error) {
	st := NewSymbolTable()

	section := isa.SectionText
	textOffset := uint32(0)
	dataOffset := uint32(0)

	offset := func() uint32 {
		if section == isa.SectionData {
			return dataOffset
		}
		return textOffset
	}
	base := func() uint32 {
		if section == isa.SectionData {
			return isa.DataBase
		}
		return isa.TextBase
	}
	advance := func(n uint32) {
		if section == isa.SectionData {
			dataOffset += n
		} else {
			textOffset += n
		}
	}

	for _, stmt := range statements {
		switch stmt.Kind {
		case StmtLabel:
			addr := base() + offset()
			if err := st.Define(stmt.Name, addr, stmt.Pos); err != nil {
				return nil, NewError(stmt.Pos, ErrorDuplicateLabel, err.Error())
			}

		case StmtInstruction:
			if section == isa.SectionData {
				return nil, NewError(stmt.Pos, ErrorSyntax,
					fmt.Sprintf("instruction %q is not allowed in the .data section", stmt.Name))
			}
			advance(4)

		case StmtDirective:
			switch stmt.Name {
			case ".text":
				section = isa.SectionText
			case ".data":
				section = isa.SectionData
			default:
				size, err := DirectiveSize(stmt.Name, stmt.Operands, offset())
				if err != nil {
					return nil, NewError(stmt.Pos, ErrorInvalidDirective, err.Error())
				}
				advance(size)
			}
		}
	}

	// Collect label references from operands so ResolveForwardReferences
	// can report a useful position for an undefined symbol.
	for _, stmt := range statements {
		for _, op := range stmt.Operands {
			switch op.Kind {
			case OperandLabel:
				st.Reference(op.Label, stmt.Pos)
			case OperandMemory:
				if op.MemOffsetIsLabel {
					st.Reference(op.Label, stmt.Pos)
				}
			}
		}
	}

	if err := st.ResolveForwardReferences(); err != nil {
		return nil, err
	}

	return st, nil
}

// DirectiveSize computes the number of bytes a directive statement
// reserves in its section, per the directive-size table. currentOffset
// is the section-relative offset at which the directive appears (needed
// only for `.align`).
func DirectiveSize(name string, operands []Operand, currentOffset uint32) (uint32, error) {
	switch name {
	case ".byte":
		return uint32(len(operands)), nil

	case ".half":
		return uint32(len(operands)) * 2, nil

	case ".word":
		return uint32(len(operands)) * 4, nil

	case ".ascii":
		var total uint32
		for _, op := range operands {
			if op.Kind != OperandString {
				return 0, fmt.Errorf("%s requires string literal operands", name)
			}
			total += uint32(len(op.Str))
		}
		return total, nil

	case ".asciz", ".string":
		var total uint32
		for _, op := range operands {
			if op.Kind != OperandString {
				return 0, fmt.Errorf("%s requires string literal operands", name)
			}
			total += uint32(len(op.Str)) + 1
		}
		return total, nil

	case ".space":
		if len(operands) != 1 || operands[0].Kind != OperandImmediate {
			return 0, fmt.Errorf(".space requires a single immediate operand")
		}
		if operands[0].Imm < 0 {
			return 0, fmt.Errorf(".space size must not be negative")
		}
		return uint32(operands[0].Imm), nil

	case ".align":
		if len(operands) != 1 || operands[0].Kind != OperandImmediate {
			return 0, fmt.Errorf(".align requires a single immediate operand")
		}
		if operands[0].Imm < 0 || operands[0].Imm > 31 {
			return 0, fmt.Errorf(".align power must be between 0 and 31")
		}
		alignTo := uint32(1) << uint(operands[0].Imm)
		mask := alignTo - 1
		aligned := (currentOffset + mask) &^ mask
		return aligned - currentOffset, nil

	default:
		return 0, nil
	}
}
