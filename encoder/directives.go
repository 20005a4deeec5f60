package encoder

import (
	"fmt"

	"github.com/rv32emu/rv32emu/parser"
)

// encodeDirective produces the bytes a data/alignment directive emits,
// following the same size rules the symbol table pass used to reserve
// space for it (parser.DirectiveSize).
func encodeDirective(stmt *parser.Statement, symbols *parser.SymbolTable, currentOffset uint32) ([]byte, error) {
	switch stmt.Name {
	case ".byte":
		bytes := make([]byte, 0, len(stmt.Operands))
		for _, op := range stmt.Operands {
			v, err := resolveOperandValue(op, symbols)
			if err != nil {
				return nil, err
			}
			bytes = append(bytes, byte(v))
		}
		return bytes, nil

	case ".half":
		bytes := make([]byte, 0, len(stmt.Operands)*2)
		for _, op := range stmt.Operands {
			v, err := resolveOperandValue(op, symbols)
			if err != nil {
				return nil, err
			}
			bytes = append(bytes, littleEndian16(uint16(v))...)
		}
		return bytes, nil

	case ".word":
		bytes := make([]byte, 0, len(stmt.Operands)*4)
		for _, op := range stmt.Operands {
			v, err := resolveOperandValue(op, symbols)
			if err != nil {
				return nil, err
			}
			bytes = append(bytes, littleEndian32(v)...)
		}
		return bytes, nil

	case ".ascii":
		var bytes []byte
		for _, op := range stmt.Operands {
			if op.Kind != parser.OperandString {
				return nil, fmt.Errorf("%s requires string literal operands", stmt.Name)
			}
			bytes = append(bytes, []byte(op.Str)...)
		}
		return bytes, nil

	case ".asciz", ".string":
		var bytes []byte
		for _, op := range stmt.Operands {
			if op.Kind != parser.OperandString {
				return nil, fmt.Errorf("%s requires string literal operands", stmt.Name)
			}
			bytes = append(bytes, []byte(op.Str)...)
			bytes = append(bytes, 0)
		}
		return bytes, nil

	case ".space":
		size, err := parser.DirectiveSize(stmt.Name, stmt.Operands, currentOffset)
		if err != nil {
			return nil, err
		}
		return make([]byte, size), nil

	case ".align":
		size, err := parser.DirectiveSize(stmt.Name, stmt.Operands, currentOffset)
		if err != nil {
			return nil, err
		}
		return make([]byte, size), nil

	default:
		return nil, nil
	}
}

// resolveOperandValue resolves a .byte/.half/.word operand, which may be
// a literal immediate or a label reference, to its 32-bit value.
func resolveOperandValue(op parser.Operand, symbols *parser.SymbolTable) (uint32, error) {
	switch op.Kind {
	case parser.OperandImmediate:
		return uint32(op.Imm), nil
	case parser.OperandLabel:
		return symbols.Get(op.Label)
	default:
		return 0, fmt.Errorf("expected immediate or label operand")
	}
}
