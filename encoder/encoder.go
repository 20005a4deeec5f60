// Package encoder turns a parsed statement list and its symbol table into
// bit-exact RV32I machine code plus a source-level debug map.
package encoder

import (
	"strings"

	"github.com/rv32emu/rv32emu/isa"
	"github.com/rv32emu/rv32emu/parser"
)

// DebugEntry maps an emitted address back to the source line it came
// from, for the debugger and TUI.
type DebugEntry struct {
	Line    int
	RawText string
	Section string
}

// Output is the encoder's product: the two byte segments and the debug
// map that the loader and UI consume.
type Output struct {
	Text     []byte
	Data     []byte
	DebugMap map[uint32]DebugEntry
}

// Encode runs the second assembly pass over statements, resolving label
// operands against symbols and emitting machine words and data bytes.
// Errors are batched: a statement that fails to encode records an error
// and encoding continues, so the caller sees every problem in one build.
// A failed instruction still emits four zero bytes; a failed directive
// emits nothing. The
// returned ErrorList is non-empty on any failure; Output is valid only
// when it is empty.
func Encode(statements []*parser.Statement, symbols *parser.SymbolTable, source string) (*Output, *parser.ErrorList) {
	sourceLines := strings.Split(source, "\n")
	errs := &parser.ErrorList{}

	out := &Output{DebugMap: make(map[uint32]DebugEntry)}

	section := isa.SectionText
	textOffset := uint32(0)
	dataOffset := uint32(0)

	rawLine := func(line int) string {
		if line < 1 || line > len(sourceLines) {
			return ""
		}
		return sourceLines[line-1]
	}

	emit := func(addr uint32, bytes []byte) {
		if section == isa.SectionData {
			out.Data = append(out.Data, bytes...)
			dataOffset += uint32(len(bytes))
		} else {
			out.Text = append(out.Text, bytes...)
			textOffset += uint32(len(bytes))
		}
	}

	currentOffset := func() uint32 {
		if section == isa.SectionData {
			return dataOffset
		}
		return textOffset
	}
	currentBase := func() uint32 {
		if section == isa.SectionData {
			return isa.DataBase
		}
		return isa.TextBase
	}

	for _, stmt := range statements {
		switch stmt.Kind {
		case parser.StmtLabel:
			continue

		case parser.StmtInstruction:
			addr := currentBase() + currentOffset()
			out.DebugMap[addr] = DebugEntry{Line: stmt.Line, RawText: rawLine(stmt.Line), Section: section}
			word, err := EncodeInstruction(stmt, addr, symbols)
			if err != nil {
				errs.AddError(parser.NewError(stmt.Pos, parser.ErrorInvalidInstruction, err.Error()))
				emit(addr, []byte{0, 0, 0, 0})
				continue
			}
			emit(addr, littleEndian32(word))

		case parser.StmtDirective:
			switch stmt.Name {
			case ".text":
				section = isa.SectionText
				continue
			case ".data":
				section = isa.SectionData
				continue
			}

			addr := currentBase() + currentOffset()
			out.DebugMap[addr] = DebugEntry{Line: stmt.Line, RawText: rawLine(stmt.Line), Section: section}
			bytes, err := encodeDirective(stmt, symbols, currentOffset())
			if err != nil {
				errs.AddError(parser.NewError(stmt.Pos, parser.ErrorInvalidDirective, err.Error()))
				continue
			}
			emit(addr, bytes)
		}
	}

	return out, errs
}

func littleEndian32(word uint32) []byte {
	return []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
}

func littleEndian16(half uint16) []byte {
	return []byte{byte(half), byte(half >> 8)}
}
