// Package loader wires an assembled program into a fresh VM's memory.
package loader

import (
	"fmt"

	"github.com/rv32emu/rv32emu/encoder"
	"github.com/rv32emu/rv32emu/parser"
	"github.com/rv32emu/rv32emu/vm"
)

// DefaultEntrySymbol is the label the loader looks for when the caller
// does not name an explicit entry point.
const DefaultEntrySymbol = "main"

// Load installs out's text and data bytes into machine's memory and
// sets the CPU's PC to the program's entry point. entrySymbol, if
// non-empty, is looked up in symbols; an unresolved symbol is an
// error. An empty entrySymbol falls back to DefaultEntrySymbol, and
// if that label is absent too, execution starts at the text segment's
// base (the assembler's own convention: a program with no "main"
// label just runs from the top).
func Load(machine *vm.VM, out *encoder.Output, symbols *parser.SymbolTable, entrySymbol string) error {
	machine.Load(out.Text, out.Data)

	entry, err := resolveEntry(symbols, entrySymbol)
	if err != nil {
		return err
	}
	machine.CPU.PC = entry
	return nil
}

func resolveEntry(symbols *parser.SymbolTable, entrySymbol string) (uint32, error) {
	if entrySymbol != "" {
		addr, err := symbols.Get(entrySymbol)
		if err != nil {
			return 0, fmt.Errorf("entry symbol %q: %w", entrySymbol, err)
		}
		return addr, nil
	}
	if addr, err := symbols.Get(DefaultEntrySymbol); err == nil {
		return addr, nil
	}
	return vm.TextBase, nil
}
