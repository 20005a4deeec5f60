package parser

import "fmt"

// Symbol is a label bound to an absolute address in the text or data
// segment.
type Symbol struct {
	Name       string
	Value      uint32
	Defined    bool
	Pos        Position
	References []Position
}

// SymbolTable maps label names to absolute addresses. Built in a single
// linear pass over statements (see BuildSymbolTable); a name appears at
// most once, and a forward reference that is never defined is an error.
type SymbolTable struct {
	symbols map[string]*Symbol
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Define binds name to value. Defining an already-defined symbol is an
// error; defining a symbol that was only referenced so far (a forward
// reference) fills in its address.
func (st *SymbolTable) Define(name string, value uint32, pos Position) error {
	if sym, exists := st.symbols[name]; exists {
		if sym.Defined {
			return fmt.Errorf("symbol %q already defined at %s", name, sym.Pos)
		}
		sym.Value = value
		sym.Defined = true
		sym.Pos = pos
		return nil
	}

	st.symbols[name] = &Symbol{Name: name, Value: value, Defined: true, Pos: pos}
	return nil
}

// Reference records that name is used at pos, creating a forward
// reference entry if name has not been seen yet.
func (st *SymbolTable) Reference(name string, pos Position) {
	if sym, exists := st.symbols[name]; exists {
		sym.References = append(sym.References, pos)
		return
	}
	st.symbols[name] = &Symbol{Name: name, Pos: pos, References: []Position{pos}}
}

// Lookup returns the symbol named name, if any.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, exists := st.symbols[name]
	return sym, exists
}

// Get returns name's address, or an error if it is undefined.
func (st *SymbolTable) Get(name string) (uint32, error) {
	sym, exists := st.symbols[name]
	if !exists {
		return 0, fmt.Errorf("undefined symbol: %q", name)
	}
	if !sym.Defined {
		return 0, fmt.Errorf("symbol %q used but not defined", name)
	}
	return sym.Value, nil
}

// GetUndefinedSymbols returns every symbol that was referenced but never
// defined.
func (st *SymbolTable) GetUndefinedSymbols() []*Symbol {
	undefined := make([]*Symbol, 0)
	for _, sym := range st.symbols {
		if !sym.Defined {
			undefined = append(undefined, sym)
		}
	}
	return undefined
}

// ResolveForwardReferences fails if any referenced symbol was never
// defined.
func (st *SymbolTable) ResolveForwardReferences() error {
	undefined := st.GetUndefinedSymbols()
	if len(undefined) > 0 {
		sym := undefined[0]
		if len(sym.References) > 0 {
			return fmt.Errorf("undefined symbol %q referenced at %s", sym.Name, sym.References[0])
		}
		return fmt.Errorf("undefined symbol %q", sym.Name)
	}
	return nil
}

// GetAllSymbols returns the full symbol map, keyed by name.
func (st *SymbolTable) GetAllSymbols() map[string]*Symbol {
	return st.symbols
}

// Clear empties the symbol table.
func (st *SymbolTable) Clear() {
	st.symbols = make(map[string]*Symbol)
}
