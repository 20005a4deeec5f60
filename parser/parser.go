package parser

import "fmt"

// OperandKind classifies a parsed Operand.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandLabel
	OperandString
	OperandMemory
)

// Operand is a single parsed instruction or directive argument. For
// OperandMemory, Reg is the base register and the offset is either Imm
// (MemOffsetIsLabel == false) or Label (MemOffsetIsLabel == true).
type Operand struct {
	Kind             OperandKind
	Reg              int
	Imm              int32
	Label            string
	Str              string
	MemOffsetIsLabel bool
}

// StatementKind classifies a parsed Statement.
type StatementKind int

const (
	StmtLabel StatementKind = iota
	StmtInstruction
	StmtDirective
)

// Statement is one parsed line element: a label definition, an
// instruction, or a directive. Name holds the label name, the lower-case
// mnemonic, or the directive name (with its leading '.').
type Statement struct {
	Kind     StatementKind
	Line     int
	Pos      Position
	Name     string
	Operands []Operand
}

// Parser consumes a token stream and produces an ordered statement list.
// It is a one-token-lookahead recursive-descent consumer: Newline and
// end-of-input are statement terminators, and a line may be empty.
type Parser struct {
	lexer        *Lexer
	tokens       []Token
	pos          int
	currentToken Token
	peekToken    Token
}

// NewParser tokenizes input and prepares a parser over it.
func NewParser(input, filename string) *Parser {
	lexer := NewLexer(input, filename)
	p := &Parser{lexer: lexer, tokens: lexer.TokenizeAll()}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = Token{Type: TokenEOF, Pos: p.currentToken.Pos}
	}
}

// Parse consumes the entire token stream and returns the statement list,
// or the first error encountered. The parser fails fast: later tokens
// after a malformed statement usually cascade meaningless errors, so
// unlike the encoder it does not batch.
func (p *Parser) Parse() ([]*Statement, error) {
	if lexErrs := p.lexer.Errors(); lexErrs.HasErrors() {
		return nil, lexErrs.Errors[0]
	}

	var statements []*Statement

	for p.currentToken.Type != TokenEOF {
		for p.currentToken.Type == TokenNewline {
			p.nextToken()
		}
		if p.currentToken.Type == TokenEOF {
			break
		}

		line := p.currentToken.Pos.Line

		if p.currentToken.Type == TokenIdentifier && p.peekToken.Type == TokenColon {
			pos := p.currentToken.Pos
			name := p.currentToken.Literal
			p.nextToken() // identifier
			p.nextToken() // colon
			statements = append(statements, &Statement{Kind: StmtLabel, Line: line, Pos: pos, Name: name})

			if p.currentToken.Type == TokenNewline || p.currentToken.Type == TokenEOF {
				continue
			}
		}

		var stmt *Statement
		var err error

		switch p.currentToken.Type {
		case TokenMnemonic:
			stmt, err = p.parseInstruction()
		case TokenDirective:
			stmt, err = p.parseDirective()
		default:
			err = NewError(p.currentToken.Pos, ErrorSyntax, fmt.Sprintf("unexpected token: %s", p.currentToken.Type))
		}
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)

		if p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenEOF {
			return nil, NewError(p.currentToken.Pos, ErrorSyntax,
				fmt.Sprintf("unexpected token after statement: %s", p.currentToken.Type))
		}
	}

	return statements, nil
}

func (p *Parser) parseInstruction() (*Statement, error) {
	pos := p.currentToken.Pos
	mnemonic := p.currentToken.Literal
	p.nextToken()

	operands, err := p.parseOperandList()
	if err != nil {
		return nil, err
	}

	return &Statement{Kind: StmtInstruction, Line: pos.Line, Pos: pos, Name: mnemonic, Operands: operands}, nil
}

func (p *Parser) parseDirective() (*Statement, error) {
	pos := p.currentToken.Pos
	name := p.currentToken.Literal
	p.nextToken()

	operands, err := p.parseOperandList()
	if err != nil {
		return nil, err
	}

	return &Statement{Kind: StmtDirective, Line: pos.Line, Pos: pos, Name: name, Operands: operands}, nil
}

func (p *Parser) parseOperandList() ([]Operand, error) {
	var operands []Operand
	for p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenEOF {
		op, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		operands = append(operands, op)

		if p.currentToken.Type == TokenComma {
			p.nextToken()
			continue
		}
		break
	}
	return operands, nil
}

// parseOperand parses a single operand: register, immediate, label,
// string literal, or a memory reference offset(reg).
func (p *Parser) parseOperand() (Operand, error) {
	switch p.currentToken.Type {
	case TokenRegister:
		reg := p.currentToken.Reg
		p.nextToken()
		return Operand{Kind: OperandRegister, Reg: reg}, nil

	case TokenNumber:
		imm := p.currentToken.Value
		if p.peekToken.Type == TokenLParen {
			p.nextToken() // consume number, current is now '('
			return p.parseMemoryOperand(false, imm, "")
		}
		p.nextToken()
		return Operand{Kind: OperandImmediate, Imm: imm}, nil

	case TokenIdentifier:
		label := p.currentToken.Literal
		if p.peekToken.Type == TokenLParen {
			p.nextToken() // consume label, current is now '('
			return p.parseMemoryOperand(true, 0, label)
		}
		p.nextToken()
		return Operand{Kind: OperandLabel, Label: label}, nil

	case TokenString:
		s := p.currentToken.Literal
		p.nextToken()
		return Operand{Kind: OperandString, Str: s}, nil

	default:
		return Operand{}, NewError(p.currentToken.Pos, ErrorInvalidOperand,
			fmt.Sprintf("unexpected operand: %s", p.currentToken.Type))
	}
}

func (p *Parser) parseMemoryOperand(offsetIsLabel bool, offsetImm int32, offsetLabel string) (Operand, error) {
	p.nextToken() // consume '('
	if p.currentToken.Type != TokenRegister {
		return Operand{}, NewError(p.currentToken.Pos, ErrorInvalidOperand, "expected register inside memory operand")
	}
	reg := p.currentToken.Reg
	p.nextToken()
	if p.currentToken.Type != TokenRParen {
		return Operand{}, NewError(p.currentToken.Pos, ErrorInvalidOperand, "expected ')' to close memory operand")
	}
	p.nextToken()
	return Operand{
		Kind: OperandMemory, Reg: reg, Imm: offsetImm, Label: offsetLabel, MemOffsetIsLabel: offsetIsLabel,
	}, nil
}
