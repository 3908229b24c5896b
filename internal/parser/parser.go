package parser

import (
	"fmt"
	"stack/internal/lexer"
	"stack/internal/object"
	"stack/internal/token"
	"strconv"
)

type frameKind int

const (
	frameParen frameKind = iota
	frameBracket
)

// Parser consumes the token stream and builds an ordered expression
// sequence. Bracketing is resolved here with a stack of open frames:
// parens accumulate into lazy blocks, brackets into eager lists.
type Parser struct {
	l      *lexer.Lexer
	errors []string
}

func New(l *lexer.Lexer) *Parser {
	return &Parser{
		l:      l,
		errors: []string{},
	}
}

func (p *Parser) Errors() []string {
	return p.errors
}

// Parse runs a parser over src and returns the program, or an error
// carrying the first diagnostic.
func Parse(src lexer.Source) ([]object.Expr, error) {
	p := New(lexer.New(src))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("%s", errs[0])
	}
	return program, nil
}

// ParseProgram returns the top-level expression sequence. On any failure
// (mismatched closer, unbalanced blocks, malformed literal) the result is
// empty and Errors() is non-empty; a partial program is never returned.
func (p *Parser) ParseProgram() []object.Expr {
	frames := [][]object.Expr{nil}
	var kinds []frameKind
	src := p.l.Source().Name

	for {
		tok := p.l.NextToken()
		if tok.Type == token.EOF {
			break
		}

		switch tok.Type {
		case token.INTEGER:
			value, err := strconv.ParseInt(tok.Literal, 10, 64)
			if err != nil {
				p.reportf("%s:%d: invalid integer literal %q", src, tok.Position, tok.Literal)
				return nil
			}
			frames[len(frames)-1] = append(frames[len(frames)-1], &object.Integer{Value: value})

		case token.FLOAT:
			value, err := strconv.ParseFloat(tok.Literal, 64)
			if err != nil {
				p.reportf("%s:%d: invalid float literal %q", src, tok.Position, tok.Literal)
				return nil
			}
			frames[len(frames)-1] = append(frames[len(frames)-1], &object.Float{Value: value})

		case token.STRING:
			frames[len(frames)-1] = append(frames[len(frames)-1], &object.String{Value: tok.Literal})

		case token.SYMBOL:
			frames[len(frames)-1] = append(frames[len(frames)-1], &object.Symbol{Value: tok.Literal})

		case token.NIL:
			frames[len(frames)-1] = append(frames[len(frames)-1], object.NIL)

		case token.UNDERSCORE:
			frames[len(frames)-1] = append(frames[len(frames)-1], object.UNDERSCORE)

		case token.CALL:
			// true/false are ordinary identifiers to the lexer and become
			// boolean literals here.
			switch tok.Literal {
			case "true":
				frames[len(frames)-1] = append(frames[len(frames)-1], object.TRUE)
			case "false":
				frames[len(frames)-1] = append(frames[len(frames)-1], object.FALSE)
			default:
				frames[len(frames)-1] = append(frames[len(frames)-1], &object.Call{Value: tok.Literal})
			}

		case token.LPAREN:
			frames = append(frames, nil)
			kinds = append(kinds, frameParen)

		case token.LBRACKET:
			frames = append(frames, nil)
			kinds = append(kinds, frameBracket)

		case token.RPAREN:
			if len(kinds) == 0 || kinds[len(kinds)-1] != frameParen {
				p.reportf("%s:%d: mismatched brackets", src, tok.Position)
				return nil
			}
			kinds = kinds[:len(kinds)-1]
			inner := frames[len(frames)-1]
			frames = frames[:len(frames)-1]
			frames[len(frames)-1] = append(frames[len(frames)-1], &object.Block{Exprs: inner})

		case token.RBRACKET:
			if len(kinds) == 0 || kinds[len(kinds)-1] != frameBracket {
				p.reportf("%s:%d: mismatched brackets", src, tok.Position)
				return nil
			}
			kinds = kinds[:len(kinds)-1]
			inner := frames[len(frames)-1]
			frames = frames[:len(frames)-1]
			frames[len(frames)-1] = append(frames[len(frames)-1], &object.List{Exprs: inner})

		case token.ILLEGAL:
			// The lexer already recorded a diagnostic; surface it below.
			p.surfaceDiagnostics()
			if len(p.errors) == 0 {
				p.reportf("%s:%d: malformed token %q", src, tok.Position, tok.Literal)
			}
			return nil
		}
	}

	p.surfaceDiagnostics()

	if len(kinds) != 0 {
		p.reportf("%s: unbalanced blocks: %d left open", src, len(kinds))
		return nil
	}
	if len(p.errors) != 0 {
		return nil
	}
	return frames[0]
}

func (p *Parser) reportf(format string, a ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf(format, a...))
}

// surfaceDiagnostics lifts lex-level diagnostics into parser errors so
// callers only have one failure channel to check.
func (p *Parser) surfaceDiagnostics() {
	for _, d := range p.l.Diagnostics() {
		p.errors = append(p.errors, d.String())
	}
}
