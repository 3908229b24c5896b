package lexer

import (
	"fmt"
	"stack/internal/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	src          Source
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF

	diags []Diagnostic
}

func New(src Source) *Lexer {
	l := &Lexer{src: src, input: src.Content}
	l.readChar()
	return l
}

func (l *Lexer) Source() Source { return l.src }

// Diagnostics returns the problems recorded so far. A non-empty slice after
// a full scan means the input was malformed even if tokens were produced.
func (l *Lexer) Diagnostics() []Diagnostic { return l.diags }

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	for {
		switch {
		case l.ch == 0:
			return token.Token{Type: token.EOF, Literal: "", Position: l.position}
		case l.ch == '(':
			return l.single(token.LPAREN)
		case l.ch == ')':
			return l.single(token.RPAREN)
		case l.ch == '[':
			return l.single(token.LBRACKET)
		case l.ch == ']':
			return l.single(token.RBRACKET)
		case l.ch == '"':
			return l.readString()
		case l.ch == '\'':
			return l.readSymbol()
		case isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())):
			return l.readNumber()
		case isWordRune(l.ch):
			startPosition := l.position
			word := l.readWord()
			return token.Token{Type: token.LookupIdent(word), Literal: word, Position: startPosition}
		default:
			// Unrecognized characters are reported and skipped, never fatal.
			l.report(l.position, fmt.Sprintf("unrecognized character %q", l.ch))
			l.readChar()
			l.skipWhitespace()
		}
	}
}

// Tokenize scans the remaining input and returns every token up to and
// excluding EOF.
func (l *Lexer) Tokenize() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) single(t token.TokenType) token.Token {
	tok := token.Token{Type: t, Literal: string(l.ch), Position: l.position}
	l.readChar()
	return tok
}

func (l *Lexer) report(pos int, msg string) {
	l.diags = append(l.diags, Diagnostic{Source: l.src.Name, Position: pos, Message: msg})
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readChar()
		case '#':
			l.skipToLineEnd()
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readNumber scans an integer or float literal. The token is a FLOAT when
// the literal contains a decimal point, an INTEGER otherwise. Literals that
// do not fit their 64-bit representation are a lex-level error.
func (l *Lexer) readNumber() token.Token {
	startPosition := l.position
	var sb strings.Builder

	if l.ch == '-' {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	for isDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		sb.WriteRune(l.ch)
		l.readChar()
		for isDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}

	literal := sb.String()
	if isFloat {
		if _, err := strconv.ParseFloat(literal, 64); err != nil {
			l.report(startPosition, fmt.Sprintf("float literal %q out of range", literal))
			return token.Token{Type: token.ILLEGAL, Literal: literal, Position: startPosition}
		}
		return token.Token{Type: token.FLOAT, Literal: literal, Position: startPosition}
	}
	if _, err := strconv.ParseInt(literal, 10, 64); err != nil {
		l.report(startPosition, fmt.Sprintf("integer literal %q out of range", literal))
		return token.Token{Type: token.ILLEGAL, Literal: literal, Position: startPosition}
	}
	return token.Token{Type: token.INTEGER, Literal: literal, Position: startPosition}
}

// readString scans a double-quoted literal with the usual escapes.
func (l *Lexer) readString() token.Token {
	startPosition := l.position
	var sb strings.Builder
	l.readChar() // consume opening quote

	for l.ch != '"' {
		if l.ch == 0 {
			l.report(startPosition, "unterminated string literal")
			return token.Token{Type: token.ILLEGAL, Literal: sb.String(), Position: startPosition}
		}
		if l.ch == '\\' {
			switch l.peekChar() {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '\\':
				sb.WriteRune('\\')
			case '"':
				sb.WriteRune('"')
			case '0':
				sb.WriteRune(0)
			default:
				l.report(l.position, fmt.Sprintf("unknown escape \\%c", l.peekChar()))
				sb.WriteRune(l.peekChar())
			}
			l.readChar()
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote

	return token.Token{Type: token.STRING, Literal: sb.String(), Position: startPosition}
}

// readSymbol scans a quoted identifier: 'name
func (l *Lexer) readSymbol() token.Token {
	startPosition := l.position
	l.readChar() // consume quote
	if !isWordRune(l.ch) {
		l.report(startPosition, "expected identifier after '")
		return token.Token{Type: token.ILLEGAL, Literal: "'", Position: startPosition}
	}
	word := l.readWord()
	return token.Token{Type: token.SYMBOL, Literal: word, Position: startPosition}
}

// readWord returns the substring (bytes) covering the word runes
func (l *Lexer) readWord() string {
	start := l.position
	for isWordRune(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// isWordRune reports whether ch may appear in a bare word. Words are very
// permissive: anything except whitespace, delimiters, quotes and comments,
// so operators like + and <= and names like type-of are single CALL tokens.
func isWordRune(ch rune) bool {
	switch ch {
	case 0, '(', ')', '[', ']', '\'', '"', '#':
		return false
	}
	return !unicode.IsSpace(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
