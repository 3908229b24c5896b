package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	INTEGER = "INTEGER" // 42
	FLOAT   = "FLOAT"   // 4.2
	STRING  = "STRING"  // "foobar"
	SYMBOL  = "SYMBOL"  // 'foo
	CALL    = "CALL"    // foo, +, type-of
	NIL     = "NIL"     // nil

	UNDERSCORE = "_"

	// Delimiters. Parens open a lazy block, brackets an eager list.
	LPAREN   = "("
	RPAREN   = ")"
	LBRACKET = "["
	RBRACKET = "]"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src index of the token
}

// nil and _ are the only identifiers claimed by the lexer; true and false
// stay CALL tokens and are reclassified by the parser.
var keywords = map[string]TokenType{
	"nil": NIL,
	"_":   UNDERSCORE,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return CALL
}
