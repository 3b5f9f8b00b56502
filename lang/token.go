package lang

// TokenKind identifies a lexical token of statement or variable block
// content.
type TokenKind uint8

const (
	TokenEOF     TokenKind = iota // end of statement
	TokenKeyPath                  // key path
	TokenString                   // string literal
	TokenTrue                     // true
	TokenFalse                    // false
	TokenFor                      // for
	TokenIn                       // in
	TokenIf                       // if
	TokenElif                     // elif
	TokenElse                     // else
	TokenDef                      // def
	TokenEndFor                   // endfor
	TokenEndIf                    // endif
	TokenEndDef                   // enddef
	TokenAnd                      // and
	TokenOr                       // or
	TokenNot                      // not
	TokenEq                       // ==
	TokenNe                       // !=
	TokenLParen                   // (
	TokenRParen                   // )
	TokenComma                    // ,
)

// keywords maps reserved words to their token kinds. Any other key path is
// an identifier.
var keywords = map[string]TokenKind{
	"true":   TokenTrue,
	"false":  TokenFalse,
	"for":    TokenFor,
	"in":     TokenIn,
	"if":     TokenIf,
	"elif":   TokenElif,
	"else":   TokenElse,
	"def":    TokenDef,
	"endfor": TokenEndFor,
	"endif":  TokenEndIf,
	"enddef": TokenEndDef,
	"and":    TokenAnd,
	"or":     TokenOr,
	"not":    TokenNot,
}

// Token is a single lexical unit.
// Text holds the key path or the decoded string literal.
type Token struct {
	Text string
	Pos  int // byte offset within the block content
	Kind TokenKind
}

// Keywords returns the reserved words of the statement language.
func Keywords() []string {
	return sortedKeys(keywords)
}
