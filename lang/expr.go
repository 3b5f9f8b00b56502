package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

type exprKind uint8

const (
	exprLiteral exprKind = iota
	exprPath
	exprCall
	exprNot
	exprAnd
	exprOr
	exprEq
	exprNe
)

// expr is a parsed expression. Trees are built once at compile time and
// evaluated on every render.
type expr struct {
	lhs  *expr
	rhs  *expr
	path string
	args []*expr
	val  Value
	kind exprKind
}

// Pseudo-functions recognized in call position.
const (
	fnCount   = "count"
	fnEmpty   = "empty"
	fnDefined = "defined"
)

// Builtins returns the names of the built-in pseudo-functions.
func Builtins() []string {
	return []string{fnCount, fnDefined, fnEmpty}
}

func isBuiltin(name string) bool {
	return name == fnCount || name == fnEmpty || name == fnDefined
}

// exprParser is a recursive-descent parser over a token sequence.
//
//	expr    → bterm ( "or" bterm )*
//	bterm   → bfactor ( "and" bfactor )*
//	bfactor → factor [ ( "==" | "!=" ) factor ]
//	factor  → "not" expr | "(" expr ")" | "true" | "false" | string | var
//	var     → key-path [ "(" [ expr ( "," expr )* ] ")" ]
type exprParser struct {
	toks []Token
	pos  int
}

// compileExpr parses toks as one complete expression.
func compileExpr(toks []Token) (*expr, error) {
	p := &exprParser{toks: toks}

	if p.peek().Kind == TokenEOF {
		return nil, ErrInvalidExpr.With(slog.String("reason", "empty expression"))
	}

	e, err := p.expr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, p.unexpected(tok)
	}

	return e, nil
}

func (p *exprParser) peek() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: TokenEOF}
	}

	return p.toks[p.pos]
}

func (p *exprParser) next() Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}

	return tok
}

func (p *exprParser) expect(kind TokenKind) error {
	if tok := p.next(); tok.Kind != kind {
		return p.unexpected(tok).With(slog.String("expected", kind.String()))
	}

	return nil
}

func (p *exprParser) unexpected(tok Token) *Error {
	return ErrUnexpectedToken.With(
		slog.String("token", tok.Kind.String()),
		slog.Int("offset", tok.Pos),
	)
}

func (p *exprParser) expr() (*expr, error) {
	lhs, err := p.bterm()
	if err != nil {
		return nil, err
	}

	for p.peek().Kind == TokenOr {
		p.next()

		rhs, err := p.bterm()
		if err != nil {
			return nil, err
		}

		lhs = &expr{kind: exprOr, lhs: lhs, rhs: rhs}
	}

	return lhs, nil
}

func (p *exprParser) bterm() (*expr, error) {
	lhs, err := p.bfactor()
	if err != nil {
		return nil, err
	}

	for p.peek().Kind == TokenAnd {
		p.next()

		rhs, err := p.bfactor()
		if err != nil {
			return nil, err
		}

		lhs = &expr{kind: exprAnd, lhs: lhs, rhs: rhs}
	}

	return lhs, nil
}

func (p *exprParser) bfactor() (*expr, error) {
	lhs, err := p.factor()
	if err != nil {
		return nil, err
	}

	var kind exprKind

	switch p.peek().Kind {
	case TokenEq:
		kind = exprEq
	case TokenNe:
		kind = exprNe
	default:
		return lhs, nil
	}

	p.next()

	rhs, err := p.factor()
	if err != nil {
		return nil, err
	}

	return &expr{kind: kind, lhs: lhs, rhs: rhs}, nil
}

func (p *exprParser) factor() (*expr, error) {
	tok := p.next()

	switch tok.Kind {
	case TokenNot:
		operand, err := p.expr()
		if err != nil {
			return nil, err
		}

		return &expr{kind: exprNot, lhs: operand}, nil

	case TokenLParen:
		e, err := p.expr()
		if err != nil {
			return nil, err
		}

		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}

		return e, nil

	case TokenTrue:
		return &expr{kind: exprLiteral, val: BoolValue(true)}, nil

	case TokenFalse:
		return &expr{kind: exprLiteral, val: BoolValue(false)}, nil

	case TokenString:
		return &expr{kind: exprLiteral, val: StringValue(tok.Text)}, nil

	case TokenKeyPath:
		return p.variable(tok)

	case TokenEOF:
		return nil, ErrInvalidExpr.With(
			slog.String("reason", "expected operand"),
			slog.Int("offset", tok.Pos),
		)

	default:
		return nil, p.unexpected(tok)
	}
}

func (p *exprParser) variable(tok Token) (*expr, error) {
	if p.peek().Kind != TokenLParen {
		return &expr{kind: exprPath, path: tok.Text}, nil
	}

	p.next()

	call := &expr{kind: exprCall, path: tok.Text}

	if p.peek().Kind == TokenRParen {
		p.next()

		return call, nil
	}

	for {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}

		call.args = append(call.args, arg)

		switch t := p.next(); t.Kind {
		case TokenComma:
			continue

		case TokenRParen:
			return call, nil

		default:
			return nil, p.unexpected(t).With(
				slog.String("expected", "',' or ')'"),
			)
		}
	}
}

// String reconstructs a canonical source form of e.
func (e *expr) String() string {
	if e == nil {
		return ""
	}

	switch e.kind {
	case exprLiteral:
		if e.val.kind == KindBool {
			return e.val.String()
		}

		return strconv.Quote(e.val.str)

	case exprPath:
		return e.path

	case exprCall:
		args := make([]string, len(e.args))
		for i, a := range e.args {
			args[i] = a.String()
		}

		return e.path + "(" + strings.Join(args, ", ") + ")"

	case exprNot:
		return "not " + e.lhs.String()

	case exprAnd:
		return "(" + e.lhs.String() + " and " + e.rhs.String() + ")"

	case exprOr:
		return "(" + e.lhs.String() + " or " + e.rhs.String() + ")"

	case exprEq:
		return e.lhs.String() + " == " + e.rhs.String()

	case exprNe:
		return e.lhs.String() + " != " + e.rhs.String()

	default:
		return "?"
	}
}

// paths appends every key path referenced by e to out.
func (e *expr) paths(out []string) []string {
	if e == nil {
		return out
	}

	switch e.kind {
	case exprPath:
		out = append(out, e.path)

	case exprCall:
		if !isBuiltin(e.path) {
			out = append(out, e.path)
		}

		for _, a := range e.args {
			out = a.paths(out)
		}

	default:
		out = e.lhs.paths(out)
		out = e.rhs.paths(out)
	}

	return out
}
