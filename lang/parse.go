package lang

import (
	"log/slog"
	"strings"
)

// block is an open for, if or def statement awaiting its closer.
type block struct {
	node    int // node opened by the statement
	branch  int // node currently receiving children
	line    int
	closer  TokenKind
	hasElse bool
}

// parser assembles a node tree from template source.
type parser struct {
	tree         *tree
	src          string
	stack        []block
	pos          int
	line         int
	atLineStart  bool
	strictBlocks bool
}

// parse compiles src into a node tree.
func parse(src string, strictBlocks bool) (*tree, error) {
	p := &parser{
		tree:         &tree{},
		src:          src,
		line:         1,
		atLineStart:  true,
		strictBlocks: strictBlocks,
	}

	if err := p.run(); err != nil {
		return nil, err
	}

	return p.tree, nil
}

func (p *parser) run() error {
	for p.pos < len(p.src) {
		i := strings.IndexByte(p.src[p.pos:], '{')
		if i < 0 {
			p.text(p.src[p.pos:])
			p.pos = len(p.src)

			break
		}

		open := p.pos + i

		// \{ is a literal brace; the backslash is dropped.
		if i > 0 && p.src[open-1] == '\\' {
			p.text(p.src[p.pos : open-1])
			p.pos = open
			p.literal()

			continue
		}

		bol := p.lineStart(p.src[p.pos:open])

		p.text(p.src[p.pos:open])
		p.pos = open

		if err := p.block(bol); err != nil {
			return err
		}
	}

	if n := len(p.stack); n > 0 {
		top := p.stack[n-1]

		return ErrMissingCloser.
			With(slog.String("expected", top.closer.String())).
			At(top.line)
	}

	return nil
}

// lineStart reports whether a block preceded by pre begins its line.
// Only spaces and tabs may separate the block from a newline, from the start
// of input, or from a preceding statement block that itself began its line.
func (p *parser) lineStart(pre string) bool {
	rest := strings.TrimRight(pre, " \t")
	if rest == "" {
		return p.atLineStart
	}

	return rest[len(rest)-1] == '\n'
}

// text appends a literal text node.
func (p *parser) text(s string) {
	if s == "" {
		return
	}

	p.append(p.tree.add(node{kind: NodeText, text: s, line: p.line, next: noNode}))
	p.line += strings.Count(s, "\n")
	p.atLineStart = s[len(s)-1] == '\n'
}

// literal emits the '{' at the current position as text.
func (p *parser) literal() {
	p.append(p.tree.add(node{kind: NodeText, text: "{", line: p.line, next: noNode}))
	p.pos++
	p.atLineStart = false
}

// block parses the block whose '{' is at the current position.
func (p *parser) block(bol bool) error {
	open := p.pos

	var closer string

	switch p.peek(open + 1) {
	case '$':
		closer = "}"
	case '%':
		closer = "%}"
	case '#':
		closer = "#}"
	default:
		p.literal()

		return nil
	}

	body := open + 2

	n := strings.Index(p.src[body:], closer)
	if n < 0 {
		if p.strictBlocks {
			return ErrUnterminatedBlock.
				With(slog.String("delimiter", closer)).
				At(p.line)
		}

		p.literal()

		return nil
	}

	kind := p.src[open+1]
	content := p.src[body : body+n]
	line := p.line

	p.pos = body + n + len(closer)
	p.line += strings.Count(content, "\n")

	trim := strings.HasSuffix(content, ">")
	if trim {
		content = content[:len(content)-1]
	}

	eaten := false
	if trim || (kind != '$' && bol) {
		eaten = p.eatNewline()
	}

	switch kind {
	case '$':
		p.atLineStart = false

		return p.variable(content, line)

	case '%':
		p.atLineStart = eaten || bol

		return p.statement(content, line)

	default:
		p.atLineStart = eaten || bol

		return nil
	}
}

func (p *parser) peek(i int) byte {
	if i >= len(p.src) {
		return 0
	}

	return p.src[i]
}

// eatNewline skips a single "\n" or "\r\n" at the current position.
func (p *parser) eatNewline() bool {
	switch {
	case strings.HasPrefix(p.src[p.pos:], "\n"):
		p.pos++
	case strings.HasPrefix(p.src[p.pos:], "\r\n"):
		p.pos += 2
	default:
		return false
	}

	p.line++

	return true
}

// append adds id to the children of the innermost open block, or to the
// top level.
func (p *parser) append(id int) {
	if n := len(p.stack); n > 0 {
		b := p.stack[n-1].branch
		p.tree.nodes[b].children = append(p.tree.nodes[b].children, id)

		return
	}

	p.tree.root = append(p.tree.root, id)
}

func (p *parser) variable(content string, line int) error {
	toks, err := lex(content)
	if err != nil {
		return annotate(err, line)
	}

	e, err := compileExpr(toks)
	if err != nil {
		return annotate(err, line)
	}

	p.append(p.tree.add(node{kind: NodeVariable, guard: e, line: line, next: noNode}))

	return nil
}

func (p *parser) statement(content string, line int) error {
	toks, err := lex(content)
	if err != nil {
		return annotate(err, line)
	}

	switch toks[0].Kind {
	case TokenEOF:
		err = ErrEmptyStatement
	case TokenFor:
		err = p.openFor(toks, line)
	case TokenIf:
		err = p.openIf(toks, line)
	case TokenElif, TokenElse:
		err = p.branch(toks, line)
	case TokenDef:
		err = p.openDef(toks, line)
	case TokenEndFor, TokenEndIf, TokenEndDef:
		err = p.close(toks)
	default:
		err = ErrUnknownStatement.With(
			slog.String("token", toks[0].Kind.String()),
			slog.String("text", toks[0].Text),
		)
	}

	return annotate(err, line)
}

// openFor parses "for ident in key-path".
func (p *parser) openFor(toks []Token, line int) error {
	if len(toks) != 5 ||
		toks[1].Kind != TokenKeyPath ||
		toks[2].Kind != TokenIn ||
		toks[3].Kind != TokenKeyPath ||
		strings.Contains(toks[1].Text, ".") {
		return ErrInvalidFor.With(slog.String("expected", "for <name> in <key-path>"))
	}

	id := p.tree.add(node{
		kind: NodeFor,
		text: toks[1].Text,
		path: toks[3].Text,
		line: line,
		next: noNode,
	})

	p.append(id)
	p.push(block{node: id, branch: id, line: line, closer: TokenEndFor})

	return nil
}

func (p *parser) openIf(toks []Token, line int) error {
	guard, err := compileExpr(toks[1:])
	if err != nil {
		return err
	}

	id := p.tree.add(node{
		kind:   NodeIf,
		guard:  guard,
		line:   line,
		next:   noNode,
		branch: TokenIf,
	})

	p.append(id)
	p.push(block{node: id, branch: id, line: line, closer: TokenEndIf})

	return nil
}

// branch links an elif or else to the innermost open if chain. The new
// branch is not a child of any node; it is reached through the chain.
func (p *parser) branch(toks []Token, line int) error {
	kind := toks[0].Kind

	n := len(p.stack)
	if n == 0 || p.stack[n-1].closer != TokenEndIf {
		return ErrOrphanBranch.With(slog.String("token", kind.String()))
	}

	top := &p.stack[n-1]
	if top.hasElse {
		return ErrDuplicateElse.With(slog.String("token", kind.String()))
	}

	var guard *expr

	if kind == TokenElif {
		var err error

		guard, err = compileExpr(toks[1:])
		if err != nil {
			return err
		}
	} else if toks[1].Kind != TokenEOF {
		return ErrUnexpectedToken.With(
			slog.String("token", toks[1].Kind.String()),
			slog.String("after", "else"),
		)
	}

	id := p.tree.add(node{
		kind:   NodeIf,
		guard:  guard,
		line:   line,
		next:   noNode,
		branch: kind,
	})

	p.tree.nodes[top.branch].next = id
	top.branch = id
	top.hasElse = kind == TokenElse

	return nil
}

// openDef parses "def key-path" with an optional parenthesized list of
// parameter names.
func (p *parser) openDef(toks []Token, line int) error {
	if toks[1].Kind != TokenKeyPath {
		return ErrInvalidDef.With(slog.String("expected", "def <key-path>"))
	}

	var params []string

	rest := toks[2:]
	if rest[0].Kind == TokenLParen {
		var err error

		params, rest, err = defParams(rest[1:])
		if err != nil {
			return err
		}
	}

	if rest[0].Kind != TokenEOF {
		return ErrInvalidDef.With(
			slog.String("token", rest[0].Kind.String()),
			slog.Int("offset", rest[0].Pos),
		)
	}

	id := p.tree.add(node{
		kind:   NodeDef,
		text:   toks[1].Text,
		params: params,
		line:   line,
		next:   noNode,
	})

	p.append(id)
	p.push(block{node: id, branch: id, line: line, closer: TokenEndDef})

	return nil
}

// defParams parses "name, name, ... )" and returns the tokens that follow.
func defParams(toks []Token) ([]string, []Token, error) {
	params := []string{}

	if toks[0].Kind == TokenRParen {
		return params, toks[1:], nil
	}

	for {
		if toks[0].Kind != TokenKeyPath || strings.Contains(toks[0].Text, ".") {
			return nil, nil, ErrInvalidDef.With(
				slog.String("expected", "parameter name"),
				slog.String("token", toks[0].Kind.String()),
			)
		}

		params = append(params, toks[0].Text)

		switch toks[1].Kind {
		case TokenComma:
			toks = toks[2:]

		case TokenRParen:
			return params, toks[2:], nil

		default:
			return nil, nil, ErrInvalidDef.With(
				slog.String("expected", "',' or ')'"),
				slog.String("token", toks[1].Kind.String()),
			)
		}
	}
}

func (p *parser) close(toks []Token) error {
	kind := toks[0].Kind

	if toks[1].Kind != TokenEOF {
		return ErrUnexpectedToken.With(
			slog.String("token", toks[1].Kind.String()),
			slog.String("after", kind.String()),
		)
	}

	n := len(p.stack)
	if n == 0 {
		return ErrMismatchedCloser.With(slog.String("found", kind.String()))
	}

	if want := p.stack[n-1].closer; want != kind {
		return ErrMismatchedCloser.With(
			slog.String("expected", want.String()),
			slog.String("found", kind.String()),
			slog.Int("opened", p.stack[n-1].line),
		)
	}

	p.stack = p.stack[:n-1]

	return nil
}

func (p *parser) push(b block) {
	p.stack = append(p.stack, b)
}
