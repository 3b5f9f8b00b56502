package lang

import (
	"log/slog"
	"strconv"
	"unicode"
	"unicode/utf8"
)

type lexState uint8

const (
	stateInitial lexState = iota
	stateKeyPath
	stateString
	stateComment
)

// lexer converts the content of one block into tokens.
type lexer struct {
	src  string
	toks []Token
	pos  int
}

// lex tokenizes src. The returned sequence always ends with a [TokenEOF].
func lex(src string) ([]Token, error) {
	l := &lexer{src: src}
	if err := l.run(); err != nil {
		return nil, err
	}

	return l.toks, nil
}

func (l *lexer) run() error {
	var (
		state lexState
		start int
		quote byte
		str   []byte
	)

	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch state {
		case stateInitial:
			switch {
			case isSpace(c):
				l.pos++

			case l.keyRune() > 0:
				start = l.pos
				state = stateKeyPath
				l.pos += l.keyRune()

			case c == '"' || c == '\'':
				start = l.pos
				quote = c
				str = str[:0]
				state = stateString
				l.pos++

			case c == '-' && l.peek(1) == '-':
				state = stateComment
				l.pos += 2

			default:
				if err := l.operator(c); err != nil {
					return err
				}
			}

		case stateKeyPath:
			if n := l.keyRune(); n > 0 {
				l.pos += n

				continue
			}

			l.word(start)
			state = stateInitial

		case stateString:
			switch c {
			case quote:
				l.emit(TokenString, string(str), start)
				l.pos++
				state = stateInitial

			case '\\':
				str = l.escape(str)

			default:
				str = append(str, c)
				l.pos++
			}

		case stateComment:
			if c == '\n' {
				state = stateInitial
			}

			l.pos++
		}
	}

	switch state {
	case stateKeyPath:
		l.word(start)

	case stateString:
		return ErrUnterminatedString.With(
			slog.Int("offset", start),
			slog.String("quote", string(quote)),
		)

	default:
	}

	l.emit(TokenEOF, "", l.pos)

	return nil
}

func (l *lexer) peek(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}

	return l.src[l.pos+n]
}

func (l *lexer) emit(kind TokenKind, text string, pos int) {
	l.toks = append(l.toks, Token{Kind: kind, Text: text, Pos: pos})
}

// word emits the key path that began at start, or its keyword token.
func (l *lexer) word(start int) {
	text := l.src[start:l.pos]
	if kind, ok := keywords[text]; ok {
		l.emit(kind, text, start)

		return
	}

	l.emit(TokenKeyPath, text, start)
}

func (l *lexer) operator(c byte) error {
	start := l.pos

	switch {
	case c == '(':
		l.emit(TokenLParen, "(", start)

	case c == ')':
		l.emit(TokenRParen, ")", start)

	case c == ',':
		l.emit(TokenComma, ",", start)

	case c == '=' && l.peek(1) == '=':
		l.emit(TokenEq, "==", start)
		l.pos++

	case c == '!' && l.peek(1) == '=':
		l.emit(TokenNe, "!=", start)
		l.pos++

	case c == '!':
		l.emit(TokenNot, "!", start)

	case c == '&' && l.peek(1) == '&':
		l.emit(TokenAnd, "&&", start)
		l.pos++

	case c == '|' && l.peek(1) == '|':
		l.emit(TokenOr, "||", start)
		l.pos++

	default:
		r, _ := utf8.DecodeRuneInString(l.src[start:])

		return ErrUnexpectedChar.With(
			slog.String("char", strconv.QuoteRune(r)),
			slog.Int("offset", start),
		)
	}

	l.pos++

	return nil
}

// escape decodes the backslash escape at the current position and appends
// the result to buf.
func (l *lexer) escape(buf []byte) []byte {
	l.pos++ // backslash

	if l.pos >= len(l.src) {
		return buf
	}

	c := l.src[l.pos]
	l.pos++

	switch c {
	case 'n':
		return append(buf, '\n')
	case 't':
		return append(buf, '\t')
	case 'r':
		return append(buf, '\r')
	case 'a':
		return append(buf, '\a')
	case 'b':
		return append(buf, '\b')
	case 'f':
		return append(buf, '\f')
	case 'v':
		return append(buf, '\v')
	case '0':
		return append(buf, 0)
	case 'x':
		return l.hexEscape(buf)
	default:
		return append(buf, c)
	}
}

// hexEscape consumes every hex digit that follows \x. The value saturates at
// 0xFF. Without any digits the x is kept literally.
func (l *lexer) hexEscape(buf []byte) []byte {
	var (
		val    int
		digits int
	)

	for l.pos < len(l.src) {
		d, ok := hexDigit(l.src[l.pos])
		if !ok {
			break
		}

		if val <= 0xFF {
			val = val<<4 | d
		}

		digits++
		l.pos++
	}

	if digits == 0 {
		return append(buf, 'x')
	}

	return append(buf, byte(min(val, 0xFF)))
}

func hexDigit(c byte) (int, bool) {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0'), true
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' ||
		c == '\f'
}

// keyRune returns the byte width of the key path character at the current
// position, or 0 if there is none. Non-ASCII letters and digits are key
// path characters; other symbols and invalid UTF-8 are not.
func (l *lexer) keyRune() int {
	c := l.src[l.pos]
	if c < utf8.RuneSelf {
		if isKeyByte(c) {
			return 1
		}

		return 0
	}

	r, n := utf8.DecodeRuneInString(l.src[l.pos:])
	if r == utf8.RuneError || !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		return 0
	}

	return n
}

func isKeyByte(c byte) bool {
	return c == '.' || c == '_' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
