package lang

import (
	"errors"
	"slices"
	"testing"
)

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}

	return out
}

func TestLex_Tokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenKind
	}{
		{
			name:  "for_header",
			input: "for item in person.friends",
			want:  []TokenKind{TokenFor, TokenKeyPath, TokenIn, TokenKeyPath, TokenEOF},
		},
		{
			name:  "equality",
			input: `if a == "b"`,
			want:  []TokenKind{TokenIf, TokenKeyPath, TokenEq, TokenString, TokenEOF},
		},
		{
			name:  "symbolic_operators",
			input: `x != 'y' && !z || w`,
			want: []TokenKind{
				TokenKeyPath, TokenNe, TokenString, TokenAnd,
				TokenNot, TokenKeyPath, TokenOr, TokenKeyPath, TokenEOF,
			},
		},
		{
			name:  "word_operators",
			input: "not a and b or c",
			want: []TokenKind{
				TokenNot, TokenKeyPath, TokenAnd, TokenKeyPath,
				TokenOr, TokenKeyPath, TokenEOF,
			},
		},
		{
			name:  "call",
			input: "greet(name, 'x')",
			want: []TokenKind{
				TokenKeyPath, TokenLParen, TokenKeyPath, TokenComma,
				TokenString, TokenRParen, TokenEOF,
			},
		},
		{
			name:  "line_comment",
			input: "count(list) -- how many",
			want:  []TokenKind{TokenKeyPath, TokenLParen, TokenKeyPath, TokenRParen, TokenEOF},
		},
		{
			name:  "comment_ends_at_newline",
			input: "if a -- first\n and b",
			want:  []TokenKind{TokenIf, TokenKeyPath, TokenAnd, TokenKeyPath, TokenEOF},
		},
		{
			name:  "closers",
			input: "endfor endif enddef",
			want:  []TokenKind{TokenEndFor, TokenEndIf, TokenEndDef, TokenEOF},
		},
		{
			name:  "literals",
			input: "true false",
			want:  []TokenKind{TokenTrue, TokenFalse, TokenEOF},
		},
		{
			name:  "empty",
			input: "   ",
			want:  []TokenKind{TokenEOF},
		},
		{
			name:  "unicode_key_path",
			input: "naïve.clé",
			want:  []TokenKind{TokenKeyPath, TokenEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := lex(tt.input)
			if err != nil {
				t.Fatalf("lex(%q) error: %v", tt.input, err)
			}

			if got := kinds(toks); !slices.Equal(got, tt.want) {
				t.Errorf("lex(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLex_KeywordText(t *testing.T) {
	toks, err := lex("def person.greet")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	if toks[1].Text != "person.greet" {
		t.Errorf("expected key path text 'person.greet', got %q", toks[1].Text)
	}

	if toks[1].Pos != 4 {
		t.Errorf("expected key path offset 4, got %d", toks[1].Pos)
	}
}

func TestLex_StringEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain_double", `"hello"`, "hello"},
		{"plain_single", `'hello'`, "hello"},
		{"other_quote_inside", `"it's"`, "it's"},
		{"escaped_quote", `'it\'s'`, "it's"},
		{"c_escapes", `"\n\t\r\a\b\f\v"`, "\n\t\r\a\b\f\v"},
		{"nul", `"a\0b"`, "a\x00b"},
		{"unknown_escape", `"\q\\"`, `q\`},
		{"hex", `"\x41\x62"`, "Ab"},
		{"hex_maximal_run_clamps", `"\x4a2"`, "\xff"},
		{"hex_without_digits", `"\xg"`, "xg"},
		{"spaces_preserved", `"a  b"`, "a  b"},
		{"block_chars", `"{$ }"`, "{$ }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := lex(tt.input)
			if err != nil {
				t.Fatalf("lex(%q) error: %v", tt.input, err)
			}

			if toks[0].Kind != TokenString {
				t.Fatalf("expected string literal, got %v", toks[0].Kind)
			}

			if toks[0].Text != tt.want {
				t.Errorf("lex(%q) = %q, want %q", tt.input, toks[0].Text, tt.want)
			}
		})
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unterminated_double", `if a == "abc`, ErrUnterminatedString},
		{"unterminated_single", `'abc`, ErrUnterminatedString},
		{"trailing_backslash", `"abc\`, ErrUnterminatedString},
		{"single_equals", `a = b`, ErrUnexpectedChar},
		{"single_ampersand", `a & b`, ErrUnexpectedChar},
		{"single_pipe", `a | b`, ErrUnexpectedChar},
		{"single_dash", `a - b`, ErrUnexpectedChar},
		{"at_sign", `@a`, ErrUnexpectedChar},
		{"greater_than", `a > b`, ErrUnexpectedChar},
		{"smart_quotes", "“name”", ErrUnexpectedChar},
		{"arrow_after_key", "name→", ErrUnexpectedChar},
		{"invalid_utf8", "a \xff", ErrUnexpectedChar},
		{"invalid_utf8_in_key", "na\xffme", ErrUnexpectedChar},
		{"symbol_in_if", "if “a”", ErrUnexpectedChar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lex(tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("lex(%q) error = %v, want %v", tt.input, err, tt.want)
			}

			var e *Error
			if !errors.As(err, &e) || e.Class() != ClassLex {
				t.Errorf("expected lex class error, got %v", err)
			}
		})
	}
}

func TestKeywords(t *testing.T) {
	kw := Keywords()
	if !slices.IsSorted(kw) {
		t.Errorf("keywords not sorted: %v", kw)
	}

	for _, want := range []string{"for", "endfor", "elif", "not"} {
		if !slices.Contains(kw, want) {
			t.Errorf("keywords missing %q", want)
		}
	}
}
