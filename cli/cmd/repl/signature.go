package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/tmpl/lang"
)

// builtinParams are the parameters of the pseudo-functions.
var builtinParams = map[string][]string{
	"count":   {"list"},
	"empty":   {"value"},
	"defined": {"path"},
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall represents a detected call in the input.
type functionCall struct {
	name     string // key path of the callee (e.g., "macros.row")
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside the argument list
}

// detectFunctionCall reports whether the cursor is inside the argument list
// of a call, and if so the callee and current argument index. Parentheses
// inside string literals are not special.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Track open parens left to right so quoted text is skipped correctly.
	var (
		open    []int
		args    []int
		inQuote bool
	)

	for i := 0; i < cursor; i++ {
		switch c := input[i]; {
		case inQuote && c == '\\':
			i++
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			open = append(open, i)
			args = append(args, 0)
		case c == ')' && len(open) > 0:
			open = open[:len(open)-1]
			args = args[:len(args)-1]
		case c == ',' && len(args) > 0:
			args[len(args)-1]++
		case c == '}':
			open, args = nil, nil
		}
	}

	if len(open) == 0 {
		return functionCall{}
	}

	paren := open[len(open)-1]
	start := paren

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isKeyRune(r) {
			break
		}

		start -= size
	}

	name := strings.TrimSpace(input[start:paren])
	if name == "" {
		return functionCall{}
	}

	return functionCall{name: name, argIndex: args[len(args)-1], inCall: true}
}

func isKeyRune(r rune) bool {
	return r == '.' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// getSignature returns the signature of a pseudo-function or of the
// sub-template stored at name. It returns an empty signature if name is
// neither.
func getSignature(data lang.Map, name string) (signature string, params []string) {
	if p, ok := builtinParams[name]; ok {
		return formatSignature(name, p), p
	}

	v, ok := data.Lookup(name)
	if !ok {
		return "", nil
	}

	sub, err := v.SubTemplate()
	if err != nil {
		return "", nil
	}

	params = sub.Params()

	return formatSignature(name, params), params
}

func formatSignature(name string, params []string) string {
	return name + "(" + strings.Join(params, ", ") + ")"
}

// renderSignatureHint renders the signature with the current parameter
// highlighted.
func renderSignatureHint(name string, params []string, currentArgIdx int) string {
	if name == "" {
		return ""
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == currentArgIdx {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
