package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/tmpl/lang"
)

// commandPrefix starts a REPL command line.
const commandPrefix = ":"

// commands are the available REPL commands, without the prefix.
var commands = []string{"help", "keys", "edit", "load", "clear", "quit"}

// isWordBoundary returns true if the rune delimits a word for completion:
// whitespace, the member-access dot, block delimiters and the punctuation
// of the statement language.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'{', '}', '$', '%', '#',
		'(', ')', ',', '"', '\'',
		'=', '!', '<', '>', ':':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. Returns an empty word when the cursor sits on a
// boundary (after a space, between dots, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the key path leading up to the current word through
// a contiguous member-access chain. For input "{$ site.page.ti" with the
// word "ti", the parent path is "site.page". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := strings.TrimRight(input[:wordStart], ".")
	if prefix == "" || len(prefix) == wordStart {
		return ""
	}

	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:])
}

// childCandidates returns the completions for words under parent. At the top
// level these are the context's keys, the keywords and the pseudo-functions;
// below it, the keys of the map at parent.
func childCandidates(data lang.Map, parent string) []string {
	if parent == "" {
		names := data.Keys()
		names = append(names, lang.Keywords()...)
		names = append(names, lang.Builtins()...)

		return names
	}

	v, ok := data.Lookup(parent)
	if !ok {
		return nil
	}

	m, err := v.Map()
	if err != nil {
		return nil
	}

	return m.Keys()
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches (ranked best-first), the candidate list,
// and the word boundaries. An empty word after a dot matches every child so
// the user can browse a map's keys.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we

	if isCommand(input) {
		if word == "" || ws != len(commandPrefix) {
			return nil, nil, wordStart, wordEnd
		}

		candidates = commands
	} else {
		parent := parentPath(input, wordStart)
		candidates = childCandidates(m.data, parent)

		if word == "" {
			if parent == "" || len(candidates) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	matches = fuzzy.Find(word, candidates)

	return matches, candidates, wordStart, wordEnd
}

func isCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), commandPrefix)
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	data lang.Map,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, isCallable(data, match.Str), selected)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Callables are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, callable, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if callable {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}

// isCallable reports whether name is a pseudo-function or a top-level
// sub-template.
func isCallable(data lang.Map, name string) bool {
	if slices.Contains(lang.Builtins(), name) {
		return true
	}

	v, ok := data.Get(name)

	return ok && v.Kind() == lang.KindTemplate
}
