package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tmpl/data"
	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

// editDataMsg is sent when context editing completes successfully.
type editDataMsg struct{ data lang.Map }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a decode
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-decode error.
type editErrorMsg struct{ err error }

const prompt = "➜ "

func helpMessage() string {
	return `
Each line is rendered as a template against the session context.
A line without "{" is an expression: "site.title" renders {$ site.title }.
Definitions ({% def ... %}) persist in the context.

Commands:

  :help          Print this help
  :keys          List the key paths of the context
  :edit          Edit the context as YAML in $EDITOR
  :load FILE...  Merge data files into the context
  :clear         Clear screen
  :quit          Exit REPL

Keys:
  Tab / Shift-Tab        cycle completions (keys, keywords, functions)
  Space                  accept the current completion
  Esc                    abandon the current completion
  Up / Down              history
  Shift-Up / Shift-Down  history of templates or commands only
  Ctrl-C on empty line or Ctrl-D to exit
`
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// formatCommand formats the echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

// Config describes a REPL session.
type Config struct {
	Data        lang.Map      // initial context; modified by the session
	Options     []lang.Option // compile options for each input line
	Loader      *data.Loader  // resolves :load files
	HistoryPath string        // empty disables persistent history
	Logger      log.Logger
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	data         lang.Map
	opts         []lang.Option
	loader       *data.Loader
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
}

// Run starts an interactive session.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg.Logger.TraceContext(
		ctx,
		"repl start",
		slog.String("history", cfg.HistoryPath),
		slog.Int("keys", len(cfg.Data)),
	)

	history := NewHistory(cfg.HistoryPath)
	if cfg.HistoryPath != "" {
		if err := history.Load(); err != nil {
			cfg.Logger.WarnContext(ctx, "could not load history",
				slog.String("file", cfg.HistoryPath),
				slog.String("error", err.Error()),
			)
		}
	}

	cfg.Logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, cfg, history)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, cfg Config, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	if cfg.Data == nil {
		cfg.Data = lang.Map{}
	}

	if cfg.Loader == nil {
		cfg.Loader = data.New(data.WithLogger(cfg.Logger))
	}

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		data:       cfg.Data,
		opts:       append([]lang.Option{lang.WithName("repl"), lang.WithLogger(cfg.Logger)}, cfg.Options...),
		loader:     cfg.Loader,
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(prompt) - 2

		return m, nil

	case editDataMsg:
		// Replace entries in place so the context identity is kept.
		clear(m.data)
		m.data.Merge(msg.data)
		refreshMatches(&m, false)

		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("keys", len(m.data)),
		)

		return m, tea.Println(resultStyle.Render("context updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintView())
	b.WriteString("\n")

	return b.String()
}

// hintView renders the line below the input: history position, usage hint,
// signature of the enclosing call, or the completion bar.
func (m model) hintView() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		return hintStyle.Render("Type a template or expression, or :help")
	}

	if call := detectFunctionCall(input, m.input.Position()); call.inCall && !isCommand(input) {
		if sig, params := getSignature(m.data, call.name); sig != "" {
			return renderSignatureHint(call.name, params, call.argIndex)
		}
	}

	if len(m.matches) > 0 {
		return renderCandidateBar(m.matches, m.data, m.suggIdx, m.tabActive, m.width)
	}

	return ""
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)
		}

		return m, nil

	case tea.KeyRunes, tea.KeySpace:
		// Space is a "breaking" key while tab-cycling.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves through the completion candidates in direction dir.
func (m model) cycle(dir int) model {
	if len(m.matches) == 0 {
		return m
	}

	// Single candidate: complete and confirm immediately.
	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + dir + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if dir < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it. autoConfirm should
// be false for deletions and cursor navigation so that the user can freely
// edit without unexpected completions.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

// historyStep moves through history by dir. With sameKind, entries of the
// other kind (template or command) than the current input are skipped.
func (m model) historyStep(dir int, sameKind bool) model {
	kind := kindOf(m.input.Value())

	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.GetEntry(i)
		if err != nil || sameKind && entry.Kind != kind {
			continue
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	// Stepping past the newest entry returns to an empty line.
	if dir > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.matches = nil

	if m.history.path != "" {
		if err := m.history.Write(input); err != nil {
			m.logger.WarnContext(m.ctxFunc(), "could not write history",
				slog.String("error", err.Error()))
		}
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(formatCommand(input))

	if isCommand(input) {
		m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("input", input))

		next, cmd := m.executeCommand(input)

		return next, tea.Sequence(echo, cmd)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl render", slog.String("input", input))

	out, err := m.evaluate(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

// evaluate renders input against the session context. Input without a
// block is treated as the expression of a variable block.
func (m model) evaluate(input string) (string, error) {
	src := input
	if !strings.Contains(src, "{") {
		src = "{$ " + src + " }"
	}

	ctx := m.ctxFunc()

	t, err := lang.Compile(ctx, src, m.opts...)
	if err != nil {
		return "", err
	}

	out, err := t.Render(ctx, m.data)
	if err != nil {
		return "", err
	}

	return strings.TrimSuffix(out, "\n"), nil
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(input), commandPrefix))
	if len(fields) == 0 {
		return m, nil
	}

	cmd, args := fields[0], fields[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Quit

	case "h", "help":
		return m, tea.Println(helpMessage())

	case "k", "keys":
		return m, tea.Println(m.listKeys())

	case "c", "clear":
		return m, tea.ClearScreen

	case "l", "load":
		if err := m.load(args...); err != nil {
			return m, tea.Println(errorStyle.Render("error: " + err.Error()))
		}

		refreshMatches(&m, false)

		return m, tea.Println(resultStyle.Render(fmt.Sprintf("loaded %d file(s)", len(args))))

	case "e", "edit":
		return m.handleEdit()

	default:
		return m, tea.Println(
			errorStyle.Render("unknown command: " + cmd + " (try :help)"),
		)
	}
}

// load merges data files into the session context.
func (m model) load(files ...string) error {
	if len(files) == 0 {
		return errors.New("usage: :load FILE...")
	}

	loaded, err := m.loader.Load(m.ctxFunc(), files...)
	if err != nil {
		return err
	}

	m.data.Merge(loaded)

	return nil
}

func (m model) handleEdit() (model, tea.Cmd) {
	cmd := &editCommand{
		data:    m.data,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return m, tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.newData == nil {
			return editCancelledMsg{}
		}

		return editDataMsg{data: cmd.newData}
	})
}

// listKeys formats every key path of the context with a preview of its
// value.
func (m model) listKeys() string {
	paths := m.data.Paths()
	if len(paths) == 0 {
		return hintStyle.Render("  (empty context)")
	}

	var b strings.Builder

	for _, path := range paths {
		v, _ := m.data.Lookup(path)
		b.WriteString(fmt.Sprintf("  %s %s\n", path, hintStyle.Render(preview(v))))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// preview describes a value in a few words.
func preview(v lang.Value) string {
	switch v.Kind() {
	case lang.KindList:
		l, _ := v.List()

		return fmt.Sprintf("[%d items]", len(l))

	case lang.KindMap:
		mv, _ := v.Map()

		return fmt.Sprintf("{%d keys}", len(mv))

	default:
		s := v.String()
		if len(s) > 40 {
			s = s[:37] + "..."
		}

		return strconv.Quote(s)
	}
}
