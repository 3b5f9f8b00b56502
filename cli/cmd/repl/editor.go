package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/tmpl/data"
	"github.com/ardnew/tmpl/lang"
	"github.com/ardnew/tmpl/log"
)

const (
	defaultEditor = "vi"
	editIndent    = 2
)

// editCommand implements [tea.ExecCommand] for the edit-decode-retry loop.
// It writes the context as YAML to a temp file, opens the user's editor,
// and decodes the result. On a decode error the user is prompted to
// re-edit; declining exits the program.
type editCommand struct {
	data    lang.Map
	ctxFunc func() context.Context
	newData lang.Map
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-decode-retry loop. An empty file cancels the edit
// and leaves newData nil. If the user declines to re-edit, it returns
// [ErrEditDeclined].
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	var buf bytes.Buffer
	if err := c.data.FormatYAML(ctx, &buf, editIndent); err != nil {
		return fmt.Errorf("format context: %w", err)
	}

	content := buf.String()

	f, err := os.CreateTemp(os.TempDir(), "tmpl-repl-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		edited, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(edited)) == "" {
			return nil
		}

		m, decodeErr := data.Decode(ctx, bytes.NewReader(edited), data.FormatYAML)

		c.logger.TraceContext(
			ctx,
			"editor decode attempt",
			slog.Int("content_length", len(edited)),
			slog.Bool("success", decodeErr == nil),
		)

		if decodeErr == nil {
			c.newData = restoreTemplates(c.data, m)

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDecode error: %s\n", decodeErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = string(edited)
	}
}

// restoreTemplates puts back the sub-templates of old that YAML can only
// show as a description, wherever the edited context left that description
// unchanged.
func restoreTemplates(old, edited lang.Map) lang.Map {
	for _, path := range old.Paths() {
		v, _ := old.Lookup(path)
		if v.Kind() != lang.KindTemplate {
			continue
		}

		if e, ok := edited.Lookup(path); ok && e.Kind() == lang.KindString && e.String() == v.String() {
			_ = edited.SetPath(path, v)
		}
	}

	return edited
}

// runEditor launches the user's editor on path and returns the edited
// content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := strings.Fields(os.Getenv("EDITOR"))
	if len(editor) == 0 {
		editor = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, editor[0], append(editor[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
