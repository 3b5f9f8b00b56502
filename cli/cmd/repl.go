package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/tmpl/cli/cmd/repl"
	"github.com/ardnew/tmpl/log"
)

// Repl starts an interactive session that renders each line against a
// persistent data context.
type Repl struct {
	DataFlags    `embed:""`
	CompileFlags `embed:""`

	History   string `default:"${cache}/history.utf8" help:"File recording entered lines." placeholder:"FILE" type:"path"`
	NoHistory bool   `help:"Do not read or write the history file."`
}

// Run executes the repl command.
func (c *Repl) Run(ctx context.Context) error {
	m, err := c.load(ctx)
	if err != nil {
		return err
	}

	history := c.History
	if c.NoHistory {
		history = ""
	}

	log.DebugContext(ctx, "starting repl",
		slog.String("history", history),
		slog.Int("keys", len(m)),
	)

	return repl.Run(ctx, repl.Config{
		Data:        m,
		Options:     c.options("repl"),
		Loader:      c.loader(ctx),
		HistoryPath: history,
		Logger:      log.Default(),
	})
}
