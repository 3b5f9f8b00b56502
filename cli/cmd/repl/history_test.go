package repl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHistory_WriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), HistoryFile)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load of missing file: %v", err)
	}

	for _, line := range []string{"{$ a }", ":keys", "  ", "{$ b }", "{$ b }", "{$ a }"} {
		if err := h.Write(line); err != nil {
			t.Fatalf("Write(%q): %v", line, err)
		}
	}

	want := []HistoryEntry{
		{Line: ":keys", Kind: entryCommand},
		{Line: "{$ b }", Kind: entryTemplate},
		{Line: "{$ a }", Kind: entryTemplate},
	}

	got := h.Entries()
	if len(got) != len(want) {
		t.Fatalf("Entries() = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if reloaded.Len() != len(want) {
		t.Errorf("reloaded %d entries, want %d", reloaded.Len(), len(want))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(string(raw), "C::keys\n") {
		t.Errorf("unexpected file content %q", raw)
	}
}

func TestHistory_GetEntry(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), HistoryFile))
	if err := h.Write("x"); err != nil {
		t.Fatal(err)
	}

	if e, err := h.GetEntry(0); err != nil || e.Line != "x" {
		t.Errorf("GetEntry(0) = %+v, %v", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.GetEntry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("GetEntry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}
