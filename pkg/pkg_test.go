package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	if Version() != strings.TrimSpace(string(buf)) {
		t.Errorf("Version() = %q, want %q", Version(), strings.TrimSpace(string(buf)))
	}

	if !regexp.MustCompile(`^\d+\.\d+\.\d+`).MatchString(Version()) {
		t.Errorf("Version() %q is not semantic", Version())
	}
}

func TestEnvPrefix(t *testing.T) {
	if got := EnvPrefix(); got != "TMPL_" {
		t.Errorf("EnvPrefix() = %q", got)
	}
}

func TestPaths(t *testing.T) {
	if Prefix() == "" || strings.HasPrefix(Prefix(), ".") {
		t.Errorf("unexpected prefix %q", Prefix())
	}

	if got := ConfigPath("config.yaml"); filepath.Base(got) != "config.yaml" ||
		filepath.Base(filepath.Dir(got)) != Prefix() {
		t.Errorf("ConfigPath = %q", got)
	}

	if got := CachePath("history"); filepath.Dir(got) != CacheDir() {
		t.Errorf("CachePath = %q", got)
	}
}

func TestUserDir_Fallback(t *testing.T) {
	failing := func() (string, error) { return "", os.ErrNotExist }

	t.Setenv("HOME", t.TempDir())

	got := userDir(failing, ".cache")
	if filepath.Base(filepath.Dir(got)) != ".cache" {
		t.Errorf("expected $HOME/.cache fallback, got %q", got)
	}
}
