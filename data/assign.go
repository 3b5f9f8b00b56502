package data

import (
	"log/slog"
	"os"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/tmpl/lang"
)

// Assign evaluates an assignment of the form key.path=source and stores the
// result in m.
//
// The source is an expr-lang expression evaluated with m's entries as
// variables, so "--set total=count * 2" can refer to earlier data. A source
// that does not compile, such as a bare word naming no variable, is stored
// as a literal string.
func Assign(m lang.Map, assignment string) error {
	key, src, ok := strings.Cut(assignment, "=")
	if key = strings.TrimSpace(key); !ok || key == "" {
		return ErrAssignment.With(slog.String("assignment", assignment))
	}

	v, err := Eval(m, src)
	if err != nil {
		return lang.WrapError(err).With(slog.String("key", key))
	}

	return m.SetPath(key, v)
}

// AssignString stores the text after the first '=' of assignment at
// key.path in m as a string, without evaluating it.
func AssignString(m lang.Map, assignment string) error {
	key, text, ok := strings.Cut(assignment, "=")
	if key = strings.TrimSpace(key); !ok || key == "" {
		return ErrAssignment.With(slog.String("assignment", assignment))
	}

	return m.SetPath(key, lang.StringValue(text))
}

// Eval evaluates src as an expr-lang expression against m and converts the
// result into a [lang.Value].
func Eval(m lang.Map, src string) (lang.Value, error) {
	if strings.TrimSpace(src) == "" {
		return lang.StringValue(src), nil
	}

	env := m.Native()

	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return lang.StringValue(src), nil //nolint:nilerr // literal fallback
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return lang.Value{}, ErrAssignment.Wrap(err).With(slog.String("source", src))
	}

	return lang.FromNative(out)
}

// Environ returns env, a list of KEY=VALUE strings such as [os.Environ],
// as a map. A nil env reads the process environment.
func Environ(env []string) lang.Map {
	if env == nil {
		env = os.Environ()
	}

	m := make(lang.Map, len(env))

	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			m[k] = lang.StringValue(v)
		}
	}

	return m
}
