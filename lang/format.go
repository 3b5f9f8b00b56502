package lang

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Print writes an indented listing of the compiled node tree to w, one node
// per line with its source line number.
func (t *Template) Print(w io.Writer) error {
	return printNodes(w, t.tree, t.tree.root, 0)
}

func printNodes(w io.Writer, t *tree, ids []int, depth int) error {
	for _, id := range ids {
		n := &t.nodes[id]

		if n.kind == NodeIf {
			for cur := id; cur != noNode; cur = t.nodes[cur].next {
				b := &t.nodes[cur]

				if err := printLine(w, b, depth); err != nil {
					return err
				}

				if err := printNodes(w, t, b.children, depth+1); err != nil {
					return err
				}
			}

			continue
		}

		if err := printLine(w, n, depth); err != nil {
			return err
		}

		if err := printNodes(w, t, n.children, depth+1); err != nil {
			return err
		}
	}

	return nil
}

func printLine(w io.Writer, n *node, depth int) error {
	_, err := fmt.Fprintf(
		w,
		"%4d %s%s\n",
		n.line,
		strings.Repeat("  ", depth),
		describe(n),
	)

	return err
}

// describe returns a one-line summary of n.
func describe(n *node) string {
	switch n.kind {
	case NodeText:
		return "text " + strconv.Quote(n.text)

	case NodeVariable:
		return "variable " + n.guard.String()

	case NodeFor:
		return "for " + n.text + " in " + n.path

	case NodeIf:
		if n.guard == nil {
			return n.branch.String()
		}

		return n.branch.String() + " " + n.guard.String()

	case NodeDef:
		if n.params == nil {
			return "def " + n.text
		}

		return "def " + n.text + "(" + strings.Join(n.params, ", ") + ")"

	default:
		return n.kind.String()
	}
}

// Keys returns the sorted, de-duplicated key paths referenced by the
// template's expressions and for loops, including sub-template names.
func (t *Template) Keys() []string {
	var out []string

	for i := range t.tree.nodes {
		n := &t.tree.nodes[i]

		switch n.kind {
		case NodeFor:
			out = append(out, n.path)
		case NodeDef:
			out = append(out, n.text)
		default:
		}

		out = n.guard.paths(out)
	}

	slices.Sort(out)

	return slices.Compact(out)
}

// FormatYAML writes m as YAML to w.
func (m Map) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, m.Native(), opts...)
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	if _, err := w.Write(data); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// FormatJSON writes m as JSON to w.
func (m Map) FormatJSON(ctx context.Context, w io.Writer, indent int) error {
	opts := []yaml.EncodeOption{yaml.JSON()}
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	}

	data, err := yaml.MarshalContext(ctx, m.Native(), opts...)
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	if _, err := w.Write(data); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
