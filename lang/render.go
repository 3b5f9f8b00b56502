package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/tmpl/log"
)

// renderer walks a node tree and writes output. One renderer serves one
// render call; it is never shared.
type renderer struct {
	ctx    context.Context
	w      io.Writer
	logger log.Logger
	scope  scope
	opts   optionsKey
	depth  int
}

func (r *renderer) renderNodes(t *tree, ids []int) error {
	for _, id := range ids {
		if err := r.render(t, id); err != nil {
			return annotate(err, t.nodes[id].line)
		}
	}

	return nil
}

func (r *renderer) render(t *tree, id int) error {
	n := &t.nodes[id]

	switch n.kind {
	case NodeText:
		return r.write(n.text)

	case NodeVariable:
		v, err := r.eval(n.guard)
		if err != nil {
			return err
		}

		s, err := v.Text()
		if err != nil {
			return WrapError(err).With(slog.String("expr", n.guard.String()))
		}

		return r.write(s)

	case NodeFor:
		return r.loop(t, n)

	case NodeIf:
		return r.branch(t, id)

	case NodeDef:
		r.define(t, n)

		return nil

	case NodeEnd:
		return ErrEndMarker

	default:
		return ErrBadNode.With(slog.Int("kind", int(n.kind)))
	}
}

func (r *renderer) write(s string) error {
	if _, err := io.WriteString(r.w, s); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

func (r *renderer) canceled() error {
	if err := r.ctx.Err(); err != nil {
		return ErrCanceled.Wrap(context.Cause(r.ctx))
	}

	return nil
}

func (r *renderer) loop(t *tree, n *node) error {
	v, ok := r.scope.lookup(n.path)
	if !ok {
		return ErrUndefined.With(slog.String("path", n.path))
	}

	items, err := v.List()
	if err != nil {
		return WrapError(err).With(slog.String("path", n.path))
	}

	count := StringValue(strconv.Itoa(len(items)))

	for i, item := range items {
		if err := r.canceled(); err != nil {
			return err
		}

		meta := MapValue(Map{
			"index":  StringValue(strconv.Itoa(i + 1)),
			"index0": StringValue(strconv.Itoa(i)),
			"last":   BoolValue(i == len(items)-1),
			"count":  count,
		})

		if r.opts.loopScope == LoopLegacy {
			w := r.scope.writable()
			w["loop"] = meta
			w[n.text] = item

			if err := r.renderNodes(t, n.children); err != nil {
				return err
			}

			continue
		}

		r.scope.push(frameLoop, Map{"loop": meta, n.text: item})
		err := r.renderNodes(t, n.children)
		r.scope.pop()

		if err != nil {
			return err
		}
	}

	return nil
}

// branch renders the first branch of an if/elif/else chain whose guard is
// not empty.
func (r *renderer) branch(t *tree, id int) error {
	for cur := id; cur != noNode; cur = t.nodes[cur].next {
		n := &t.nodes[cur]

		if n.guard != nil {
			v, err := r.eval(n.guard)
			if err != nil {
				return annotate(err, n.line)
			}

			if v.Empty() {
				continue
			}
		}

		return r.renderNodes(t, n.children)
	}

	return nil
}

// define binds the def body as a sub-template. A target path that cannot be
// resolved is ignored.
func (r *renderer) define(t *tree, n *node) {
	sub := &SubTemplate{tree: t, body: n.children, params: n.params}

	if !r.scope.define(n.text, SubTemplateValue(sub)) {
		r.logger.TraceContext(
			r.ctx,
			"def target not resolved",
			slog.String("path", n.text),
			slog.Int("line", n.line),
		)
	}
}

// eval computes the value of e against the current scope.
func (r *renderer) eval(e *expr) (Value, error) {
	switch e.kind {
	case exprLiteral:
		return e.val, nil

	case exprPath:
		v, ok := r.scope.lookup(e.path)
		if !ok {
			return Value{}, nil
		}

		if v.kind == KindTemplate {
			return r.invoke(e.path, v.tmpl, nil)
		}

		return v, nil

	case exprCall:
		return r.call(e)

	case exprNot:
		v, err := r.eval(e.lhs)
		if err != nil {
			return Value{}, err
		}

		return BoolValue(v.Empty()), nil

	case exprAnd, exprOr:
		lhs, err := r.eval(e.lhs)
		if err != nil {
			return Value{}, err
		}

		// The right operand is skipped once the left decides the result.
		if lhs.Empty() == (e.kind == exprAnd) {
			return BoolValue(e.kind == exprOr), nil
		}

		rhs, err := r.eval(e.rhs)
		if err != nil {
			return Value{}, err
		}

		return BoolValue(!rhs.Empty()), nil

	case exprEq, exprNe:
		lhs, err := r.text(e.lhs)
		if err != nil {
			return Value{}, err
		}

		rhs, err := r.text(e.rhs)
		if err != nil {
			return Value{}, err
		}

		return BoolValue((lhs == rhs) == (e.kind == exprEq)), nil

	default:
		return Value{}, ErrInvalidExpr.With(slog.Int("kind", int(e.kind)))
	}
}

func (r *renderer) text(e *expr) (string, error) {
	v, err := r.eval(e)
	if err != nil {
		return "", err
	}

	s, err := v.Text()
	if err != nil {
		return "", WrapError(err).With(slog.String("expr", e.String()))
	}

	return s, nil
}

func (r *renderer) call(e *expr) (Value, error) {
	if isBuiltin(e.path) {
		if len(e.args) != 1 {
			return Value{}, ErrArgCount.With(
				slog.String("function", e.path),
				slog.Int("expected", 1),
				slog.Int("found", len(e.args)),
			)
		}

		return r.builtin(e.path, e.args[0])
	}

	v, ok := r.scope.lookup(e.path)
	if !ok {
		return Value{}, ErrUndefined.With(slog.String("path", e.path))
	}

	sub, err := v.SubTemplate()
	if err != nil {
		return Value{}, WrapError(err).With(slog.String("path", e.path))
	}

	args := make([]Value, len(e.args))
	for i, a := range e.args {
		if args[i], err = r.eval(a); err != nil {
			return Value{}, err
		}
	}

	return r.invoke(e.path, sub, args)
}

// builtin evaluates count, empty or defined. A bare key path argument is
// resolved without invoking a sub-template bound there.
func (r *renderer) builtin(name string, arg *expr) (Value, error) {
	if name == fnDefined {
		if !r.opts.strictDefined || arg.kind != exprPath {
			return BoolValue(true), nil
		}

		_, ok := r.scope.lookup(arg.path)

		return BoolValue(ok), nil
	}

	var v Value

	if arg.kind == exprPath {
		var ok bool

		v, ok = r.scope.lookup(arg.path)
		if !ok {
			return Value{}, ErrUndefined.With(
				slog.String("path", arg.path),
				slog.String("function", name),
			)
		}
	} else {
		var err error

		if v, err = r.eval(arg); err != nil {
			return Value{}, err
		}
	}

	items, err := v.List()
	if err != nil {
		return Value{}, WrapError(err).With(slog.String("function", name))
	}

	if name == fnCount {
		return StringValue(strconv.Itoa(len(items))), nil
	}

	return BoolValue(len(items) == 0), nil
}

// invoke renders a sub-template with args bound to its formal parameters in
// a frame layered over the calling scope.
func (r *renderer) invoke(name string, sub *SubTemplate, args []Value) (Value, error) {
	if len(args) > len(sub.params) {
		return Value{}, ErrArgCount.With(
			slog.String("template", name),
			slog.Int("expected", len(sub.params)),
			slog.Int("found", len(args)),
		)
	}

	if r.opts.maxDepth > 0 && r.depth >= r.opts.maxDepth {
		return Value{}, ErrMaxDepth.With(
			slog.String("template", name),
			slog.Int("max_depth", r.opts.maxDepth),
		)
	}

	if err := r.canceled(); err != nil {
		return Value{}, err
	}

	params := make(Map, len(args))
	for i, a := range args {
		params[sub.params[i]] = a
	}

	var buf strings.Builder

	w := r.w
	r.w = &buf
	r.depth++
	r.scope.push(frameParams, params)

	err := r.renderNodes(sub.tree, sub.body)

	r.scope.pop()
	r.depth--
	r.w = w

	if err != nil {
		return Value{}, err
	}

	return StringValue(buf.String()), nil
}
