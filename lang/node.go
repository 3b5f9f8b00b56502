package lang

// NodeKind identifies the variant of a parsed template node.
type NodeKind uint8

const (
	// NodeText emits literal text.
	NodeText NodeKind = iota

	// NodeVariable emits the text rendering of an expression.
	NodeVariable

	// NodeFor renders its children once per element of a list.
	NodeFor

	// NodeIf is one branch of an if/elif/else chain.
	NodeIf

	// NodeDef binds its children as a sub-template when rendered.
	NodeDef

	// NodeEnd marks the end of a block during parsing. It never appears in a
	// compiled tree.
	NodeEnd
)

// String returns a string representation of the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeText:
		return "text"
	case NodeVariable:
		return "variable"
	case NodeFor:
		return "for"
	case NodeIf:
		return "if"
	case NodeDef:
		return "def"
	case NodeEnd:
		return "end"
	default:
		return "unknown"
	}
}

// noNode terminates an if/elif/else chain.
const noNode = -1

// node is one element of a tree arena. Composite nodes refer to their
// children by index.
type node struct {
	guard    *expr    // variable expression; if/elif condition, nil for else
	text     string   // literal text; loop variable; def target path
	path     string   // for-loop iterable
	params   []string // def formal parameters
	children []int
	next     int // following elif/else branch, or noNode
	line     int
	kind     NodeKind
	branch   TokenKind // TokenIf, TokenElif or TokenElse for NodeIf
}

// tree owns every node of one compiled template. It is never modified after
// parsing and may be rendered concurrently.
type tree struct {
	nodes []node
	root  []int
}

func (t *tree) add(n node) int {
	t.nodes = append(t.nodes, n)

	return len(t.nodes) - 1
}
