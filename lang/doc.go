// Package lang compiles and renders text templates.
//
// A template is literal text interleaved with blocks. A block starts at a
// '{' whose next character selects its kind:
//
//	{$ expr }         variable: emits the text rendering of expr
//	{% statement %}   control statement
//	{# comment #}     discarded
//
// Any other '{' is literal text. So is a '{' whose block is never closed,
// unless [WithStrictBlocks] is in effect.
//
// # Statements
//
//	{% for name in key.path %} ... {% endfor %}
//	{% if expr %} ... {% elif expr %} ... {% else %} ... {% endif %}
//	{% def key.path(param, ...) %} ... {% enddef %}
//
// Inside a for body, "loop" is a map with the keys index (1-based), index0,
// last and count. A def binds a sub-template when it is rendered; the
// sub-template is invoked as {$ name(arg, ...) } or simply {$ name }, and
// re-renders its body against the current context on every use. Parameters
// shadow outer variables for the duration of the call only.
//
// # Expressions
//
// Informal EBNF, lowest precedence first:
//
//	expr    → bterm ( ("or" | "||") bterm )*
//	bterm   → bfactor ( ("and" | "&&") bfactor )*
//	bfactor → factor [ ("==" | "!=") factor ]
//	factor  → ("not" | "!") expr | "(" expr ")" | "true" | "false"
//	        | string | var
//	var     → key-path [ "(" [ expr ("," expr)* ] ")" ]
//
// Strings are quoted with ' or " and accept C-style escapes, including
// \xHH. The text "--" starts a comment that runs to the end of the line.
// Equality compares string renderings. A key path that does not resolve
// evaluates to the empty string, which is false in a boolean context.
//
// The pseudo-functions count(list), empty(list) and defined(path) take
// exactly one argument. For compatibility defined always yields true unless
// [WithStrictDefined] is in effect.
//
// # Whitespace
//
// A '>' just before a block's closing delimiter suppresses the newline that
// follows the block. A statement or comment block alone on its line (only
// spaces, tabs or other statement blocks before it) also swallows its
// trailing newline. "\r\n" counts as one newline.
//
// # Errors
//
// Every error is an [*Error] with a [Class] and, where known, the 1-based
// source line of the innermost node that failed.
package lang
