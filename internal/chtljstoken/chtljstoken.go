// Package chtljstoken defines the token kinds the CHTL-JS lexer produces.
// Deliberately disjoint from chtltoken (spec section 3): the two dialects
// are lexed by separate context-aware scanners over separate source spans.
package chtljstoken

type Kind uint8

const (
	EOF Kind = iota
	SyntaxError

	Identifier
	StringLit
	NumberLit
	BoolLit

	KwVir
	KwFrom

	// The five built-in function names always lex as these dedicated kinds,
	// wherever they appear; names added later through the registry's
	// AddBuiltinFunction still lex as plain Identifier.
	FnListen
	FnDelegate
	FnAnimate
	FnINeverAway
	FnPrintMyLove

	LBrace
	RBrace
	LBracket
	RBracket
	LParen
	RParen
	DoubleLBrace // "{{"
	DoubleRBrace // "}}"
	Arrow        // "->"
	Dot
	Colon
	Semicolon
	Comma
	Equals
	FatArrow // "=>"
	Lt       // "<" — state tag open
	Gt       // ">" — state tag close
	Plus
	Minus
	Star
	Slash
	Question
	Amp
	Bang

	CommentDoubleDash
	CommentLine
	CommentBlock

	// Name kept for raw passthrough JS; the lexer never emits it. Raw JS the
	// parser doesn't need to understand structurally is captured by the
	// parser as a chtljsast.JSFragment node and re-emitted verbatim.
	JSFragment
)

var names = map[Kind]string{
	EOF: "end of file", SyntaxError: "syntax error",
	Identifier: "identifier", StringLit: "string literal", NumberLit: "number literal", BoolLit: "boolean literal",
	KwVir: "vir", KwFrom: "from",
	FnListen: "listen", FnDelegate: "delegate", FnAnimate: "animate",
	FnINeverAway: "iNeverAway", FnPrintMyLove: "printMylove",
	LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]", LParen: "(", RParen: ")",
	DoubleLBrace: "{{", DoubleRBrace: "}}", Arrow: "->", Dot: ".",
	Colon: ":", Semicolon: ";", Comma: ",", Equals: "=", FatArrow: "=>",
	Lt: "<", Gt: ">", Plus: "+", Minus: "-", Star: "*", Slash: "/",
	Question: "?", Amp: "&", Bang: "!",
	CommentDoubleDash: "-- comment", CommentLine: "// comment", CommentBlock: "/* */ comment",
	JSFragment: "js",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown token"
}

// BuiltinFunctions is the spec-fixed initial set (spec section 3); the
// registry may extend it at runtime via add_builtin_function (spec 4.6).
var BuiltinFunctions = map[string]Kind{
	"listen":      FnListen,
	"delegate":    FnDelegate,
	"animate":     FnAnimate,
	"iNeverAway":  FnINeverAway,
	"printMylove": FnPrintMyLove,
}

type Token struct {
	Kind   Kind
	Lexeme string
	Start  int
	End    int
	Line   int
	Column int
}
