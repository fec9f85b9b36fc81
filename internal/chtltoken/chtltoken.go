// Package chtltoken defines the token kinds the CHTL lexer produces. The
// split between this package's kind set and chtljstoken's is deliberate: the
// two lexers are context-aware in different ways and spec section 3 declares
// them disjoint.
package chtltoken

type Kind uint8

const (
	EOF Kind = iota
	SyntaxError

	// Literals and identifiers.
	Identifier   // bare words, tag names, property names
	StringLit    // "..." or '...'
	NumberLit    // 123, 1.5
	UnquotedText // bare literal text runs inside text{} / attribute values

	// Keywords.
	KwText
	KwStyle
	KwScript
	KwExcept
	KwInsert
	KwDelete
	KwBefore
	KwAfter
	KwReplace
	KwAt
	KwTop
	KwBottom
	KwFrom // "from" in @Element Name from Namespace, if present

	// Bracketed declaration keywords, spec section 3: "[Template]" etc are
	// single tokens, not "[" Identifier "]".
	BracketTemplate
	BracketCustom
	BracketOrigin
	BracketNamespace
	BracketConfiguration

	// The "@X" sigil family: "@Style", "@Element", "@Var", or an arbitrary
	// "@Name" used by Origin/CJMOD-contributed forms.
	AtSigil

	// Punctuation.
	LBrace
	RBrace
	LBracket
	RBracket
	Colon
	Semicolon
	Comma
	Equals
	Dot

	// Comments are always surfaced, never dropped (spec section 4.1).
	CommentDoubleDash // "--" CHTL-preserved comment
	CommentLine       // "//"
	CommentBlock      // "/* */"
)

var names = map[Kind]string{
	EOF:                   "end of file",
	SyntaxError:           "syntax error",
	Identifier:            "identifier",
	StringLit:             "string literal",
	NumberLit:             "number literal",
	UnquotedText:          "text",
	KwText:                "text",
	KwStyle:               "style",
	KwScript:              "script",
	KwExcept:              "except",
	KwInsert:              "insert",
	KwDelete:              "delete",
	KwBefore:              "before",
	KwAfter:               "after",
	KwReplace:             "replace",
	KwAt:                  "at",
	KwTop:                 "top",
	KwBottom:              "bottom",
	KwFrom:                "from",
	BracketTemplate:       "[Template]",
	BracketCustom:         "[Custom]",
	BracketOrigin:         "[Origin]",
	BracketNamespace:      "[Namespace]",
	BracketConfiguration:  "[Configuration]",
	AtSigil:               "@ sigil",
	LBrace:                "{",
	RBrace:                "}",
	LBracket:              "[",
	RBracket:              "]",
	Colon:                 ":",
	Semicolon:             ";",
	Comma:                 ",",
	Equals:                "=",
	Dot:                   ".",
	CommentDoubleDash:     "-- comment",
	CommentLine:           "// comment",
	CommentBlock:          "/* */ comment",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown token"
}

// Keywords maps the bare-word spelling to its keyword kind. Anything not in
// this table lexes as a plain Identifier, including tag names.
var Keywords = map[string]Kind{
	"text":    KwText,
	"style":   KwStyle,
	"script":  KwScript,
	"except":  KwExcept,
	"insert":  KwInsert,
	"delete":  KwDelete,
	"before":  KwBefore,
	"after":   KwAfter,
	"replace": KwReplace,
	"at":      KwAt,
	"top":     KwTop,
	"bottom":  KwBottom,
	"from":    KwFrom,
}

// BracketKeywords maps the text between brackets to its dedicated token kind.
var BracketKeywords = map[string]Kind{
	"Template":      BracketTemplate,
	"Custom":        BracketCustom,
	"Origin":        BracketOrigin,
	"Namespace":     BracketNamespace,
	"Configuration": BracketConfiguration,
}

// Token is a single lexed unit: kind, literal text, and a half-open source
// range, per spec section 4.1 ("Tokens carry half-open ranges [start, end)").
type Token struct {
	Kind   Kind
	Lexeme string
	Start  int // byte offset, inclusive
	End    int // byte offset, exclusive
	Line   int // 1-based
	Column int // 1-based, counts Unicode scalar values
}
