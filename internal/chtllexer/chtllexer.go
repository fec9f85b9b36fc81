// Package chtllexer tokenizes CHTL source text. Lexing never throws: on a
// malformed construct it records a diagnostic and resynchronizes to the next
// plausible token boundary, per spec section 4.1.
package chtllexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Yhlight/chtl/internal/chtltoken"
	"github.com/Yhlight/chtl/internal/logger"
)

type Lexer struct {
	log       logger.Log
	source    logger.Source
	current   int
	start     int
	end       int
	codePoint rune
}

// Tokenize runs the lexer to completion and returns the full token stream
// terminated by an EOF token; diagnostics are recorded on log. Per
// the invariant in spec section 8, every byte range is covered by exactly
// one token or a lexer diagnostic span: this function never aborts early on
// a bad character, it skips one rune and resumes.
func Tokenize(log logger.Log, source logger.Source) []chtltoken.Token {
	l := &Lexer{log: log, source: source}
	var tokens []chtltoken.Token
	l.step()
	for {
		tok := l.next()
		tokens = append(tokens, tok)
		if tok.Kind == chtltoken.EOF {
			break
		}
	}
	return tokens
}

func (l *Lexer) step() {
	r, width := utf8.DecodeRuneInString(l.source.Contents[l.current:])
	if width == 0 {
		r = -1
	}
	l.codePoint = r
	l.end = l.current
	l.current += width
}

func (l *Lexer) posAt(offset int) (line, col int) {
	loc := l.source.LocFromOffset(offset)
	return loc.Line, loc.Column
}

func (l *Lexer) makeToken(kind chtltoken.Kind, start, end int) chtltoken.Token {
	line, col := l.posAt(start)
	return chtltoken.Token{
		Kind:   kind,
		Lexeme: l.source.Contents[start:end],
		Start:  start,
		End:    end,
		Line:   line,
		Column: col,
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= 0x80
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (l *Lexer) next() chtltoken.Token {
	for {
		l.start = l.end

		switch l.codePoint {
		case -1:
			return l.makeToken(chtltoken.EOF, l.start, l.start)

		case ' ', '\t', '\n', '\r':
			l.step()
			continue

		case '{':
			l.step()
			return l.makeToken(chtltoken.LBrace, l.start, l.end)
		case '}':
			l.step()
			return l.makeToken(chtltoken.RBrace, l.start, l.end)
		case ':':
			l.step()
			return l.makeToken(chtltoken.Colon, l.start, l.end)
		case ';':
			l.step()
			return l.makeToken(chtltoken.Semicolon, l.start, l.end)
		case ',':
			l.step()
			return l.makeToken(chtltoken.Comma, l.start, l.end)
		case '=':
			l.step()
			return l.makeToken(chtltoken.Equals, l.start, l.end)
		case '.':
			l.step()
			return l.makeToken(chtltoken.Dot, l.start, l.end)

		case '"', '\'':
			return l.scanString(l.codePoint)

		case '[':
			return l.scanBracketKeyword()

		case ']':
			l.step()
			return l.makeToken(chtltoken.RBracket, l.start, l.end)

		case '@':
			return l.scanAtSigil()

		case '-':
			return l.scanDashOrComment()

		case '/':
			return l.scanSlashComment()

		default:
			if isDigit(l.codePoint) {
				return l.scanNumber()
			}
			if isIdentStart(l.codePoint) {
				return l.scanIdentifier()
			}
			logger.AddError(l.log, l.source, l.start, 1,
				fmt.Sprintf("invalid character %q", l.codePoint))
			l.step()
			continue
		}
	}
}

func (l *Lexer) scanString(quote rune) chtltoken.Token {
	start := l.start
	l.step() // consume opening quote
	for {
		if l.codePoint == -1 {
			logger.AddError(l.log, l.source, start, l.end-start, "unterminated string literal")
			return l.makeToken(chtltoken.SyntaxError, start, l.end)
		}
		if l.codePoint == '\\' {
			l.step()
			if l.codePoint != -1 {
				l.step()
			}
			continue
		}
		if l.codePoint == quote {
			l.step()
			return l.makeToken(chtltoken.StringLit, start, l.end)
		}
		l.step()
	}
}

func (l *Lexer) scanNumber() chtltoken.Token {
	start := l.start
	for isDigit(l.codePoint) {
		l.step()
	}
	if l.codePoint == '.' {
		l.step()
		for isDigit(l.codePoint) {
			l.step()
		}
	}
	return l.makeToken(chtltoken.NumberLit, start, l.end)
}

func (l *Lexer) scanIdentifier() chtltoken.Token {
	start := l.start
	for isIdentPart(l.codePoint) {
		l.step()
	}
	text := l.source.Contents[start:l.end]
	if kw, ok := chtltoken.Keywords[strings.ToLower(text)]; ok {
		return l.makeToken(kw, start, l.end)
	}
	return l.makeToken(chtltoken.Identifier, start, l.end)
}

// scanBracketKeyword recognizes "[Template]" etc as a single token. A "["
// that is not one of the five recognized keywords is emitted as a plain
// LBracket so indexed anchors like "div[1]" still lex correctly.
func (l *Lexer) scanBracketKeyword() chtltoken.Token {
	start := l.start
	save := *l
	l.step() // consume '['
	identStart := l.end
	for isIdentPart(l.codePoint) {
		l.step()
	}
	name := l.source.Contents[identStart:l.end]
	if l.codePoint == ']' {
		if kind, ok := chtltoken.BracketKeywords[name]; ok {
			l.step() // consume ']'
			return l.makeToken(kind, start, l.end)
		}
	}
	// Not a recognized bracket keyword: rewind and emit a lone LBracket.
	*l = save
	l.step()
	return l.makeToken(chtltoken.LBracket, start, l.end)
}

// scanAtSigil scans "@" followed immediately by an identifier (e.g. "@Style",
// "@Element", "@Var", or a CJMOD-contributed "@Name") as a single token; the
// parser decides what it means from context.
func (l *Lexer) scanAtSigil() chtltoken.Token {
	start := l.start
	l.step() // consume '@'
	for isIdentPart(l.codePoint) {
		l.step()
	}
	if l.end == start+1 {
		logger.AddError(l.log, l.source, start, 1, "expected an identifier after '@'")
	}
	return l.makeToken(chtltoken.AtSigil, start, l.end)
}

// RawBraceCapture scans raw source text starting at openBrace (which must be
// the byte offset of a '{') and returns the text strictly between it and its
// matching '}', plus that close brace's offset. Nested braces and string
// literals are respected so a quoted "}" inside embedded CHTL-JS or Origin
// content never closes the block early. This backs both script{} capture
// (spec 4.4: routed whole to the CHTL-JS subpipeline) and [Origin] embedding
// (spec 3: "a raw block of foreign content passed through unchanged"),
// neither of which should be tokenized with the CHTL token set.
func RawBraceCapture(source string, openBrace int) (inner string, closeOffset int, ok bool) {
	depth := 0
	i := openBrace
	for i < len(source) {
		c := source[i]
		switch c {
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
			if depth == 0 {
				return source[openBrace+1 : i-1], i - 1, true
			}
		case '"', '\'':
			quote := c
			i++
			for i < len(source) && source[i] != quote {
				if source[i] == '\\' {
					i++
				}
				i++
			}
			i++ // consume closing quote
		case '/':
			if i+1 < len(source) && source[i+1] == '/' {
				for i < len(source) && source[i] != '\n' {
					i++
				}
			} else if i+1 < len(source) && source[i+1] == '*' {
				i += 2
				for i+1 < len(source) && !(source[i] == '*' && source[i+1] == '/') {
					i++
				}
				i += 2
			} else {
				i++
			}
		default:
			i++
		}
	}
	return "", openBrace, false
}

// scanDashOrComment distinguishes the CHTL-preserved "--" comment from a bare
// identifier/keyword that happens to start with '-' (CHTL allows '-' inside
// identifiers, e.g. "data-id").
func (l *Lexer) scanDashOrComment() chtltoken.Token {
	start := l.start
	save := *l
	l.step() // first '-'
	if l.codePoint == '-' {
		l.step() // second '-'
		for l.codePoint != -1 && l.codePoint != '\n' {
			l.step()
		}
		return l.makeToken(chtltoken.CommentDoubleDash, start, l.end)
	}
	*l = save
	return l.scanIdentifier()
}

func (l *Lexer) scanSlashComment() chtltoken.Token {
	start := l.start
	save := *l
	l.step() // first '/'
	switch l.codePoint {
	case '/':
		l.step()
		for l.codePoint != -1 && l.codePoint != '\n' {
			l.step()
		}
		return l.makeToken(chtltoken.CommentLine, start, l.end)
	case '*':
		l.step()
		for {
			if l.codePoint == -1 {
				logger.AddError(l.log, l.source, start, l.end-start, "unterminated block comment")
				return l.makeToken(chtltoken.SyntaxError, start, l.end)
			}
			if l.codePoint == '*' {
				l.step()
				if l.codePoint == '/' {
					l.step()
					return l.makeToken(chtltoken.CommentBlock, start, l.end)
				}
				continue
			}
			l.step()
		}
	default:
		*l = save
		logger.AddError(l.log, l.source, start, 1, "invalid character '/'")
		l.step()
		return l.next()
	}
}
