// Package chtljslexer tokenizes CHTL-JS source text: the extended scripting
// dialect legal only inside script{} blocks (spec section 3, 4.1). It is
// context-aware in its own way, distinct from chtllexer: it recognizes "{{"/
// "}}" as selector boundaries and "->" as one token, never dropping "-"
// followed by ">" the way plain JS would lex them separately.
package chtljslexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Yhlight/chtl/internal/chtljstoken"
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

func Tokenize(log logger.Log, source logger.Source) []chtljstoken.Token {
	l := &Lexer{log: log, source: source}
	var tokens []chtljstoken.Token
	l.step()
	for {
		tok := l.next()
		tokens = append(tokens, tok)
		if tok.Kind == chtljstoken.EOF {
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

func (l *Lexer) peekRune() rune {
	r, _ := utf8.DecodeRuneInString(l.source.Contents[l.current:])
	return r
}

func (l *Lexer) posAt(offset int) (line, col int) {
	loc := l.source.LocFromOffset(offset)
	return loc.Line, loc.Column
}

func (l *Lexer) makeToken(kind chtljstoken.Kind, start, end int) chtljstoken.Token {
	line, col := l.posAt(start)
	return chtljstoken.Token{
		Kind: kind, Lexeme: l.source.Contents[start:end],
		Start: start, End: end, Line: line, Column: col,
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= 0x80
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (l *Lexer) next() chtljstoken.Token {
	for {
		l.start = l.end

		switch l.codePoint {
		case -1:
			return l.makeToken(chtljstoken.EOF, l.start, l.start)

		case ' ', '\t', '\n', '\r':
			l.step()
			continue

		case '{':
			if l.peekRune() == '{' {
				l.step()
				l.step()
				return l.makeToken(chtljstoken.DoubleLBrace, l.start, l.end)
			}
			l.step()
			return l.makeToken(chtljstoken.LBrace, l.start, l.end)
		case '}':
			if l.peekRune() == '}' {
				l.step()
				l.step()
				return l.makeToken(chtljstoken.DoubleRBrace, l.start, l.end)
			}
			l.step()
			return l.makeToken(chtljstoken.RBrace, l.start, l.end)
		case '[':
			l.step()
			return l.makeToken(chtljstoken.LBracket, l.start, l.end)
		case ']':
			l.step()
			return l.makeToken(chtljstoken.RBracket, l.start, l.end)
		case '(':
			l.step()
			return l.makeToken(chtljstoken.LParen, l.start, l.end)
		case ')':
			l.step()
			return l.makeToken(chtljstoken.RParen, l.start, l.end)
		case ':':
			l.step()
			return l.makeToken(chtljstoken.Colon, l.start, l.end)
		case ';':
			l.step()
			return l.makeToken(chtljstoken.Semicolon, l.start, l.end)
		case ',':
			l.step()
			return l.makeToken(chtljstoken.Comma, l.start, l.end)
		case '.':
			l.step()
			return l.makeToken(chtljstoken.Dot, l.start, l.end)
		case '+':
			l.step()
			return l.makeToken(chtljstoken.Plus, l.start, l.end)
		case '*':
			l.step()
			return l.makeToken(chtljstoken.Star, l.start, l.end)
		case '?':
			l.step()
			return l.makeToken(chtljstoken.Question, l.start, l.end)
		case '&':
			l.step()
			return l.makeToken(chtljstoken.Amp, l.start, l.end)
		case '!':
			l.step()
			return l.makeToken(chtljstoken.Bang, l.start, l.end)

		case '=':
			l.step()
			if l.codePoint == '>' {
				l.step()
				return l.makeToken(chtljstoken.FatArrow, l.start, l.end)
			}
			return l.makeToken(chtljstoken.Equals, l.start, l.end)

		case '<':
			l.step()
			return l.makeToken(chtljstoken.Lt, l.start, l.end)
		case '>':
			l.step()
			return l.makeToken(chtljstoken.Gt, l.start, l.end)

		case '-':
			l.step()
			if l.codePoint == '>' {
				l.step()
				return l.makeToken(chtljstoken.Arrow, l.start, l.end)
			}
			if l.codePoint == '-' {
				// CHTL-preserved "--" comment, legal inside script bodies too
				// (spec section 4: Origin embedding permits "-- comments only").
				l.step()
				for l.codePoint != -1 && l.codePoint != '\n' {
					l.step()
				}
				return l.makeToken(chtljstoken.CommentDoubleDash, l.start, l.end)
			}
			return l.makeToken(chtljstoken.Minus, l.start, l.end)

		case '/':
			return l.scanSlash()

		case '"', '\'', '`':
			return l.scanString(l.codePoint)

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

func (l *Lexer) scanSlash() chtljstoken.Token {
	start := l.start
	l.step()
	switch l.codePoint {
	case '/':
		l.step()
		for l.codePoint != -1 && l.codePoint != '\n' {
			l.step()
		}
		return l.makeToken(chtljstoken.CommentLine, start, l.end)
	case '*':
		l.step()
		for {
			if l.codePoint == -1 {
				logger.AddError(l.log, l.source, start, l.end-start, "unterminated block comment")
				return l.makeToken(chtljstoken.SyntaxError, start, l.end)
			}
			if l.codePoint == '*' {
				l.step()
				if l.codePoint == '/' {
					l.step()
					return l.makeToken(chtljstoken.CommentBlock, start, l.end)
				}
				continue
			}
			l.step()
		}
	default:
		return l.makeToken(chtljstoken.Slash, start, l.end)
	}
}

func (l *Lexer) scanString(quote rune) chtljstoken.Token {
	start := l.start
	l.step()
	for {
		if l.codePoint == -1 {
			logger.AddError(l.log, l.source, start, l.end-start, "unterminated string literal")
			return l.makeToken(chtljstoken.SyntaxError, start, l.end)
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
			return l.makeToken(chtljstoken.StringLit, start, l.end)
		}
		l.step()
	}
}

func (l *Lexer) scanNumber() chtljstoken.Token {
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
	return l.makeToken(chtljstoken.NumberLit, start, l.end)
}

func (l *Lexer) scanIdentifier() chtljstoken.Token {
	start := l.start
	for isIdentPart(l.codePoint) {
		l.step()
	}
	text := l.source.Contents[start:l.end]
	switch text {
	case "vir":
		return l.makeToken(chtljstoken.KwVir, start, l.end)
	case "from":
		return l.makeToken(chtljstoken.KwFrom, start, l.end)
	case "true", "false":
		return l.makeToken(chtljstoken.BoolLit, start, l.end)
	}
	if kind, ok := chtljstoken.BuiltinFunctions[text]; ok {
		return l.makeToken(kind, start, l.end)
	}
	return l.makeToken(chtljstoken.Identifier, start, l.end)
}

// ScanSelectorText returns the raw text between "{{" and the next "}}",
// treated as an opaque run (no nested braces expected per spec 4.2), plus
// the close brace's offset. Used by the parser once it has consumed a
// DoubleLBrace, since selector text is not itself JS-tokenizable.
func ScanSelectorText(source string, afterDoubleLBrace int) (text string, closeOffset int, ok bool) {
	idx := strings.Index(source[afterDoubleLBrace:], "}}")
	if idx == -1 {
		return "", afterDoubleLBrace, false
	}
	end := afterDoubleLBrace + idx
	return strings.TrimSpace(source[afterDoubleLBrace:end]), end, true
}
