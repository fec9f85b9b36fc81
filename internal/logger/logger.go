// Package logger implements the diagnostic sink threaded through every pass
// of the compiler. Diagnostics are collected, never raised: a pass appends to
// a Log and keeps going, exactly as spec section 7 requires.
package logger

import (
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Severity mirrors the three levels the spec's Diagnostic shape names.
type Severity uint8

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Loc is a 1-based line, Unicode-scalar-value column position, per spec 4.1's
// line/column policy. Offset is the 0-based byte offset used to slice source
// text; Length is in bytes.
type Loc struct {
	File   string
	Line   int
	Column int
	Offset int
	Length int
}

type Msg struct {
	Severity Severity
	Loc      Loc
	Text     string
	LineText string
}

// String renders an Error as "[file:line:column] message" and any other
// severity clang-style as "file:line:column: severity: message".
func (m Msg) String() string {
	if m.Severity == Error {
		return fmt.Sprintf("[%s:%d:%d] %s", m.Loc.File, m.Loc.Line, m.Loc.Column, m.Text)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", m.Loc.File, m.Loc.Line, m.Loc.Column, m.Severity, m.Text)
}

type sortableMsgs []Msg

func (a sortableMsgs) Len() int      { return len(a) }
func (a sortableMsgs) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a sortableMsgs) Less(i, j int) bool {
	if a[i].Loc.File != a[j].Loc.File {
		return a[i].Loc.File < a[j].Loc.File
	}
	if a[i].Loc.Line != a[j].Loc.Line {
		return a[i].Loc.Line < a[j].Loc.Line
	}
	return a[i].Loc.Column < a[j].Loc.Column
}

// Log is deliberately a small struct of closures, the same shape the teacher
// uses, so callers (lexer/parser/validator/generator) can be handed a Log
// without caring whether it buffers in memory or streams to a terminal.
type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg

	// CompileID is a fresh random id for each Log, so each compile call's
	// Log has its own. It is stored on the Log only: Msg values do not carry
	// it and pkg/chtl does not read it.
	CompileID uuid.UUID
}

// NewDeferLog collects messages silently; this is what pkg/chtl uses so a
// GenerateResult can carry its own diagnostics rather than print them.
func NewDeferLog() Log {
	var mu sync.Mutex
	var msgs sortableMsgs
	hasErrors := false

	return Log{
		CompileID: uuid.New(),
		AddMsg: func(msg Msg) {
			mu.Lock()
			defer mu.Unlock()
			if msg.Severity == Error {
				hasErrors = true
			}
			msgs = append(msgs, msg)
		},
		HasErrors: func() bool {
			mu.Lock()
			defer mu.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mu.Lock()
			defer mu.Unlock()
			sort.Stable(msgs)
			out := make([]Msg, len(msgs))
			copy(out, msgs)
			return out
		},
	}
}

// Source is the minimal Source{name, text} supplier contract the spec
// assigns to an external file loader (spec section 1, out of scope). The
// core only ever consumes this shape; it never reads a filesystem itself.
type Source struct {
	Index    uint32
	Name     string
	Contents string
}

// LocFromOffset turns a 0-based byte offset into the line/column policy spec
// 4.1 demands: 1-based line, column counts Unicode scalar values not bytes.
func (s Source) LocFromOffset(offset int) Loc {
	line := 1
	col := 1
	lineStart := 0
	for i := 0; i < offset && i < len(s.Contents); {
		r, size := utf8.DecodeRuneInString(s.Contents[i:])
		if r == '\n' {
			line++
			col = 1
			lineStart = i + size
		} else if r == '\r' {
			// \r\n and \r both count as one line break (spec section 6).
			if i+size < len(s.Contents) && s.Contents[i+size] == '\n' {
				size++
			}
			line++
			col = 1
			lineStart = i + size
		} else {
			col++
		}
		i += size
	}
	_ = lineStart
	return Loc{File: s.Name, Line: line, Column: col, Offset: offset}
}

// LineText returns the full source line containing offset, for diagnostic
// context the way clang-style messages show it.
func (s Source) LineText(offset int) string {
	start := offset
	for start > 0 && s.Contents[start-1] != '\n' {
		start--
	}
	end := offset
	for end < len(s.Contents) && s.Contents[end] != '\n' && s.Contents[end] != '\r' {
		end++
	}
	return s.Contents[start:end]
}

// AddError/AddWarning/AddInfo are convenience wrappers used throughout the
// lexers, parsers, validators and generators.
func AddError(log Log, src Source, offset int, length int, text string) {
	loc := src.LocFromOffset(offset)
	loc.Length = length
	log.AddMsg(Msg{Severity: Error, Loc: loc, Text: text, LineText: src.LineText(offset)})
}

func AddWarning(log Log, src Source, offset int, length int, text string) {
	loc := src.LocFromOffset(offset)
	loc.Length = length
	log.AddMsg(Msg{Severity: Warning, Loc: loc, Text: text, LineText: src.LineText(offset)})
}

func AddInfo(log Log, src Source, offset int, length int, text string) {
	loc := src.LocFromOffset(offset)
	loc.Length = length
	log.AddMsg(Msg{Severity: Info, Loc: loc, Text: text, LineText: src.LineText(offset)})
}
