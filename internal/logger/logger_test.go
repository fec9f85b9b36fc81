package logger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeferLogCollectsAndSortsByLocation(t *testing.T) {
	log := NewDeferLog()
	src := Source{Name: "b.chtl", Contents: "x"}

	AddError(log, src, 0, 1, "second in file order but b.chtl sorts after a.chtl")
	AddWarning(log, Source{Name: "a.chtl", Contents: "y"}, 0, 1, "a.chtl warning")

	msgs := log.Done()
	require.Len(t, msgs, 2)
	assert.Equal(t, "a.chtl", msgs[0].Loc.File)
	assert.Equal(t, "b.chtl", msgs[1].Loc.File)
}

func TestHasErrorsOnlySetByErrorSeverity(t *testing.T) {
	log := NewDeferLog()
	assert.False(t, log.HasErrors())

	AddWarning(log, Source{Name: "t.chtl"}, 0, 1, "just a warning")
	assert.False(t, log.HasErrors())

	AddError(log, Source{Name: "t.chtl"}, 0, 1, "now an error")
	assert.True(t, log.HasErrors())
}

func TestAddMsgIsConcurrencySafe(t *testing.T) {
	log := NewDeferLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			AddInfo(log, Source{Name: "t.chtl"}, 0, 1, "concurrent")
		}()
	}
	wg.Wait()
	assert.Len(t, log.Done(), 50)
}

func TestLocFromOffsetTracksLineAndColumn(t *testing.T) {
	src := Source{Name: "t.chtl", Contents: "ab\ncd\nef"}
	loc := src.LocFromOffset(4) // 'd' on the second line
	assert.Equal(t, 2, loc.Line)
	assert.Equal(t, 2, loc.Column)
}

func TestLocFromOffsetHandlesCRLF(t *testing.T) {
	src := Source{Name: "t.chtl", Contents: "ab\r\ncd"}
	loc := src.LocFromOffset(4) // 'c' after the CRLF
	assert.Equal(t, 2, loc.Line)
	assert.Equal(t, 1, loc.Column)
}

func TestLineTextReturnsFullContainingLine(t *testing.T) {
	src := Source{Name: "t.chtl", Contents: "first\nsecond\nthird"}
	assert.Equal(t, "second", src.LineText(7))
}

func TestMsgStringFormatsErrorAndNonError(t *testing.T) {
	errMsg := Msg{Severity: Error, Loc: Loc{File: "t.chtl", Line: 3, Column: 5}, Text: "bad"}
	assert.Equal(t, "[t.chtl:3:5] bad", errMsg.String())

	warnMsg := Msg{Severity: Warning, Loc: Loc{File: "t.chtl", Line: 1, Column: 1}, Text: "careful"}
	assert.Contains(t, warnMsg.String(), "warning")
}

func TestEachCompileGetsADistinctCompileID(t *testing.T) {
	a := NewDeferLog()
	b := NewDeferLog()
	assert.NotEqual(t, a.CompileID, b.CompileID)
}
