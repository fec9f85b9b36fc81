package jspassthrough

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBalanced(t *testing.T) {
	cases := []string{
		`console.log("hi")`,
		`function f(a, b) { return [a, b]; }`,
		`const re = /{not a brace}/;`,
		`// comment with { unmatched brace`,
		`/* block { comment */`,
		"`template ${a + b} literal`",
	}
	for _, c := range cases {
		ok, msg, _ := Check(c)
		assert.True(t, ok, "expected %q to be balanced, got message %q", c, msg)
	}
}

func TestCheckUnbalanced(t *testing.T) {
	ok, _, offset := Check(`function f() { return a;`)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, offset, 0)
}

func TestCheckMismatchedBracket(t *testing.T) {
	ok, msg, _ := Check(`(a, b]`)
	assert.False(t, ok)
	assert.Contains(t, msg, "mismatched")
}

func TestCheckUnterminatedString(t *testing.T) {
	ok, msg, _ := Check(`"unterminated`)
	assert.False(t, ok)
	assert.Contains(t, msg, "unterminated string")
}

func TestScanStatementStopsAtTopLevelSemicolon(t *testing.T) {
	text := `let a = 1; let b = 2;`
	end := ScanStatement(text, 0)
	assert.Equal(t, "let a = 1;", text[:end])
}

func TestScanStatementStopsAtBalancedGroup(t *testing.T) {
	text := `{ let a = 1; } more`
	end := ScanStatement(text, 0)
	assert.Equal(t, "{ let a = 1; }", text[:end])
}
