package chtllexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yhlight/chtl/internal/chtltoken"
	"github.com/Yhlight/chtl/internal/logger"
)

func kinds(tokens []chtltoken.Token) []chtltoken.Kind {
	out := make([]chtltoken.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeBracketKeywords(t *testing.T) {
	log := logger.NewDeferLog()
	source := logger.Source{Name: "test.chtl", Contents: "[Template] [Custom] [Origin] [Namespace] [Configuration]"}

	tokens := Tokenize(log, source)

	assert.Equal(t, []chtltoken.Kind{
		chtltoken.BracketTemplate,
		chtltoken.BracketCustom,
		chtltoken.BracketOrigin,
		chtltoken.BracketNamespace,
		chtltoken.BracketConfiguration,
		chtltoken.EOF,
	}, kinds(tokens))
}

func TestTokenizeIndexedAnchorFallsBackToLBracket(t *testing.T) {
	log := logger.NewDeferLog()
	source := logger.Source{Name: "test.chtl", Contents: "div[1]"}

	tokens := Tokenize(log, source)

	require.Len(t, tokens, 5)
	assert.Equal(t, chtltoken.Identifier, tokens[0].Kind)
	assert.Equal(t, chtltoken.LBracket, tokens[1].Kind)
	assert.Equal(t, chtltoken.NumberLit, tokens[2].Kind)
	assert.Equal(t, chtltoken.RBracket, tokens[3].Kind)
	assert.Equal(t, chtltoken.EOF, tokens[4].Kind)
}

func TestTokenizeAtSigil(t *testing.T) {
	log := logger.NewDeferLog()
	source := logger.Source{Name: "test.chtl", Contents: "@Style @Element @MyCustomThing"}

	tokens := Tokenize(log, source)

	require.Len(t, tokens, 4)
	for _, tok := range tokens[:3] {
		assert.Equal(t, chtltoken.AtSigil, tok.Kind)
	}
	assert.Equal(t, "@Style", tokens[0].Lexeme)
	assert.Equal(t, "@MyCustomThing", tokens[2].Lexeme)
}

func TestTokenizeDoubleDashCommentPreservedNotDropped(t *testing.T) {
	log := logger.NewDeferLog()
	source := logger.Source{Name: "test.chtl", Contents: "-- a preserved comment\ndiv"}

	tokens := Tokenize(log, source)

	require.Len(t, tokens, 3)
	assert.Equal(t, chtltoken.CommentDoubleDash, tokens[0].Kind)
	assert.Equal(t, "-- a preserved comment", tokens[0].Lexeme)
	assert.Equal(t, chtltoken.Identifier, tokens[1].Kind)
}

func TestTokenizeDashInIdentifierIsNotAComment(t *testing.T) {
	log := logger.NewDeferLog()
	source := logger.Source{Name: "test.chtl", Contents: "data-id"}

	tokens := Tokenize(log, source)

	require.Len(t, tokens, 2)
	assert.Equal(t, chtltoken.Identifier, tokens[0].Kind)
	assert.Equal(t, "data-id", tokens[0].Lexeme)
}

func TestTokenizeUnterminatedStringReportsError(t *testing.T) {
	log := logger.NewDeferLog()
	source := logger.Source{Name: "test.chtl", Contents: `"unterminated`}

	Tokenize(log, source)

	msgs := log.Done()
	require.Len(t, msgs, 1)
	assert.Equal(t, logger.Error, msgs[0].Severity)
}

func TestRawBraceCaptureRespectsNestedBracesAndStrings(t *testing.T) {
	source := `{ if (x) { return "}"; } }rest`
	inner, closeOffset, ok := RawBraceCapture(source, 0)

	require.True(t, ok)
	assert.Equal(t, ` if (x) { return "}"; } `, inner)
	assert.Equal(t, source[:closeOffset+1], `{ if (x) { return "}"; } }`)
}

func TestRawBraceCaptureUnterminatedFails(t *testing.T) {
	_, _, ok := RawBraceCapture("{ no closing brace", 0)
	assert.False(t, ok)
}
