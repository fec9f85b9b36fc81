package chtljstoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "->", Arrow.String())
	assert.Equal(t, "vir", KwVir.String())
	assert.Equal(t, "unknown token", Kind(255).String())
}

func TestBuiltinFunctionsCoversTheFixedFive(t *testing.T) {
	expected := map[string]Kind{
		"listen":      FnListen,
		"delegate":    FnDelegate,
		"animate":     FnAnimate,
		"iNeverAway":  FnINeverAway,
		"printMylove": FnPrintMyLove,
	}
	assert.Equal(t, expected, BuiltinFunctions)
}
