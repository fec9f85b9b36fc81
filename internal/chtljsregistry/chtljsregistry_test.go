package chtljsregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yhlight/chtl/internal/logger"
)

func TestIsBuiltinSeededFive(t *testing.T) {
	reg := New(logger.NewDeferLog())
	for _, name := range []string{"listen", "delegate", "animate", "iNeverAway", "printMylove"} {
		assert.True(t, reg.IsBuiltin(name), name)
	}
	assert.False(t, reg.IsBuiltin("notAFunction"))
}

func TestAddBuiltinFunctionExtendsSet(t *testing.T) {
	reg := New(logger.NewDeferLog())
	reg.AddBuiltinFunction("customFn")
	assert.True(t, reg.IsBuiltin("customFn"))
}

func TestRegisterAndLookupVir(t *testing.T) {
	reg := New(logger.NewDeferLog())
	obj := reg.RegisterVir("box", []string{"click", "hover"})
	assert.Equal(t, []string{"click", "hover"}, obj.FunctionKeys)
	assert.NotEmpty(t, obj.GeneratedName)

	found, ok := reg.LookupVir("box")
	require.True(t, ok)
	assert.Equal(t, obj, found)

	_, ok = reg.LookupVir("nope")
	assert.False(t, ok)
}

func TestObservedSelectorsDeduplicates(t *testing.T) {
	reg := New(logger.NewDeferLog())
	reg.RecordSelector(".box")
	reg.RecordSelector(".box")
	reg.RecordSelector("#id")

	sels := reg.ObservedSelectors()
	assert.ElementsMatch(t, []string{".box", "#id"}, sels)
}

func TestStateFunctionNameRegisteredWins(t *testing.T) {
	reg := New(logger.NewDeferLog())
	reg.RegisterStateFunction("onClick", "Active", "__explicit_name")
	assert.Equal(t, "__explicit_name", reg.StateFunctionName("onClick", "Active"))
}

func TestStateFunctionNameSynthesizesAndMemoizes(t *testing.T) {
	reg := New(logger.NewDeferLog())
	first := reg.StateFunctionName("onClick", "Active")
	second := reg.StateFunctionName("onClick", "Active")
	assert.Equal(t, first, second, "the same (function, state) pair must resolve to the same synthesized name")
}

func TestDelegationForExtendsHandlerArrayAcrossCalls(t *testing.T) {
	reg := New(logger.NewDeferLog())
	d1 := reg.DelegationFor(".list")
	d1.AddEventType("click")

	d2 := reg.DelegationFor(".list")
	assert.True(t, d2.HasEventType("click"), "a second lookup against the same parent must see the earlier registration")

	d2.AddEventType("click")
	assert.Len(t, d2.EventTypes, 1, "re-adding the same event type must not duplicate it")

	d2.AddEventType("hover")
	assert.Len(t, d2.EventTypes, 2)
}

func TestGenerateUniqueNamePerPrefixCounter(t *testing.T) {
	reg := New(logger.NewDeferLog())
	a := reg.GenerateUniqueName("vir_box")
	b := reg.GenerateUniqueName("vir_box")
	c := reg.GenerateUniqueName("vir_other")

	assert.NotEqual(t, a, b)
	assert.Equal(t, "__chtljs_vir_box_0", a)
	assert.Equal(t, "__chtljs_vir_box_1", b)
	assert.Equal(t, "__chtljs_vir_other_0", c)
}
