package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueIsUnknown(t *testing.T) {
	source := NewInstruction(LiteralValue("Pick a number"))

	assert.False(t, LiteralValue("known").IsUnknown())
	assert.False(t, NewValue().IsUnknown())
	assert.True(t, UnknownValue(source).IsUnknown())
	assert.True(t, NewValue(Literal("a "), UnknownRef{Instruction: source}).IsUnknown())
	assert.False(t, NewValue(Literal("go to "), StepRef{Instruction: source}).IsUnknown())
}

func TestValueLiteral(t *testing.T) {
	text, ok := NewValue(Literal(`"`), Literal("X"), Literal(`"`)).Literal()
	require.True(t, ok)
	assert.Equal(t, `"X"`, text)

	source := NewInstruction(LiteralValue("source"))
	_, ok = NewValue(Literal("a"), UnknownRef{Instruction: source}).Literal()
	assert.False(t, ok)
}

func TestValueRender(t *testing.T) {
	source := NewInstruction(LiteralValue("Pick a number"))
	source.SetDisplayIndex(1)
	target := NewInstruction(LiteralValue("Knock"))
	target.SetDisplayIndex(2)

	value := NewValue(Literal("Add 1 to "), UnknownRef{Instruction: source})
	text, err := value.Render()
	require.NoError(t, err)
	assert.Equal(t, "Add 1 to the result of instruction 1", text)

	step := NewValue(Literal("Go to "), StepRef{Instruction: target})
	text, err = step.Render()
	require.NoError(t, err)
	assert.Equal(t, "Go to instruction 2", text)
}

func TestValueRenderUnsetIndex(t *testing.T) {
	source := NewInstruction(LiteralValue("not numbered"))
	_, err := UnknownValue(source).Render()
	var unset *UnsetDisplayIndexError
	assert.True(t, errors.As(err, &unset))
}

func TestValueAppendExtendDoNotAlias(t *testing.T) {
	base := LiteralValue("a")
	var combined Value
	combined.Extend(base)
	combined.Append(Literal("b"))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, combined.Len())

	elems := combined.Elements()
	elems[0] = Literal("changed")
	text, _ := combined.Literal()
	assert.Equal(t, "ab", text)
}
