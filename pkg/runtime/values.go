package runtime

import "strings"

// Element is one piece of a Value.
type Element interface {
	render() (string, error)
	isElement()
}

// Literal is known text.
type Literal string

func (l Literal) render() (string, error) { return string(l), nil }
func (Literal) isElement()                {}

// UnknownRef stands for the not-yet-known result of an instruction. It does
// not own the instruction.
type UnknownRef struct {
	Instruction *Instruction
}

func (u UnknownRef) render() (string, error) {
	ref, err := u.Instruction.Reference()
	if err != nil {
		return "", err
	}
	return "the result of " + ref, nil
}
func (UnknownRef) isElement() {}

// StepRef points the reader at an instruction, as in "go to instruction 4".
// Unlike UnknownRef it does not make a value unknown.
type StepRef struct {
	Instruction *Instruction
}

func (s StepRef) render() (string, error) { return s.Instruction.Reference() }
func (StepRef) isElement()                {}

// Value is a flat sequence of elements concatenated when rendered.
type Value struct {
	elements []Element
}

func NewValue(elements ...Element) Value {
	return Value{elements: append([]Element(nil), elements...)}
}

func LiteralValue(text string) Value {
	return Value{elements: []Element{Literal(text)}}
}

func UnknownValue(in *Instruction) Value {
	return Value{elements: []Element{UnknownRef{Instruction: in}}}
}

// Elements returns a copy of the value's elements.
func (v Value) Elements() []Element {
	return append([]Element(nil), v.elements...)
}

func (v Value) Len() int { return len(v.elements) }

// Append adds elements to the end of the value.
func (v *Value) Append(elements ...Element) {
	v.elements = append(v.elements, elements...)
}

// Extend splices the elements of other onto the end of the value.
func (v *Value) Extend(other Value) {
	v.elements = append(v.elements, other.elements...)
}

// IsUnknown reports whether any element is an UnknownRef.
func (v Value) IsUnknown() bool {
	for _, el := range v.elements {
		if _, ok := el.(UnknownRef); ok {
			return true
		}
	}
	return false
}

// Literal returns the concatenated text when every element is a Literal.
func (v Value) Literal() (string, bool) {
	var b strings.Builder
	for _, el := range v.elements {
		lit, ok := el.(Literal)
		if !ok {
			return "", false
		}
		b.WriteString(string(lit))
	}
	return b.String(), true
}

// Render concatenates the value. Referenced instructions must already have a
// display index, directly or through their first leaf.
func (v Value) Render() (string, error) {
	var b strings.Builder
	for _, el := range v.elements {
		text, err := el.render()
		if err != nil {
			return "", err
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
