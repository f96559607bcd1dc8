package runtime

import (
	"fmt"
	"iter"
)

// UnsetDisplayIndexError is returned when an instruction is referenced before
// it, or its first descendant leaf, has been numbered.
type UnsetDisplayIndexError struct{}

func (*UnsetDisplayIndexError) Error() string {
	return "display index not set"
}

// Instruction is a node in the generated instruction tree. Leaves are what a
// reader follows; inner nodes group the output of sub-scripts.
type Instruction struct {
	text     Value
	children []*Instruction

	displayIndex int
	indexed      bool

	returned    Value
	hasReturned bool
}

func NewInstruction(text Value) *Instruction {
	return &Instruction{text: text}
}

func (in *Instruction) Text() Value {
	return in.text
}

// Render returns the instruction's text with references resolved.
func (in *Instruction) Render() (string, error) {
	return in.text.Render()
}

func (in *Instruction) Children() []*Instruction {
	return in.children
}

func (in *Instruction) IsLeaf() bool {
	return len(in.children) == 0
}

// AddChild appends an existing instruction, such as a sub-script root.
func (in *Instruction) AddChild(child *Instruction) *Instruction {
	in.children = append(in.children, child)
	return child
}

// Emit creates a child instruction with the given text and returns it.
func (in *Instruction) Emit(text Value) *Instruction {
	return in.AddChild(NewInstruction(text))
}

func (in *Instruction) SetDisplayIndex(index int) {
	in.displayIndex = index
	in.indexed = true
}

// DisplayIndex returns the instruction's own index, otherwise that of its
// first child, recursively.
func (in *Instruction) DisplayIndex() (int, error) {
	for node := in; ; node = node.children[0] {
		if node.indexed {
			return node.displayIndex, nil
		}
		if node.IsLeaf() {
			return 0, &UnsetDisplayIndexError{}
		}
	}
}

// Reference renders as "instruction N".
func (in *Instruction) Reference() (string, error) {
	idx, err := in.DisplayIndex()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("instruction %d", idx), nil
}

// SetReturned records the value a script returned.
func (in *Instruction) SetReturned(value Value) {
	in.returned = value
	in.hasReturned = true
}

func (in *Instruction) Returned() (Value, bool) {
	return in.returned, in.hasReturned
}

// Leaves yields every leaf under the instruction in depth-first order. An
// instruction without children is its own only leaf.
func (in *Instruction) Leaves() iter.Seq[*Instruction] {
	return func(yield func(*Instruction) bool) {
		in.walkLeaves(yield)
	}
}

func (in *Instruction) walkLeaves(yield func(*Instruction) bool) bool {
	if in.IsLeaf() {
		return yield(in)
	}
	for _, child := range in.children {
		if !child.walkLeaves(yield) {
			return false
		}
	}
	return true
}

// NumberLeaves assigns consecutive display indices to the leaves starting at
// first and returns the next unused index.
func (in *Instruction) NumberLeaves(first int) int {
	next := first
	for leaf := range in.Leaves() {
		leaf.SetDisplayIndex(next)
		next++
	}
	return next
}
