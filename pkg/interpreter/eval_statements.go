package interpreter

import (
	"strconv"
	"strings"

	"github.com/AlphaMycelium/scriic/pkg/ast"
	"github.com/AlphaMycelium/scriic/pkg/log"
	"github.com/AlphaMycelium/scriic/pkg/runtime"
)

func (i *Interpreter) evaluateBlock(stmts []ast.Statement, active *runtime.Instruction, fr *frame) error {
	for _, stmt := range stmts {
		if err := i.evaluateStatement(stmt, active, fr); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evaluateStatement(node ast.Statement, active *runtime.Instruction, fr *frame) error {
	log.Debug(log.RUN, "%s:%d: %s", i.script.Origin, node.Span().Start.Line, node.NodeType())
	switch n := node.(type) {
	case *ast.Do:
		return i.evaluateDo(n, active, fr)
	case *ast.Sub:
		return i.evaluateSub(n, active, fr)
	case *ast.Repeat:
		return i.evaluateRepeat(n, active, fr)
	case *ast.Letters:
		return i.evaluateLetters(n, active, fr)
	case *ast.Return:
		return i.evaluateReturn(n, fr)
	default:
		return i.errorf(node, "unsupported statement type: %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateDo(n *ast.Do, active *runtime.Instruction, fr *frame) error {
	text, err := i.substitute(n, n.Text, fr.env)
	if err != nil {
		return err
	}
	child := active.Emit(text)
	if n.AssignTo != "" {
		fr.env.Define(n.AssignTo, runtime.UnknownValue(child))
	}
	return nil
}

func (i *Interpreter) evaluateReturn(n *ast.Return, fr *frame) error {
	value, err := i.substitute(n, n.Value, fr.env)
	if err != nil {
		return err
	}
	// The last RETURN executed wins; execution carries on.
	fr.returned = value
	fr.hasReturned = true
	return nil
}

func (i *Interpreter) evaluateRepeat(n *ast.Repeat, active *runtime.Instruction, fr *frame) error {
	count, source, err := i.repeatCount(n, fr.env)
	if err != nil {
		return err
	}
	if source == nil {
		for range count {
			if err := i.evaluateBlock(n.Body, active, fr); err != nil {
				return err
			}
		}
		return nil
	}

	start := len(active.Children())
	if err := i.evaluateBlock(n.Body, active, fr); err != nil {
		return err
	}
	children := active.Children()
	if len(children) == start {
		return nil
	}
	active.Emit(runtime.NewValue(
		runtime.Literal("Go to "),
		runtime.StepRef{Instruction: children[start]},
		runtime.Literal(" and repeat the number of times from "),
		runtime.StepRef{Instruction: source},
	))
	return nil
}

// repeatCount resolves a REPEAT count. A nil source means the count is known;
// otherwise source is the instruction whose result holds the count.
func (i *Interpreter) repeatCount(n *ast.Repeat, env *runtime.Environment) (int, *runtime.Instruction, error) {
	if n.Times.Variable == "" {
		return n.Times.Literal, nil, nil
	}
	value, err := env.Get(n.Times.Variable)
	if err != nil {
		return 0, nil, i.errorf(n, "%s", err.Error())
	}
	if value.Len() != 1 {
		return 0, nil, i.errorf(n, "REPEAT count %s must be a single value, got %d parts", n.Times.Variable, value.Len())
	}
	var text string
	switch el := value.Elements()[0].(type) {
	case runtime.UnknownRef:
		return 0, el.Instruction, nil
	case runtime.Literal:
		text = string(el)
	default:
		return 0, nil, i.errorf(n, "cannot repeat %s times: it refers to an instruction", n.Times.Variable)
	}
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, nil, i.errorf(n, "cannot repeat %q times: %s is not a whole number", text, n.Times.Variable)
	}
	if count < 0 {
		return 0, nil, i.errorf(n, "cannot repeat a negative number of times (%s is %d)", n.Times.Variable, count)
	}
	return count, nil, nil
}

func (i *Interpreter) evaluateLetters(n *ast.Letters, active *runtime.Instruction, fr *frame) error {
	text, err := i.substitute(n, n.Text, fr.env)
	if err != nil {
		return err
	}
	if literal, ok := text.Literal(); ok {
		for _, char := range literal {
			if n.AssignTo != "" {
				fr.env.Define(n.AssignTo, runtime.LiteralValue(string(char)))
			}
			if err := i.evaluateBlock(n.Body, active, fr); err != nil {
				return err
			}
		}
		return nil
	}

	var anchorText runtime.Value
	anchorText.Append(runtime.Literal("Get the first letter of "))
	anchorText.Extend(text)
	anchorText.Append(runtime.Literal(", or the next letter if you are returning from a future instruction"))
	anchor := active.Emit(anchorText)
	if n.AssignTo != "" {
		fr.env.Define(n.AssignTo, runtime.UnknownValue(anchor))
	}
	if err := i.evaluateBlock(n.Body, active, fr); err != nil {
		return err
	}

	var tail runtime.Value
	tail.Append(runtime.Literal("If you haven't yet reached the last letter of "))
	tail.Extend(text)
	tail.Append(runtime.Literal(", go to "), runtime.StepRef{Instruction: anchor})
	active.Emit(tail)
	return nil
}
