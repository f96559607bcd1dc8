package interpreter

import (
	"github.com/AlphaMycelium/scriic/pkg/ast"
	"github.com/AlphaMycelium/scriic/pkg/log"
	"github.com/AlphaMycelium/scriic/pkg/runtime"
)

// evaluateSub runs another script and grafts its root instruction under
// active. Parameter text is substituted in the caller's environment, so
// unknown values pass through to the callee unchanged.
func (i *Interpreter) evaluateSub(n *ast.Sub, active *runtime.Instruction, fr *frame) error {
	if fr.depth+1 > MaxSubDepth {
		return i.errorf(n, "SUB %s nests more than %d scripts deep", n.Target, MaxSubDepth)
	}
	if i.loader == nil {
		return i.errorf(n, "cannot load %s: no loader configured", n.Target)
	}
	script, err := i.loader.Load(n.Target, i.script.Origin)
	if err != nil {
		return err
	}

	// Parameters substitute against the caller's variables.
	params := make(map[string]runtime.Value, len(n.Parameters))
	for _, param := range n.Parameters {
		value, err := i.substitute(n, param.Value, fr.env)
		if err != nil {
			return err
		}
		params[param.Name] = value
	}
	callee := New(script, i.loader)
	log.Debug(log.RUN, "%s: SUB %s with %d parameters", i.script.Origin, script.Origin, len(params))
	root, err := callee.run(params, fr.depth+1)
	if err != nil {
		return err
	}
	active.AddChild(root)

	if n.AssignTo == "" {
		return nil
	}
	value, ok := root.Returned()
	if !ok {
		return i.errorf(n, "%s did not return a value to assign to %s", script.Origin, n.AssignTo)
	}
	fr.env.Define(n.AssignTo, value)
	return nil
}
