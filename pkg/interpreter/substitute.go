package interpreter

import (
	"github.com/AlphaMycelium/scriic/pkg/ast"
	"github.com/AlphaMycelium/scriic/pkg/runtime"
)

const quoteMark = runtime.Literal(`"`)

// substitute expands statement text against env.
func (i *Interpreter) substitute(node ast.Node, parts []ast.TextPart, env *runtime.Environment) (runtime.Value, error) {
	var out runtime.Value
	for _, part := range parts {
		switch p := part.(type) {
		case *ast.Text:
			out.Append(runtime.Literal(p.Value))
		case *ast.Substitution:
			if err := i.splice(node, &out, p.Name, p.Quoted, env); err != nil {
				return runtime.Value{}, err
			}
		}
	}
	return out, nil
}

// substituteTitle expands a HOWTO title, whose parameters substitute like
// variables.
func (i *Interpreter) substituteTitle(parts []ast.TitlePart, env *runtime.Environment) (runtime.Value, error) {
	var out runtime.Value
	for _, part := range parts {
		switch p := part.(type) {
		case *ast.Text:
			out.Append(runtime.Literal(p.Value))
		case *ast.Parameter:
			if err := i.splice(nil, &out, p.Name, p.Quoted, env); err != nil {
				return runtime.Value{}, err
			}
		}
	}
	return out, nil
}

// splice appends a variable's elements. Quoting only applies to known values;
// an unknown value renders as "the result of ..." and is never quoted.
func (i *Interpreter) splice(node ast.Node, out *runtime.Value, name string, quoted bool, env *runtime.Environment) error {
	value, err := env.Get(name)
	if err != nil {
		return i.errorf(node, "%s", err.Error())
	}
	if quoted && !value.IsUnknown() {
		out.Append(quoteMark)
		out.Extend(value)
		out.Append(quoteMark)
		return nil
	}
	out.Extend(value)
	return nil
}
