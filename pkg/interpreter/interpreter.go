// Package interpreter runs parsed scriic scripts and produces the instruction
// tree a reader follows. Values observed by the reader at run time are kept
// symbolic, so loops over them become "go to instruction N" steps.
package interpreter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AlphaMycelium/scriic/pkg/ast"
	"github.com/AlphaMycelium/scriic/pkg/driver"
	"github.com/AlphaMycelium/scriic/pkg/log"
	"github.com/AlphaMycelium/scriic/pkg/runtime"
)

// MaxSubDepth bounds how deeply SUB calls may nest, so a script that calls
// itself fails instead of exhausting the stack.
const MaxSubDepth = 200

// RuntimeError reports a problem found while running a script.
type RuntimeError struct {
	Path    string
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Interpreter executes one parsed script. Sub-scripts are loaded through the
// loader and run by nested interpreters.
type Interpreter struct {
	script *driver.Script
	loader *driver.Loader
}

func New(script *driver.Script, loader *driver.Loader) *Interpreter {
	return &Interpreter{script: script, loader: loader}
}

// Load resolves ref as an entry script and wraps it in an Interpreter.
func Load(loader *driver.Loader, ref string) (*Interpreter, error) {
	script, err := loader.LoadEntry(ref)
	if err != nil {
		return nil, err
	}
	return New(script, loader), nil
}

func (i *Interpreter) Origin() driver.Origin {
	return i.script.Origin
}

// RequiredParameters lists the title parameter names, sorted.
func (i *Interpreter) RequiredParameters() []string {
	return i.script.Program.RequiredParameters()
}

// Run executes the script with literal parameter values and returns the root
// instruction, whose text is the substituted title.
func (i *Interpreter) Run(params map[string]string) (*runtime.Instruction, error) {
	values := make(map[string]runtime.Value, len(params))
	for name, value := range params {
		values[name] = runtime.LiteralValue(value)
	}
	return i.run(values, 0)
}

// frame is the mutable state of one script run.
type frame struct {
	env         *runtime.Environment
	depth       int
	returned    runtime.Value
	hasReturned bool
}

func (i *Interpreter) run(params map[string]runtime.Value, depth int) (*runtime.Instruction, error) {
	if missing := i.missingParameters(params); len(missing) > 0 {
		return nil, i.errorf(nil, "missing parameters: %s", strings.Join(missing, ", "))
	}
	log.Debug(log.RUN, "running %s (depth %d)", i.script.Origin, depth)

	fr := &frame{env: runtime.NewEnvironment(params), depth: depth}
	title, err := i.substituteTitle(i.script.Program.Title, fr.env)
	if err != nil {
		return nil, err
	}
	root := runtime.NewInstruction(title)
	if err := i.evaluateBlock(i.script.Program.Statements, root, fr); err != nil {
		return nil, err
	}
	if fr.hasReturned {
		root.SetReturned(fr.returned)
	}
	log.Debug(log.RUN, "finished %s with variables %s", i.script.Origin, strings.Join(fr.env.Keys(), ", "))
	return root, nil
}

func (i *Interpreter) missingParameters(params map[string]runtime.Value) []string {
	var missing []string
	for _, name := range i.RequiredParameters() {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func (i *Interpreter) errorf(node ast.Node, format string, args ...any) *RuntimeError {
	err := &RuntimeError{
		Path:    i.script.Origin.String(),
		Message: fmt.Sprintf(format, args...),
	}
	if node != nil {
		err.Line = node.Span().Start.Line
	}
	return err
}
