package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/AlphaMycelium/scriic/pkg/interpreter"
	"github.com/AlphaMycelium/scriic/pkg/log"
	"github.com/AlphaMycelium/scriic/pkg/runtime"
)

type entryOptions struct {
	target string
	params map[string]string
}

func parseEntryArgs(args []string) (entryOptions, error) {
	opts := entryOptions{params: make(map[string]string)}
	var positional []string
	setParam := func(arg string) error {
		name, value, err := parseParamAssignment(arg)
		if err != nil {
			return err
		}
		if _, dup := opts.params[name]; dup {
			return fmt.Errorf("parameter %s given more than once", name)
		}
		opts.params[name] = value
		return nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case arg == "-p" || arg == "--param":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s expects name=value", arg)
			}
			if err := setParam(args[i+1]); err != nil {
				return opts, err
			}
			i++
		case strings.HasPrefix(arg, "--param="):
			if err := setParam(strings.TrimPrefix(arg, "--param=")); err != nil {
				return opts, err
			}
		case strings.HasPrefix(arg, "-") && arg != "-":
			return opts, fmt.Errorf("unknown flag %s", arg)
		default:
			positional = append(positional, arg)
		}
	}

	switch len(positional) {
	case 0:
		return opts, fmt.Errorf("missing script to run")
	case 1:
		opts.target = positional[0]
	default:
		return opts, fmt.Errorf("expected one script, got %d: %s", len(positional), strings.Join(positional, " "))
	}
	return opts, nil
}

func (c *cli) runEntry(args []string) int {
	opts, err := parseEntryArgs(args)
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		c.printUsage()
		return 1
	}

	interp, err := c.loadEntry(opts.target)
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return 1
	}

	required := interp.RequiredParameters()
	if len(missingParameters(required, opts.params)) > 0 {
		p := newPrompter(c.stdin, c.stderr)
		err := promptParameters(p, required, opts.params)
		p.Close()
		if err != nil {
			fmt.Fprintf(c.stderr, "%v\n", err)
			return 1
		}
	}

	root, err := interp.Run(opts.params)
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return 1
	}
	if title, err := root.Render(); err == nil {
		log.Verbose("%s", title)
	}
	if err := printInstructions(c.stdout, root); err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return 1
	}
	return 0
}

func (c *cli) runCheck(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(c.stderr, "check expects exactly one script")
		c.printUsage()
		return 1
	}
	interp, err := c.loadEntry(args[0])
	if err != nil {
		fmt.Fprintf(c.stderr, "%v\n", err)
		return 1
	}
	fmt.Fprintf(c.stdout, "%s: ok\n", interp.Origin())
	for _, name := range interp.RequiredParameters() {
		fmt.Fprintf(c.stdout, "parameter %s\n", name)
	}
	return 0
}

func (c *cli) loadEntry(target string) (*interpreter.Interpreter, error) {
	ref, manifest, err := locateEntry(target)
	if err != nil {
		return nil, err
	}
	loader, err := newLoader(manifest)
	if err != nil {
		return nil, err
	}
	return interpreter.Load(loader, ref)
}

// printInstructions numbers the leaves of root from 1 and prints one per line.
func printInstructions(w io.Writer, root *runtime.Instruction) error {
	root.NumberLeaves(1)
	for leaf := range root.Leaves() {
		index, err := leaf.DisplayIndex()
		if err != nil {
			return err
		}
		text, err := leaf.Render()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%d. %s\n", index, text); err != nil {
			return err
		}
	}
	return nil
}
