package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlphaMycelium/scriic/pkg/ast"
	"github.com/peterh/liner"
	"golang.org/x/term"
)

type prompter interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// newPrompter uses line editing when in is a terminal and plain line reads
// otherwise, so parameters can be piped in.
func newPrompter(in io.Reader, out io.Writer) prompter {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		ln := liner.NewLiner()
		ln.SetCtrlCAborts(true)
		return &linerPrompter{state: ln}
	}
	return &readerPrompter{in: bufio.NewReader(in), out: out}
}

type linerPrompter struct {
	state *liner.State
}

func (p *linerPrompter) Prompt(prompt string) (string, error) {
	return p.state.Prompt(prompt)
}

func (p *linerPrompter) Close() error {
	return p.state.Close()
}

type readerPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *readerPrompter) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *readerPrompter) Close() error { return nil }

// promptParameters asks for every required parameter missing from params, in
// the order given.
func promptParameters(p prompter, required []string, params map[string]string) error {
	for _, name := range required {
		if _, ok := params[name]; ok {
			continue
		}
		value, err := p.Prompt(fmt.Sprintf("Parameter %s: ", name))
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return fmt.Errorf("no value given for parameter %s", name)
			}
			return err
		}
		params[name] = value
	}
	return nil
}

func missingParameters(required []string, params map[string]string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// parseParamAssignment splits a -p argument of the form name=value.
func parseParamAssignment(arg string) (string, string, error) {
	name, value, ok := strings.Cut(arg, "=")
	if !ok {
		return "", "", fmt.Errorf("parameter %q must look like name=value", arg)
	}
	name = strings.TrimSpace(name)
	if !ast.IsIdentifier(name) {
		return "", "", fmt.Errorf("parameter name %q is not a valid name", name)
	}
	return name, value, nil
}
