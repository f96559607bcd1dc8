package driver

import (
	"errors"
	"fmt"

	"github.com/AlphaMycelium/scriic/pkg/ast"
	"github.com/AlphaMycelium/scriic/pkg/log"
	"github.com/AlphaMycelium/scriic/pkg/parser"
)

// Script is a parsed script together with where it came from.
type Script struct {
	Origin  Origin
	Program *ast.Program
}

// Loader resolves scripts and parses them.
type Loader struct {
	resolver Resolver
}

func NewLoader(resolver Resolver) *Loader {
	return &Loader{resolver: resolver}
}

// Load resolves imp relative to the calling script and parses it.
func (l *Loader) Load(imp ast.Import, from Origin) (*Script, error) {
	if l == nil || l.resolver == nil {
		return nil, fmt.Errorf("loader: no resolver configured")
	}
	log.Debug(log.RESOLVE, "resolving %s from %q", imp, from)
	src, err := l.resolver.Resolve(imp, from)
	if err != nil {
		return nil, err
	}
	log.Debug(log.RESOLVE, "resolved %s to %s", imp, src.Origin)
	return l.Parse(src)
}

// LoadEntry loads the top-level script named by ref, a bare path relative to
// the working directory or a module:path reference.
func (l *Loader) LoadEntry(ref string) (*Script, error) {
	imp, err := ast.ParseImport(ref)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return l.Load(imp, Origin{})
}

// Parse turns already-resolved source into a Script.
func (l *Loader) Parse(src *Source) (*Script, error) {
	prog, err := parser.Parse(src.Text)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			return nil, &SyntaxError{Diagnostic: ParserDiagnostic{
				Message: perr.Message,
				Location: DiagnosticLocation{
					Path:   src.Origin.String(),
					Line:   perr.Line,
					Column: perr.Column,
				},
				Text: perr.Text,
			}}
		}
		return nil, fmt.Errorf("loader: parse %s: %w", src.Origin, err)
	}
	log.Debug(log.PARSE, "parsed %s: %d top-level statements", src.Origin, len(prog.Statements))
	return &Script{Origin: src.Origin, Program: prog}, nil
}
