package parser

import (
	"regexp"
	"strings"

	"github.com/AlphaMycelium/scriic/pkg/ast"
)

var (
	substitutionPattern = regexp.MustCompile(`^\[([A-Za-z_][A-Za-z0-9_]*)("?)\]`)
	parameterPattern    = regexp.MustCompile(`^<([A-Za-z_][A-Za-z0-9_]*)("?)>`)
)

// parseText splits statement text into literal runs and [name] / [name"]
// substitutions. A '[' that does not open a valid substitution is an error.
func (p *parser) parseText(line sourceLine, text string) ([]ast.TextPart, error) {
	offset := strings.Index(line.text, text)
	var parts []ast.TextPart
	rest := text
	for rest != "" {
		idx := strings.IndexByte(rest, '[')
		if idx < 0 {
			parts = append(parts, ast.NewText(rest))
			break
		}
		if idx > 0 {
			parts = append(parts, ast.NewText(rest[:idx]))
			rest = rest[idx:]
		}
		m := substitutionPattern.FindStringSubmatch(rest)
		if m == nil {
			err := p.errorf(line, "invalid substitution; expected [name] or [name\"]")
			err.Column += offset + len(text) - len(rest)
			return nil, err
		}
		parts = append(parts, ast.NewSubstitution(m[1], m[2] == `"`))
		rest = rest[len(m[0]):]
	}
	if len(parts) == 0 {
		return nil, p.errorf(line, "expected text")
	}
	return parts, nil
}

// parseTitle splits a HOWTO title into literal runs and <name> / <name">
// parameter declarations.
func (p *parser) parseTitle(line sourceLine, text string) ([]ast.TitlePart, error) {
	offset := strings.Index(line.text, text)
	var parts []ast.TitlePart
	rest := text
	for rest != "" {
		idx := strings.IndexByte(rest, '<')
		if idx < 0 {
			parts = append(parts, ast.NewText(rest))
			break
		}
		if idx > 0 {
			parts = append(parts, ast.NewText(rest[:idx]))
			rest = rest[idx:]
		}
		m := parameterPattern.FindStringSubmatch(rest)
		if m == nil {
			err := p.errorf(line, "invalid parameter; expected <name> or <name\">")
			err.Column += offset + len(text) - len(rest)
			return nil, err
		}
		parts = append(parts, ast.NewParameter(m[1], m[2] == `"`))
		rest = rest[len(m[0]):]
	}
	if len(parts) == 0 {
		return nil, p.errorf(line, "HOWTO requires a title")
	}
	return parts, nil
}
