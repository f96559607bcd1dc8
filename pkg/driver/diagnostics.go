package driver

import (
	"fmt"
	"strings"
)

// DiagnosticLocation references a source position for diagnostics.
type DiagnosticLocation struct {
	Path   string
	Line   int
	Column int
}

// ParserDiagnostic is a structured syntax diagnostic.
type ParserDiagnostic struct {
	Message  string
	Location DiagnosticLocation
	Text     string
}

// SyntaxError reports a script that failed to parse, naming the script and
// the offending line.
type SyntaxError struct {
	Diagnostic ParserDiagnostic
}

func (e *SyntaxError) Error() string {
	return DescribeParserDiagnostic(e.Diagnostic)
}

// Path returns the location of the script that failed to parse.
func (e *SyntaxError) Path() string {
	return e.Diagnostic.Location.Path
}

// DescribeParserDiagnostic formats a diagnostic for CLI output.
func DescribeParserDiagnostic(diag ParserDiagnostic) string {
	message := strings.TrimSpace(diag.Message)
	var b strings.Builder
	if location := formatDiagnosticLocation(diag.Location); location != "" {
		b.WriteString(location)
		b.WriteString(": ")
	}
	b.WriteString("syntax error: ")
	b.WriteString(message)
	if diag.Text != "" {
		fmt.Fprintf(&b, " (near %q)", diag.Text)
	}
	return b.String()
}

func formatDiagnosticLocation(loc DiagnosticLocation) string {
	path := strings.TrimSpace(loc.Path)
	line := loc.Line
	column := loc.Column
	switch {
	case path != "" && line > 0 && column > 0:
		return fmt.Sprintf("%s:%d:%d", path, line, column)
	case path != "" && line > 0:
		return fmt.Sprintf("%s:%d", path, line)
	case path != "":
		return path
	case line > 0 && column > 0:
		return fmt.Sprintf("line %d, column %d", line, column)
	case line > 0:
		return fmt.Sprintf("line %d", line)
	default:
		return ""
	}
}
