package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/AlphaMycelium/scriic/pkg/ast"
)

// ParseError describes a syntax problem on a single source line.
type ParseError struct {
	Message string
	Line    int
	Column  int
	Text    string
}

func (e *ParseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s (near %q)", e.Line, e.Message, e.Text)
}

var (
	assignPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.*)$`)
	countPattern  = regexp.MustCompile(`^[0-9]+$`)
)

type sourceLine struct {
	number int
	indent int
	text   string
	width  int
}

type parser struct {
	lines []sourceLine
	pos   int
	last  int
}

// Parse builds a Program from scriic source. Blank lines and surrounding
// whitespace are insignificant; every statement occupies its own line.
func Parse(source []byte) (*ast.Program, error) {
	p := &parser{}
	raw := strings.Split(string(source), "\n")
	for idx, line := range raw {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		p.lines = append(p.lines, sourceLine{
			number: idx + 1,
			indent: len(line) - len(trimmed),
			text:   trimmed,
			width:  len(line),
		})
	}
	p.last = len(raw)
	return p.parseProgram()
}

func (p *parser) eof() bool {
	return p.pos >= len(p.lines)
}

func (p *parser) peek() sourceLine {
	return p.lines[p.pos]
}

func (p *parser) next() sourceLine {
	line := p.lines[p.pos]
	p.pos++
	return line
}

func (p *parser) errorf(line sourceLine, format string, args ...any) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    line.number,
		Column:  line.indent + 1,
		Text:    line.text,
	}
}

func (p *parser) errorAtEOF(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Line: p.last}
}

func splitKeyword(text string) (string, string) {
	idx := strings.IndexAny(text, " \t")
	if idx < 0 {
		return text, ""
	}
	return text[:idx], strings.TrimSpace(text[idx+1:])
}

func (p *parser) parseProgram() (*ast.Program, error) {
	if p.eof() {
		return nil, p.errorAtEOF("script must start with HOWTO")
	}
	head := p.next()
	keyword, rest := splitKeyword(head.text)
	if keyword != "HOWTO" {
		return nil, p.errorf(head, "script must start with HOWTO")
	}
	title, err := p.parseTitle(head, rest)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock(nil)
	if err != nil {
		return nil, err
	}
	prog := ast.NewProgram(title, body)
	ast.SetSpan(prog, ast.Span{
		Start: ast.Position{Line: head.number, Column: head.indent + 1},
		End:   ast.Position{Line: p.last, Column: 1},
	})
	return prog, nil
}

// parseBlock reads statements until the END closing opener, or until EOF when
// opener is nil.
func (p *parser) parseBlock(opener *sourceLine) ([]ast.Statement, error) {
	var stmts []ast.Statement
	for {
		if p.eof() {
			if opener != nil {
				return nil, p.errorf(*opener, "%s block is missing END", blockKeyword(opener.text))
			}
			return stmts, nil
		}
		line := p.peek()
		keyword, _ := splitKeyword(line.text)
		switch keyword {
		case "END":
			if line.text != "END" {
				return nil, p.errorf(line, "END takes no arguments")
			}
			if opener == nil {
				return nil, p.errorf(line, "unexpected END outside of a block")
			}
			p.next()
			if len(stmts) == 0 {
				return nil, p.errorf(*opener, "%s block is empty", blockKeyword(opener.text))
			}
			return stmts, nil
		case "GO", "PRM", "WITH":
			return nil, p.errorf(line, "unexpected %s outside of a SUB", keyword)
		case "HOWTO":
			return nil, p.errorf(line, "HOWTO may only appear on the first line")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

// blockKeyword extracts REPEAT or LETTERS from a block opener, which may carry
// an assignment prefix.
func blockKeyword(text string) string {
	keyword, _ := splitKeyword(text)
	if keyword == "REPEAT" || keyword == "LETTERS" {
		return keyword
	}
	if m := assignPattern.FindStringSubmatch(text); m != nil {
		inner, _ := splitKeyword(m[2])
		return inner
	}
	return keyword
}

func (p *parser) parseStatement() (ast.Statement, error) {
	line := p.next()
	text := line.text
	assignTo := ""
	if keyword, _ := splitKeyword(text); !isKeyword(keyword) {
		if m := assignPattern.FindStringSubmatch(text); m != nil {
			assignTo = m[1]
			text = m[2]
		}
	}
	keyword, rest := splitKeyword(text)

	var (
		stmt ast.Statement
		err  error
	)
	switch keyword {
	case "DO":
		stmt, err = p.parseDo(line, rest, assignTo)
	case "SUB":
		stmt, err = p.parseSub(line, rest, assignTo)
	case "REPEAT":
		if assignTo != "" {
			return nil, p.errorf(line, "REPEAT cannot be assigned to a variable")
		}
		stmt, err = p.parseRepeat(line, rest)
	case "LETTERS":
		stmt, err = p.parseLetters(line, rest, assignTo)
	case "RETURN":
		if assignTo != "" {
			return nil, p.errorf(line, "RETURN cannot be assigned to a variable")
		}
		stmt, err = p.parseReturn(line, rest)
	default:
		return nil, p.errorf(line, "unknown command %q", keyword)
	}
	if err != nil {
		return nil, err
	}
	ast.SetSpan(stmt, ast.LineSpan(line.number, line.width))
	return stmt, nil
}

func isKeyword(word string) bool {
	switch word {
	case "HOWTO", "DO", "SUB", "PRM", "WITH", "GO", "REPEAT", "LETTERS", "END", "RETURN":
		return true
	}
	return false
}

func (p *parser) parseDo(line sourceLine, rest, assignTo string) (*ast.Do, error) {
	if rest == "" {
		return nil, p.errorf(line, "DO requires instruction text")
	}
	parts, err := p.parseText(line, rest)
	if err != nil {
		return nil, err
	}
	return ast.NewDo(parts, assignTo), nil
}

func (p *parser) parseSub(line sourceLine, rest, assignTo string) (*ast.Sub, error) {
	fields := strings.Fields(rest)
	switch {
	case len(fields) == 1:
	case len(fields) == 3 && fields[1] == "INTO":
		if assignTo != "" {
			return nil, p.errorf(line, "SUB cannot use both an assignment and INTO")
		}
		if !ast.IsIdentifier(fields[2]) {
			return nil, p.errorf(line, "invalid variable name %q after INTO", fields[2])
		}
		assignTo = fields[2]
	case len(fields) == 0:
		return nil, p.errorf(line, "SUB requires a script path")
	default:
		return nil, p.errorf(line, "malformed SUB; expected SUB <path> [INTO <name>]")
	}
	target, err := ast.ParseImport(fields[0])
	if err != nil {
		return nil, p.errorf(line, "%s", err.Error())
	}

	var params []ast.SubParameter
	if !p.eof() {
		if keyword, _ := splitKeyword(p.peek().text); keyword == "PRM" || keyword == "WITH" {
			params, err = p.parseSubParameters(line)
			if err != nil {
				return nil, err
			}
		}
	}
	return ast.NewSub(target, params, assignTo), nil
}

func (p *parser) parseSubParameters(sub sourceLine) ([]ast.SubParameter, error) {
	var params []ast.SubParameter
	seen := make(map[string]struct{})
	for {
		if p.eof() {
			return nil, p.errorf(sub, "SUB parameters must be terminated by GO")
		}
		line := p.peek()
		keyword, rest := splitKeyword(line.text)
		var (
			name string
			text string
		)
		switch keyword {
		case "GO":
			if line.text != "GO" {
				return nil, p.errorf(line, "GO takes no arguments")
			}
			p.next()
			return params, nil
		case "PRM":
			m := assignPattern.FindStringSubmatch(rest)
			if m == nil || strings.TrimSpace(m[2]) == "" {
				return nil, p.errorf(line, "malformed PRM; expected PRM <name> = <text>")
			}
			name, text = m[1], strings.TrimSpace(m[2])
		case "WITH":
			idx := strings.LastIndex(rest, " AS ")
			if idx < 0 {
				return nil, p.errorf(line, "malformed WITH; expected WITH <text> AS <name>")
			}
			name = strings.TrimSpace(rest[idx+len(" AS "):])
			text = strings.TrimSpace(rest[:idx])
			if !ast.IsIdentifier(name) || text == "" {
				return nil, p.errorf(line, "malformed WITH; expected WITH <text> AS <name>")
			}
		default:
			return nil, p.errorf(line, "SUB parameters must be terminated by GO")
		}
		p.next()
		if _, dup := seen[name]; dup {
			return nil, p.errorf(line, "parameter %q given more than once", name)
		}
		seen[name] = struct{}{}
		parts, err := p.parseText(line, text)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.SubParameter{
			Name:  name,
			Value: parts,
			Span:  ast.LineSpan(line.number, line.width),
		})
	}
}

func (p *parser) parseRepeat(line sourceLine, rest string) (*ast.Repeat, error) {
	var times ast.RepeatCount
	switch {
	case countPattern.MatchString(rest):
		n, err := strconv.Atoi(rest)
		if err != nil {
			return nil, p.errorf(line, "repeat count %q is out of range", rest)
		}
		times.Literal = n
	case ast.IsIdentifier(rest):
		times.Variable = rest
	case rest == "":
		return nil, p.errorf(line, "REPEAT requires a count or variable name")
	default:
		return nil, p.errorf(line, "REPEAT count must be a number or variable name, got %q", rest)
	}
	body, err := p.parseBlock(&line)
	if err != nil {
		return nil, err
	}
	return ast.NewRepeat(times, body), nil
}

func (p *parser) parseLetters(line sourceLine, rest, assignTo string) (*ast.Letters, error) {
	if rest == "" {
		return nil, p.errorf(line, "LETTERS requires text")
	}
	parts, err := p.parseText(line, rest)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock(&line)
	if err != nil {
		return nil, err
	}
	return ast.NewLetters(parts, assignTo, body), nil
}

func (p *parser) parseReturn(line sourceLine, rest string) (*ast.Return, error) {
	if rest == "" {
		return nil, p.errorf(line, "RETURN requires a value")
	}
	parts, err := p.parseText(line, rest)
	if err != nil {
		return nil, err
	}
	return ast.NewReturn(parts), nil
}
