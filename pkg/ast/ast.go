package ast

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type NodeType string

const (
	NodeProgram      NodeType = "Program"
	NodeDo           NodeType = "Do"
	NodeSub          NodeType = "Sub"
	NodeRepeat       NodeType = "Repeat"
	NodeLetters      NodeType = "Letters"
	NodeReturn       NodeType = "Return"
	NodeText         NodeType = "Text"
	NodeParameter    NodeType = "Parameter"
	NodeSubstitution NodeType = "Substitution"
)

// Node is implemented by every syntax tree element.
type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// LineSpan covers a whole source line.
func LineSpan(line, width int) Span {
	return Span{
		Start: Position{Line: line, Column: 1},
		End:   Position{Line: line, Column: width + 1},
	}
}

// Marker interfaces.

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// TitlePart is a literal run or a parameter declaration inside a HOWTO title.
type TitlePart interface {
	Node
	titlePart()
}

type titleMarker struct{}

func (titleMarker) titlePart() {}

// TextPart is a literal run or a variable substitution inside statement text.
type TextPart interface {
	Node
	textPart()
}

type textMarker struct{}

func (textMarker) textPart() {}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether name is a valid variable or module name.
func IsIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Program is a parsed scriic script.
type Program struct {
	nodeImpl

	Title      []TitlePart `json:"title"`
	Statements []Statement `json:"statements"`
}

func NewProgram(title []TitlePart, statements []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Title: title, Statements: statements}
}

// RequiredParameters lists the distinct parameter names declared in the title, sorted.
func (p *Program) RequiredParameters() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, part := range p.Title {
		param, ok := part.(*Parameter)
		if !ok {
			continue
		}
		if _, dup := seen[param.Name]; dup {
			continue
		}
		seen[param.Name] = struct{}{}
		names = append(names, param.Name)
	}
	sort.Strings(names)
	return names
}

// Text is a literal run shared by titles and statement text.
type Text struct {
	nodeImpl
	titleMarker
	textMarker

	Value string `json:"value"`
}

func NewText(value string) *Text {
	return &Text{nodeImpl: newNodeImpl(NodeText), Value: value}
}

// Parameter declares a title parameter: <name> or <name">.
type Parameter struct {
	nodeImpl
	titleMarker

	Name   string `json:"name"`
	Quoted bool   `json:"quoted"`
}

func NewParameter(name string, quoted bool) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Name: name, Quoted: quoted}
}

// Substitution references a variable inside statement text: [name] or [name"].
type Substitution struct {
	nodeImpl
	textMarker

	Name   string `json:"name"`
	Quoted bool   `json:"quoted"`
}

func NewSubstitution(name string, quoted bool) *Substitution {
	return &Substitution{nodeImpl: newNodeImpl(NodeSubstitution), Name: name, Quoted: quoted}
}

// Import identifies a sub-script, either a bare path or module:path.
type Import struct {
	Module string `json:"module,omitempty"`
	Path   string `json:"path"`
}

// ParseImport splits a module-qualified reference. Anything without a valid
// module prefix is treated as a bare path.
func ParseImport(ref string) (Import, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Import{}, fmt.Errorf("empty import path")
	}
	if strings.ContainsAny(ref, " \t") {
		return Import{}, fmt.Errorf("import path %q must not contain whitespace", ref)
	}
	if module, rest, ok := strings.Cut(ref, ":"); ok && IsIdentifier(module) {
		if rest == "" {
			return Import{}, fmt.Errorf("import %q is missing a path after the module name", ref)
		}
		return Import{Module: module, Path: rest}, nil
	}
	return Import{Path: ref}, nil
}

func (i Import) String() string {
	if i.Module == "" {
		return i.Path
	}
	return i.Module + ":" + i.Path
}

// Do records an instruction: DO text, optionally assigned.
type Do struct {
	nodeImpl
	statementMarker

	Text     []TextPart `json:"text"`
	AssignTo string     `json:"assignTo,omitempty"`
}

func NewDo(text []TextPart, assignTo string) *Do {
	return &Do{nodeImpl: newNodeImpl(NodeDo), Text: text, AssignTo: assignTo}
}

// SubParameter binds a callee parameter to caller text.
type SubParameter struct {
	Name  string     `json:"name"`
	Value []TextPart `json:"value"`
	Span  Span       `json:"span"`
}

// Sub invokes another script.
type Sub struct {
	nodeImpl
	statementMarker

	Target     Import         `json:"target"`
	Parameters []SubParameter `json:"parameters"`
	AssignTo   string         `json:"assignTo,omitempty"`
}

func NewSub(target Import, params []SubParameter, assignTo string) *Sub {
	return &Sub{nodeImpl: newNodeImpl(NodeSub), Target: target, Parameters: params, AssignTo: assignTo}
}

// RepeatCount is either a literal count or a variable name.
type RepeatCount struct {
	Literal  int    `json:"literal"`
	Variable string `json:"variable,omitempty"`
}

func (c RepeatCount) String() string {
	if c.Variable != "" {
		return c.Variable
	}
	return fmt.Sprintf("%d", c.Literal)
}

// Repeat runs its body a fixed or variable number of times.
type Repeat struct {
	nodeImpl
	statementMarker

	Times RepeatCount `json:"times"`
	Body  []Statement `json:"body"`
}

func NewRepeat(times RepeatCount, body []Statement) *Repeat {
	return &Repeat{nodeImpl: newNodeImpl(NodeRepeat), Times: times, Body: body}
}

// Letters iterates over the characters of its text.
type Letters struct {
	nodeImpl
	statementMarker

	Text     []TextPart  `json:"text"`
	AssignTo string      `json:"assignTo,omitempty"`
	Body     []Statement `json:"body"`
}

func NewLetters(text []TextPart, assignTo string, body []Statement) *Letters {
	return &Letters{nodeImpl: newNodeImpl(NodeLetters), Text: text, AssignTo: assignTo, Body: body}
}

// Return sets the script's result value.
type Return struct {
	nodeImpl
	statementMarker

	Value []TextPart `json:"value"`
}

func NewReturn(value []TextPart) *Return {
	return &Return{nodeImpl: newNodeImpl(NodeReturn), Value: value}
}
