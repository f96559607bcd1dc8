package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type scriptedPrompter struct {
	answers []string
	asked   []string
}

func (p *scriptedPrompter) Prompt(prompt string) (string, error) {
	p.asked = append(p.asked, prompt)
	if len(p.answers) == 0 {
		return "", errors.New("out of answers")
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (p *scriptedPrompter) Close() error { return nil }

func TestPromptParameters(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"red", ""}}
	params := map[string]string{"size": "large"}
	if err := promptParameters(p, []string{"colour", "shape", "size"}, params); err != nil {
		t.Fatalf("promptParameters error: %v", err)
	}
	if got := strings.Join(p.asked, "|"); got != "Parameter colour: |Parameter shape: " {
		t.Fatalf("asked = %q", got)
	}
	if params["colour"] != "red" || params["shape"] != "" || params["size"] != "large" {
		t.Fatalf("params = %#v", params)
	}

	err := promptParameters(&scriptedPrompter{}, []string{"colour"}, map[string]string{})
	if err == nil || err.Error() != "out of answers" {
		t.Fatalf("expected prompter error to pass through, got %v", err)
	}
}

func TestReaderPrompter(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("first line\nlast"), &out)
	if _, ok := p.(*readerPrompter); !ok {
		t.Fatalf("non-terminal input should use readerPrompter, got %T", p)
	}
	for _, want := range []string{"first line", "last"} {
		got, err := p.Prompt("> ")
		if err != nil {
			t.Fatalf("Prompt error: %v", err)
		}
		if got != want {
			t.Fatalf("Prompt() = %q, want %q", got, want)
		}
	}
	if _, err := p.Prompt("> "); err == nil {
		t.Fatalf("expected an error at end of input")
	}
	if out.String() != "> > > " {
		t.Fatalf("prompts written = %q", out.String())
	}
}

func TestMissingParameters(t *testing.T) {
	got := missingParameters([]string{"a", "b", "c"}, map[string]string{"b": "x"})
	if strings.Join(got, ",") != "a,c" {
		t.Fatalf("missingParameters = %v", got)
	}
}
