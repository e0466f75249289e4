// Package prompt asks the operator questions on the terminal.
//
// Components that need a human decision take a Prompter instead of reading
// stdin themselves, so tests can hand them a Scripted prompter.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompter asks a question and blocks until an answer is available.
// Answers are returned with surrounding whitespace trimmed.
type Prompter interface {
	Ask(question string) (string, error)
}

// Func adapts a plain function to the Prompter interface.
type Func func(question string) (string, error)

// Ask calls f.
func (f Func) Ask(question string) (string, error) {
	return f(question)
}

// Terminal reads answers line by line from an input stream.
type Terminal struct {
	mu  sync.Mutex
	in  *bufio.Scanner
	out io.Writer
}

// NewTerminal creates a terminal prompter. Questions are written to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Ask writes the question and reads one line.
// A closed input stream is an error; an empty line is a valid answer.
func (t *Terminal) Ask(question string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprint(t.out, question); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	if !strings.HasSuffix(question, "\n") && !strings.HasSuffix(question, " ") {
		fmt.Fprint(t.out, " ")
	}

	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}
		return "", fmt.Errorf("read answer: %w", io.EOF)
	}
	return strings.TrimSpace(t.in.Text()), nil
}

// Scripted answers questions from a fixed list and records what was asked.
// Running out of answers is an error.
type Scripted struct {
	mu      sync.Mutex
	answers []string
	Asked   []string
}

// NewScripted returns a prompter that replies with answers in order.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

// Ask records the question and pops the next answer.
func (s *Scripted) Ask(question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Asked = append(s.Asked, question)
	if len(s.answers) == 0 {
		return "", fmt.Errorf("unexpected prompt: %q", question)
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return strings.TrimSpace(answer), nil
}

// Remaining reports how many answers have not been used.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}
