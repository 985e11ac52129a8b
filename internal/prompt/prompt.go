package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// InputProvider supplies a line of operator input for a prompt.
// An empty string with a nil error means the operator gave nothing.
type InputProvider interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// Console prompts on out and reads one line from in. It blocks until a line
// (or EOF) arrives or ctx is cancelled.
type Console struct {
	out    io.Writer
	reader *bufio.Reader

	mu      sync.Mutex
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewConsole builds a Console over the given streams, usually os.Stdin and os.Stdout.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{out: out, reader: bufio.NewReader(in)}
}

// ReadLine writes prompt and returns the trimmed line. EOF counts as empty input.
// On cancellation it returns ctx.Err(); the abandoned read is handed to the next call.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintf(c.out, "%s ", prompt); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}

	ch := c.startRead()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return "", fmt.Errorf("read input: %w", res.err)
		}
		return strings.TrimSpace(res.line), nil
	}
}

// startRead returns the in-flight read, starting one if none is pending.
func (c *Console) startRead() chan lineResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		ch := make(chan lineResult, 1)
		c.pending = ch
		go func() {
			line, err := c.reader.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}
	return c.pending
}

// Static always answers with the same value.
type Static string

func (s Static) ReadLine(context.Context, string) (string, error) {
	return strings.TrimSpace(string(s)), nil
}

// Scripted answers prompts from a fixed queue and records what was asked.
// Once the queue is drained it answers with empty input.
type Scripted struct {
	mu      sync.Mutex
	answers []string
	prompts []string
}

// NewScripted queues answers in order.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

func (s *Scripted) ReadLine(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.answers) == 0 {
		return "", nil
	}
	next := s.answers[0]
	s.answers = s.answers[1:]
	return strings.TrimSpace(next), nil
}

// Prompts returns the prompts seen so far.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}
