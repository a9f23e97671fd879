package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

var (
	// ErrInterrupted indicates the operator interrupted a blocking wait.
	ErrInterrupted = errors.New("interrupted by user")

	// ErrInputClosed indicates operator input reached end of file.
	ErrInputClosed = errors.New("input closed")
)

// LineReader reads one line of operator input after showing a prompt.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	Close() error
}

// IsStdinTTY returns true if stdin is a terminal.
func IsStdinTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// NewStdinReader returns a liner-backed reader for terminals and a
// buffered reader for pipes and redirected input.
func NewStdinReader() LineReader {
	if IsStdinTTY() {
		return NewTerminalReader()
	}
	return NewBufferedReader(os.Stdin, os.Stdout)
}

// TerminalReader reads lines with line editing and history.
type TerminalReader struct {
	liner  *liner.State
	prompt func(string) (string, error)
}

// NewTerminalReader puts the terminal under liner's control.
// Close must be called to restore the terminal mode.
func NewTerminalReader() *TerminalReader {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return &TerminalReader{liner: l, prompt: l.Prompt}
}

// ReadLine prompts and blocks until a line is entered. Ctrl-C aborts.
// Cancelling ctx (SIGTERM, for one) returns ErrInterrupted at once; the
// pending prompt stays blocked on stdin until the process exits.
func (r *TerminalReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	resCh := make(chan lineResult, 1)
	go func() {
		line, err := r.prompt(prompt)
		resCh <- lineResult{text: line, err: err}
	}()

	var res lineResult
	select {
	case res = <-resCh:
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}

	if res.err != nil {
		if errors.Is(res.err, liner.ErrPromptAborted) {
			return "", ErrInterrupted
		}
		if errors.Is(res.err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", res.err
	}

	if r.liner != nil && strings.TrimSpace(res.text) != "" {
		r.liner.AppendHistory(res.text)
	}
	return res.text, nil
}

// Close restores the terminal.
func (r *TerminalReader) Close() error {
	if r.liner == nil {
		return nil
	}
	return r.liner.Close()
}

type lineResult struct {
	text string
	err  error
}

// BufferedReader reads lines from a plain io.Reader.
// A blocked ReadLine returns as soon as its context is cancelled.
type BufferedReader struct {
	in  io.Reader
	out io.Writer

	lines     chan lineResult
	done      chan struct{}
	start     sync.Once
	closeOnce sync.Once
}

// NewBufferedReader creates a reader over in that writes prompts to out.
func NewBufferedReader(in io.Reader, out io.Writer) *BufferedReader {
	return &BufferedReader{
		in:    in,
		out:   out,
		lines: make(chan lineResult),
		done:  make(chan struct{}),
	}
}

// ReadLine writes prompt and waits for the next line.
func (r *BufferedReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	select {
	case <-r.done:
		return "", ErrInputClosed
	default:
	}
	r.start.Do(func() { go r.scan() })

	fmt.Fprint(r.out, prompt)

	select {
	case res, ok := <-r.lines:
		if !ok {
			return "", ErrInputClosed
		}
		return res.text, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	case <-r.done:
		return "", ErrInputClosed
	}
}

// scan feeds lines to ReadLine until EOF or Close.
func (r *BufferedReader) scan() {
	defer close(r.lines)

	sc := bufio.NewScanner(r.in)
	for sc.Scan() {
		select {
		case r.lines <- lineResult{text: sc.Text()}:
		case <-r.done:
			return
		}
	}
	if err := sc.Err(); err != nil {
		select {
		case r.lines <- lineResult{err: fmt.Errorf("failed to read input: %w", err)}:
		case <-r.done:
		}
	}
}

// Close stops delivering lines. It does not close the underlying reader.
func (r *BufferedReader) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	return nil
}
