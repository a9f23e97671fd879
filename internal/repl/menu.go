// Package repl drives the interactive banner command menu.
package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/vortideck/bannerctl/internal/banner"
)

var (
	// ErrInvalidChoice indicates menu input other than "1" through "4".
	ErrInvalidChoice = errors.New("invalid choice")

	// ErrInvalidPath indicates the operator supplied a path that does not exist.
	ErrInvalidPath = errors.New("file does not exist")
)

// Sender sends one banner command over an open connection.
type Sender interface {
	Send(ctx context.Context, cmd banner.Command) ([]byte, error)
}

// Choice is a validated menu selection.
type Choice int

const (
	ChoiceShow Choice = iota + 1
	ChoiceHide
	ChoiceSet
	ChoiceExit
)

// ParseChoice accepts exactly "1", "2", "3" or "4".
func ParseChoice(s string) (Choice, error) {
	switch s {
	case "1":
		return ChoiceShow, nil
	case "2":
		return ChoiceHide, nil
	case "3":
		return ChoiceSet, nil
	case "4":
		return ChoiceExit, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
}

const menuText = `
Available commands:
1. show_banner - Show the banner
2. hide_banner - Hide the banner
3. set_banner - Set banner content (requires file path)
4. exit - Exit the test
`

const (
	choicePrompt = "Enter your choice (1-4): "
	pathPrompt   = "Enter the full path to image/video file: "
	separator    = "------------------------------"
)

// Menu runs the read-evaluate-send loop against a single connection.
type Menu struct {
	sender Sender
	input  LineReader
	out    io.Writer
	exists func(path string) bool

	state State

	// OnTransition, if set, is called on every state change.
	OnTransition func(from, to State)

	// OnSent, if set, is called with the exact payload written for cmd.
	OnSent func(cmd banner.Command, payload []byte)
}

// NewMenu creates a menu that reads from input, sends with sender
// and writes operator output to out.
func NewMenu(sender Sender, input LineReader, out io.Writer) *Menu {
	return &Menu{
		sender: sender,
		input:  input,
		out:    out,
		exists: pathExists,
		state:  StateConnecting,
	}
}

// SetPathChecker replaces the filesystem existence check.
func (m *Menu) SetPathChecker(exists func(path string) bool) {
	m.exists = exists
}

// State returns the current session state.
func (m *Menu) State() State {
	return m.state
}

// pathExists reports whether path names an existing filesystem entry.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (m *Menu) transition(to State) {
	from := m.state
	m.state = to
	if m.OnTransition != nil && from != to {
		m.OnTransition(from, to)
	}
}

// Run loops until the operator exits or a fatal error occurs.
// Returns nil on exit. Fatal errors wrap banner.ErrTransport,
// ErrInterrupted or ErrInputClosed.
func (m *Menu) Run(ctx context.Context) error {
	defer m.transition(StateClosed)
	m.transition(StateMenuWait)

	for {
		fmt.Fprint(m.out, menuText)
		fmt.Fprintln(m.out)

		line, err := m.input.ReadLine(ctx, choicePrompt)
		if err != nil {
			return err
		}

		choice, err := ParseChoice(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(m.out, "Invalid choice. Please enter 1-4.")
			fmt.Fprintln(m.out, separator)
			continue
		}

		var cmd banner.Command
		switch choice {
		case ChoiceShow:
			cmd = banner.ShowBanner{}
		case ChoiceHide:
			cmd = banner.HideBanner{}
		case ChoiceSet:
			m.transition(StateAwaitingPathInput)
			set, err := m.readSetBanner(ctx)
			if errors.Is(err, ErrInvalidPath) {
				PrintError(m.out, "File does not exist: "+set.Path)
				m.transition(StateMenuWait)
				continue
			}
			if err != nil {
				return err
			}
			cmd = set
		case ChoiceExit:
			fmt.Fprintln(m.out, "Exiting...")
			return nil
		}

		if err := m.send(ctx, cmd); err != nil {
			return err
		}
		m.transition(StateMenuWait)
		fmt.Fprintln(m.out, separator)
	}
}

// readSetBanner prompts for a file path and builds a set_banner command.
// The path is trimmed of surrounding whitespace and otherwise sent as typed.
// On ErrInvalidPath the returned command still carries the rejected path.
func (m *Menu) readSetBanner(ctx context.Context) (banner.SetBanner, error) {
	line, err := m.input.ReadLine(ctx, pathPrompt)
	if err != nil {
		return banner.SetBanner{}, err
	}

	set := banner.SetBanner{Path: strings.TrimSpace(line)}
	if !m.exists(set.Path) {
		return set, fmt.Errorf("%w: %s", ErrInvalidPath, set.Path)
	}
	return set, nil
}

// send echoes the outgoing payload and writes it to the connection.
func (m *Menu) send(ctx context.Context, cmd banner.Command) error {
	m.transition(StateSending)

	pretty, err := json.MarshalIndent(cmd, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", cmd.Name(), err)
	}
	fmt.Fprintf(m.out, "Sending: %s\n", pretty)

	payload, err := m.sender.Send(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		return err
	}
	if m.OnSent != nil {
		m.OnSent(cmd, payload)
	}

	color.New(color.FgGreen).Fprintln(m.out, "Command sent successfully!")
	return nil
}

// PrintError writes an "Error:" line to w, with a red prefix when colour is enabled.
func PrintError(w io.Writer, msg string) {
	color.New(color.FgRed).Fprint(w, "Error:")
	fmt.Fprintf(w, " %s\n", msg)
}
