package banner

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Command names understood by the banner WebSocket server.
const (
	NameShowBanner = "show_banner"
	NameHideBanner = "hide_banner"
	NameSetBanner  = "set_banner"
)

// Command is one of the three banner commands.
// The set of implementations is closed: ShowBanner, HideBanner and SetBanner.
type Command interface {
	// Name returns the wire name of the command.
	Name() string

	isCommand()
}

// ShowBanner shows the banner in the current scene.
type ShowBanner struct{}

// HideBanner hides the banner from all scenes.
type HideBanner struct{}

// SetBanner sets the banner content to the image or video at Path.
type SetBanner struct {
	Path string
}

func (ShowBanner) Name() string { return NameShowBanner }
func (HideBanner) Name() string { return NameHideBanner }
func (SetBanner) Name() string  { return NameSetBanner }

func (ShowBanner) isCommand() {}
func (HideBanner) isCommand() {}
func (SetBanner) isCommand()  {}

// message is the flat wire shape shared by every command.
type message struct {
	Command  string  `json:"command"`
	FilePath *string `json:"file_path,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c ShowBanner) MarshalJSON() ([]byte, error) {
	return json.Marshal(message{Command: c.Name()})
}

// MarshalJSON implements json.Marshaler.
func (c HideBanner) MarshalJSON() ([]byte, error) {
	return json.Marshal(message{Command: c.Name()})
}

// MarshalJSON implements json.Marshaler.
// The path is sent exactly as given; an empty path still produces a file_path key.
func (c SetBanner) MarshalJSON() ([]byte, error) {
	path := c.Path
	return json.Marshal(message{Command: c.Name(), FilePath: &path})
}

// ErrUnknownCommand is returned by Decode for a command name outside the protocol.
var ErrUnknownCommand = errors.New("unknown banner command")

// Decode parses a wire payload back into its Command variant.
// Returns (command, nil) for a known command with exactly the keys it needs.
// Returns (nil, error) for malformed JSON, unknown names or extraneous keys.
func Decode(data []byte) (Command, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse banner message: %w", err)
	}

	var name string
	if v, ok := raw["command"]; !ok {
		return nil, errors.New("banner message has no command")
	} else if err := json.Unmarshal(v, &name); err != nil {
		return nil, fmt.Errorf("banner command is not a string: %w", err)
	}

	switch name {
	case NameShowBanner, NameHideBanner:
		if len(raw) != 1 {
			return nil, fmt.Errorf("%s takes no arguments", name)
		}
		if name == NameShowBanner {
			return ShowBanner{}, nil
		}
		return HideBanner{}, nil

	case NameSetBanner:
		v, ok := raw["file_path"]
		if !ok {
			return nil, errors.New("set_banner requires file_path")
		}
		if len(raw) != 2 {
			return nil, errors.New("set_banner takes only file_path")
		}
		var path string
		if err := json.Unmarshal(v, &path); err != nil {
			return nil, fmt.Errorf("file_path is not a string: %w", err)
		}
		return SetBanner{Path: path}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}
