package cli

import (
	"context"

	"github.com/vortideck/bannerctl/internal/banner"
	"github.com/vortideck/bannerctl/internal/repl"
)

// Connection is an open banner session.
type Connection interface {
	repl.Sender
	Close() error
}

// SessionFactory opens the connection and operator input for a session.
type SessionFactory interface {
	Dial(ctx context.Context, url string) (Connection, error)
	NewReader() repl.LineReader
}

// defaultFactory dials a real WebSocket and reads from stdin.
type defaultFactory struct{}

func (f defaultFactory) Dial(ctx context.Context, url string) (Connection, error) {
	client, err := banner.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (f defaultFactory) NewReader() repl.LineReader {
	return repl.NewStdinReader()
}

// sessionFactory is the package-level factory, replaceable for testing.
var sessionFactory SessionFactory = defaultFactory{}

// SetSessionFactory sets the session factory (for testing).
func SetSessionFactory(f SessionFactory) {
	sessionFactory = f
}

// ResetSessionFactory resets to the default factory.
func ResetSessionFactory() {
	sessionFactory = defaultFactory{}
}
