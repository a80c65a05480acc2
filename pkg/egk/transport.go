package egk

import (
	"context"

	"github.com/gregLibert/egk-reader/pkg/iso7816"
)

// Connection is an open link to one card.
//
// Transmit sends a raw C-APDU and returns the raw R-APDU, status word included.
// Errors returned by Transmit are treated as fatal to the session.
type Connection interface {
	iso7816.Transmitter
	ATR() ([]byte, error)
	Disconnect() error
}

// Opener connects to a card. Open must return an error matching ErrNoCard when the
// reader is empty.
type Opener interface {
	Open(ctx context.Context) (Connection, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context) (Connection, error)

func (f OpenerFunc) Open(ctx context.Context) (Connection, error) { return f(ctx) }
