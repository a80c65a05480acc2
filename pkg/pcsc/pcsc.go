// Package pcsc connects egk sessions to PC/SC card readers.
package pcsc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ebfe/scard"
	"github.com/hashicorp/go-multierror"

	"github.com/gregLibert/egk-reader/pkg/egk"
)

// ErrNoReader is returned when no reader is attached or none matches.
var ErrNoReader = errors.New("pcsc: no matching reader")

// Opener opens a shared connection to the card in one reader and holds a PC/SC
// transaction until Disconnect.
type Opener struct {
	// Reader selects the reader by index ("0", "1"), exact name or case-insensitive
	// substring. Empty means the first reader.
	Reader string
	// Wait is how long Open waits for a card to be inserted; 0 does not wait.
	Wait time.Duration
}

// Open implements egk.Opener.
func (o *Opener) Open(ctx context.Context) (egk.Connection, error) {
	sctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("pcsc: establish context: %w", err)
	}

	conn, err := o.open(ctx, sctx)
	if err != nil {
		_ = sctx.Release()
		return nil, err
	}
	return conn, nil
}

func (o *Opener) open(ctx context.Context, sctx *scard.Context) (*Conn, error) {
	readers, err := sctx.ListReaders()
	if err != nil && !errors.Is(err, scard.ErrNoReadersAvailable) {
		return nil, fmt.Errorf("pcsc: list readers: %w", err)
	}
	reader, err := SelectReader(readers, o.Reader)
	if err != nil {
		return nil, err
	}

	if o.Wait > 0 {
		if err := waitForCard(ctx, sctx, reader, o.Wait); err != nil {
			return nil, err
		}
	}

	// T=0 or T=1 only, "any" makes some drivers fail with SCARD_E_INVALID_PARAMETER
	card, err := sctx.Connect(reader, scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		return nil, connectError(reader, err)
	}
	if err := card.BeginTransaction(); err != nil {
		_ = card.Disconnect(scard.LeaveCard)
		return nil, connectError(reader, err)
	}

	return &Conn{ctx: sctx, card: card, reader: reader}, nil
}

// connectError maps an empty reader to egk.ErrNoCard and keeps the PC/SC cause.
func connectError(reader string, err error) error {
	if errors.Is(err, scard.ErrNoSmartcard) || errors.Is(err, scard.ErrRemovedCard) {
		return fmt.Errorf("pcsc: %s: %w: %w", reader, egk.ErrNoCard, err)
	}
	return fmt.Errorf("pcsc: connect %s: %w", reader, err)
}

// SelectReader picks a reader from the list; see Opener.Reader.
func SelectReader(readers []string, want string) (string, error) {
	if len(readers) == 0 {
		return "", fmt.Errorf("%w: no reader attached", ErrNoReader)
	}
	if want == "" {
		return readers[0], nil
	}
	if i, err := strconv.Atoi(want); err == nil {
		if i < 0 || i >= len(readers) {
			return "", fmt.Errorf("%w: index %d, %d readers attached", ErrNoReader, i, len(readers))
		}
		return readers[i], nil
	}
	for _, r := range readers {
		if r == want {
			return r, nil
		}
	}
	for _, r := range readers {
		if strings.Contains(strings.ToLower(r), strings.ToLower(want)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNoReader, want)
}

// ListReaders returns the names of the attached readers.
func ListReaders() ([]string, error) {
	sctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("pcsc: establish context: %w", err)
	}
	defer sctx.Release()

	readers, err := sctx.ListReaders()
	if errors.Is(err, scard.ErrNoReadersAvailable) {
		return nil, nil
	}
	return readers, err
}

// waitForCard blocks until a card is present in reader, the timeout expires
// (egk.ErrNoCard) or ctx is done.
func waitForCard(ctx context.Context, sctx *scard.Context, reader string, timeout time.Duration) error {
	stop := context.AfterFunc(ctx, func() { _ = sctx.Cancel() })
	defer stop()

	deadline := time.Now().Add(timeout)
	states := []scard.ReaderState{{Reader: reader, CurrentState: scard.StateUnaware}}
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("pcsc: %s: %w", reader, egk.ErrNoCard)
		}

		err := sctx.GetStatusChange(states, remaining)
		switch {
		case err == nil:
		case errors.Is(err, scard.ErrTimeout):
			return fmt.Errorf("pcsc: %s: %w", reader, egk.ErrNoCard)
		case errors.Is(err, scard.ErrCancelled) && ctx.Err() != nil:
			return ctx.Err()
		default:
			return fmt.Errorf("pcsc: wait for card: %w", err)
		}

		ev := states[0].EventState
		if ev&scard.StatePresent != 0 && ev&scard.StateMute == 0 {
			return nil
		}
		states[0].CurrentState = ev &^ scard.StateChanged
	}
}

// Conn is a card connection; it implements egk.Connection.
type Conn struct {
	ctx    *scard.Context
	card   *scard.Card
	reader string
}

// Reader returns the name of the reader holding the card.
func (c *Conn) Reader() string {
	return c.reader
}

func (c *Conn) Transmit(cmd []byte) ([]byte, error) {
	rsp, err := c.card.Transmit(cmd)
	if err != nil {
		return nil, fmt.Errorf("pcsc: %s: %w", c.reader, err)
	}
	return rsp, nil
}

func (c *Conn) ATR() ([]byte, error) {
	st, err := c.card.Status()
	if err != nil {
		return nil, fmt.Errorf("pcsc: %s: status: %w", c.reader, err)
	}
	return st.Atr, nil
}

// Disconnect ends the transaction, leaves the card powered and releases the context.
func (c *Conn) Disconnect() error {
	var merr *multierror.Error
	if err := c.card.EndTransaction(scard.LeaveCard); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("end transaction: %w", err))
	}
	if err := c.card.Disconnect(scard.LeaveCard); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("disconnect: %w", err))
	}
	if err := c.ctx.Release(); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("release context: %w", err))
	}
	return merr.ErrorOrNil()
}
