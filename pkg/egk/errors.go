package egk

import (
	"errors"
	"fmt"

	"github.com/gregLibert/egk-reader/pkg/iso7816"
)

// ErrNoCard reports that no card was present when the session started.
// It is the only error worth retrying the whole session for.
var ErrNoCard = errors.New("egk: no card present")

// UnrecognizedCardError reports an ATR that is not on the allow-list.
type UnrecognizedCardError struct {
	ATR []byte
}

func (e *UnrecognizedCardError) Error() string {
	return fmt.Sprintf("egk: unrecognized card, ATR % X", e.ATR)
}

// ProtocolStatusError reports a command answered with an unexpected status word.
type ProtocolStatusError struct {
	Command  string
	Expected iso7816.StatusWord
	Actual   iso7816.StatusWord
}

func (e *ProtocolStatusError) Error() string {
	return fmt.Sprintf("egk: %s: got %s, expected %04X", e.Command, e.Actual.Verbose(), uint16(e.Expected))
}

// TransportError wraps a failure of the card connection itself.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("egk: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedDataError reports card data that violates the file layout.
type MalformedDataError struct {
	Field  string
	Value  string
	Reason string
}

func (e *MalformedDataError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("egk: malformed %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("egk: malformed %s %q: %s", e.Field, e.Value, e.Reason)
}

// DecompressionError reports a document that could not be inflated. It only
// invalidates that document.
type DecompressionError struct {
	File string
	Err  error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("egk: decompress %s: %v", e.File, e.Err)
}

func (e *DecompressionError) Unwrap() error { return e.Err }

// RangeError reports an offset or length outside what a command can address.
type RangeError struct {
	Field string
	Value int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("egk: %s %d out of range [0, %d]", e.Field, e.Value, e.Max)
}
