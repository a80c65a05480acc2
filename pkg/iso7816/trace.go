package iso7816

import (
	"fmt"
	"strings"
)

// TRANSACTION:
// One Command APDU sent by the terminal followed by one Response APDU from the card.
//
// TRACE:
// The chronological list of Transactions made for one logical command. A single SELECT
// may need several physical exchanges (61XX -> GET RESPONSE, 6CXX -> re-send); the Trace
// keeps all of them and IsSuccess() judges the final one.

// Transaction represents a completed Command-Response pair.
type Transaction struct {
	Command  *CommandAPDU
	Response *ResponseAPDU
}

// IsSuccess checks if the transaction ended with a successful status.
// It returns false if the response is missing.
func (t *Transaction) IsSuccess() bool {
	if t.Response == nil {
		return false
	}
	return t.Response.Status.IsSuccess()
}

// Trace is a sequence of transactions (Command-Response pairs).
type Trace []Transaction

// Last returns the final transaction of the trace, or nil for an empty trace.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess checks if the FINAL transaction in the trace was successful.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	if last == nil {
		return false
	}
	return last.IsSuccess()
}

// Data returns the response body of the final transaction.
func (t Trace) Data() []byte {
	last := t.Last()
	if last == nil || last.Response == nil {
		return nil
	}
	return last.Response.Data
}

// Status returns the status word of the final transaction.
// An empty trace reports 0x0000, which never matches a success status.
func (t Trace) Status() StatusWord {
	last := t.Last()
	if last == nil || last.Response == nil {
		return 0
	}
	return last.Response.Status
}

// Describe renders one line per transaction, e.g.
//
//	INS_SELECT P1=04 P2=0C Lc=7 Le=0 -> [9000] SW_NO_ERROR (0 bytes)
func (t Trace) Describe() string {
	lines := make([]string, 0, len(t))
	for _, tx := range t {
		cmd := tx.Command
		line := fmt.Sprintf("%s P1=%02X P2=%02X Lc=%d Le=%d",
			cmd.Instruction.Raw, cmd.P1, cmd.P2, len(cmd.Data), cmd.Ne)
		if tx.Response != nil {
			line += fmt.Sprintf(" -> %s (%d bytes)", tx.Response.Status.Verbose(), len(tx.Response.Data))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
