package iso7816

import (
	"fmt"
)

// CLIENT & PROTOCOL LOGIC:
// The Client drives the physical connection and hides the ISO 7816-3 transport behaviours
// that T=0 readers expose to the application layer:
//
//  1. "61 XX" (Response Available): a GET RESPONSE with Le=XX is sent automatically.
//  2. "6C XX" (Wrong Length): the original command is re-sent with Le=XX.
//
// Send returns a Trace holding every physical exchange made for the logical command.

// maxFollowUps bounds the number of automatic GET RESPONSE / re-send steps, so a card
// that keeps answering 61XX or 6CXX cannot stall the session.
const maxFollowUps = 8

// Transmitter abstracts the physical card connection.
// Transmit sends a raw C-APDU and returns the raw R-APDU including SW1-SW2.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Client manages the high-level communication with the card.
type Client struct {
	Card Transmitter
}

// NewClient creates a new Client instance.
func NewClient(card Transmitter) *Client {
	return &Client{Card: card}
}

// Send transmits a command and handles protocol logic (61xx, 6Cxx).
func (c *Client) Send(cmd *CommandAPDU) (Trace, error) {
	var trace Trace

	for step := 0; ; step++ {
		resp, err := c.exchange(cmd)
		if err != nil {
			return trace, err
		}
		trace = append(trace, Transaction{Command: cmd, Response: resp})

		next := followUp(cmd, resp.Status)
		if next == nil {
			return trace, nil
		}
		if step == maxFollowUps {
			return trace, fmt.Errorf("card still answers %s after %d follow-up commands",
				resp.Status.Verbose(), maxFollowUps)
		}
		cmd = next
	}
}

func (c *Client) exchange(cmd *CommandAPDU) (*ResponseAPDU, error) {
	rawCmd, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	rawResp, err := c.Card.Transmit(rawCmd)
	if err != nil {
		return nil, fmt.Errorf("transmission error: %w", err)
	}

	return ParseResponseAPDU(rawResp)
}

// followUp returns the command that must be issued after a 61XX or 6CXX status, or nil.
func followUp(cmd *CommandAPDU, sw StatusWord) *CommandAPDU {
	switch sw.SW1() {
	case 0x61:
		// GET RESPONSE must use the same logical channel as the original command.
		cls := cmd.Class
		cls.IsChained = false
		return NewCommandAPDU(cls, mustInstruction(INS_GET_RESPONSE), 0x00, 0x00, nil, leFor(sw.SW2()))
	case 0x6C:
		// Clone so the caller's command keeps its original Le.
		retry := *cmd
		retry.Ne = leFor(sw.SW2())
		return &retry
	}
	return nil
}
