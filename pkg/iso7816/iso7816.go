/*
Package iso7816 implements the command/response layer used to talk to contact smart cards
according to ISO/IEC 7816-3 and 7816-4.

It provides the APDU codec (Command and Response structures), the CLA and INS byte
models, Status Word (SW1-SW2) classification, and builders for the handful of commands a
read-only health card session needs: SELECT, READ BINARY and READ RECORD.

# Fundamentals

Communication with a card is strictly synchronous:
 1. The host sends a Command APDU (Header + optional Body).
 2. The card processes it and returns a Response APDU (optional Body + Trailer SW1/SW2).

The meaning of a command depends on the card's current state (the selected application
or file), so commands are never pipelined.

# Status Words

Every response ends with a 2-byte Status Word (SW).
  - 0x9000: Success (OK).
  - 0x61XX: Success, but response data is still available (XX bytes).
  - 0x6CXX: Error, wrong length expectation (XX is the correct length).
  - Other: Various error conditions.

The Client resolves 61XX and 6CXX transparently and records every physical exchange in a
Trace.

# Usage Example

	cls, _ := iso7816.NewClass(0x00)
	client := iso7816.NewClient(card)

	trace, err := client.Send(iso7816.SelectByAID(cls, aid, iso7816.ReturnNoData))
	if err != nil {
	    log.Fatal(err)
	}
	if !trace.IsSuccess() {
	    log.Printf("select failed: %s", trace.Last().Response.Status.Verbose())
	}
*/
package iso7816
