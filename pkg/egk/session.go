package egk

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/gregLibert/egk-reader/internal/log"
	"github.com/gregLibert/egk-reader/pkg/iso7816"
)

// Run opens a connection, reads the card and disconnects.
//
// The returned error is ErrNoCard (retry the whole session), or one of
// *UnrecognizedCardError, *ProtocolStatusError, *TransportError, *MalformedDataError
// and *RangeError. A document that fails to decompress does not fail the session:
// see Document.Err and Result.Complete.
func Run(ctx context.Context, opener Opener, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	conn, err := opener.Open(ctx)
	if err != nil {
		var terr *TransportError
		if errors.Is(err, ErrNoCard) || errors.As(err, &terr) {
			return nil, err
		}
		return nil, &TransportError{Op: "connect", Err: err}
	}

	s := newSession(conn, cfg)
	defer func() {
		if err := conn.Disconnect(); err != nil {
			s.log.Warnf("disconnect: %v", err)
		}
	}()

	return s.run()
}

// session is the state of one card presence. It is used by a single goroutine.
type session struct {
	conn   Connection
	client *iso7816.Client
	cfg    Config
	log    log.Logger
}

func newSession(conn Connection, cfg Config) *session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &session{
		conn:   conn,
		client: iso7816.NewClient(conn),
		cfg:    cfg,
		log:    logger,
	}
}

func (s *session) run() (*Result, error) {
	res := &Result{}
	var err error

	if res.ATR, err = s.checkCard(); err != nil {
		return nil, err
	}

	s.log.Debugf("state: select root")
	if _, err = s.exec("SELECT root", SelectRoot()); err != nil {
		return nil, err
	}
	for i := range res.Versions {
		if res.Versions[i], err = s.readVersion(i + 1); err != nil {
			return nil, err
		}
	}
	if s.cfg.ReadGDO {
		if res.ICCSN, err = s.readSerial(); err != nil {
			return nil, err
		}
	}

	s.log.Debugf("state: select HCA")
	if _, err = s.exec("SELECT HCA", SelectHCA()); err != nil {
		return nil, err
	}
	body, err := s.exec("READ EF.StatusVD", ReadStatus())
	if err != nil {
		return nil, err
	}
	if res.Status, err = ParseStatus(body, s.cfg.Location); err != nil {
		return nil, err
	}

	res.Generation = ClassifyGeneration(res.Versions[1], res.Versions[2])
	s.log.WithFields(log.Fields{
		"generation": res.Generation.String(),
		"schema":     res.Status.SchemaVersion.String(),
	}).Debugf("card identified")

	if res.PersonalData, err = s.readPersonalData(); err != nil {
		return nil, err
	}
	if res.InsuranceData, err = s.readInsuranceData(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *session) checkCard() ([]byte, error) {
	atr, err := s.conn.ATR()
	if err != nil {
		return nil, &TransportError{Op: "get ATR", Err: err}
	}
	s.log.Debugf("state: connect, ATR % X", atr)

	if s.cfg.SkipATRCheck {
		return atr, nil
	}
	for _, allowed := range s.cfg.AllowedATRs {
		if bytes.Equal(atr, allowed) {
			return atr, nil
		}
	}
	return nil, &UnrecognizedCardError{ATR: atr}
}

func (s *session) readVersion(slot int) (Version, error) {
	cmd, err := ReadVersion(slot)
	if err != nil {
		return Version{}, err
	}
	body, err := s.exec(fmt.Sprintf("READ EF.Version record %d", slot), cmd)
	if err != nil {
		return Version{}, err
	}
	return ParseVersion(body)
}

// readSerial reads EF.GDO. The serial number is optional: a refused read or an
// unparsable object only logs a warning, a transport fault ends the session.
func (s *session) readSerial() (string, error) {
	trace, err := s.send("READ EF.GDO", ReadGDO())
	if err != nil {
		return "", err
	}
	if sw := trace.Status(); sw != iso7816.SW_NO_ERROR {
		s.log.Warnf("EF.GDO not readable: %s", sw.Verbose())
		return "", nil
	}
	gdo, err := ParseGDO(trace.Data())
	if err != nil {
		s.log.Warnf("EF.GDO: %v", err)
		return "", nil
	}
	if log.IsDebugEnabled() {
		s.log.Debugf("EF.GDO\n%s", strings.Join(gdo.Describe(), "\n"))
	}
	return gdo.SerialNumber(), nil
}

// readPersonalData reads EF.PD: a 2-byte length that counts itself, then the payload.
func (s *session) readPersonalData() (Document, error) {
	const name = "EF.PD"
	s.log.Debugf("state: select %s", name)
	if _, err := s.exec("SELECT "+name, SelectPersonalData()); err != nil {
		return Document{}, err
	}

	prefix, err := s.readAt(name+" length", 0, 2)
	if err != nil {
		return Document{}, err
	}
	length := int(binary.BigEndian.Uint16(prefix)) - 2
	if length < 0 {
		return Document{}, &MalformedDataError{
			Field:  name + " length",
			Value:  fmt.Sprintf("%X", prefix),
			Reason: "length prefix smaller than itself",
		}
	}

	payload, err := s.readFile(name, 2, length)
	if err != nil {
		return Document{}, err
	}
	return s.decompress(name, payload), nil
}

// readInsuranceData reads EF.VD: a header with the inclusive start and end offsets of
// the payload.
func (s *session) readInsuranceData() (Document, error) {
	const name = "EF.VD"
	s.log.Debugf("state: select %s", name)
	if _, err := s.exec("SELECT "+name, SelectInsuranceData()); err != nil {
		return Document{}, err
	}

	header, err := s.readAt(name+" header", 0, 8)
	if err != nil {
		return Document{}, err
	}
	start := int(binary.BigEndian.Uint16(header[0:2]))
	end := int(binary.BigEndian.Uint16(header[2:4]))
	length := end - (start - 1)
	if length < 0 {
		return Document{}, &MalformedDataError{
			Field:  name + " header",
			Value:  fmt.Sprintf("%X", header[:4]),
			Reason: "end offset before start offset",
		}
	}

	payload, err := s.readFile(name, start, length)
	if err != nil {
		return Document{}, err
	}
	return s.decompress(name, payload), nil
}

func (s *session) decompress(name string, payload []byte) Document {
	doc := Document{Name: name, Compressed: len(payload)}
	xml, err := Inflate(payload, s.cfg.Padding)
	if err != nil {
		doc.Err = &DecompressionError{File: name, Err: err}
		s.log.Warnf("%v", doc.Err)
		return doc
	}
	doc.XML = xml
	s.log.Debugf("%s: %d bytes inflated to %d", name, len(payload), len(xml))
	return doc
}

// readFile reads length bytes of the selected EF starting at start, in chunks of at
// most MaxChunk bytes.
func (s *session) readFile(name string, start, length int) ([]byte, error) {
	if length < 0 {
		return nil, &RangeError{Field: name + " length", Value: length, Max: maxOffset}
	}

	out := make([]byte, 0, length)
	cursor := start
	for len(out) < length {
		chunk := min(s.cfg.MaxChunk, length-len(out))
		body, err := s.readAt(name, cursor, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, body...)
		cursor += len(body)
	}
	return out, nil
}

// readAt issues one READ BINARY and insists on receiving exactly length bytes.
func (s *session) readAt(name string, offset, length int) ([]byte, error) {
	cmd, err := ReadAt(offset, length)
	if err != nil {
		return nil, err
	}
	if offset > maxDirectOffset {
		s.log.Warnf("%s: offset %04X sets P1 bit 8, the card reads it as SFI addressing", name, offset)
	}
	body, err := s.exec(fmt.Sprintf("READ BINARY %s at %04X", name, offset), cmd)
	if err != nil {
		return nil, err
	}
	if len(body) != length {
		return nil, &MalformedDataError{
			Field:  name,
			Reason: fmt.Sprintf("requested %d bytes at offset %d, card returned %d", length, offset, len(body)),
		}
	}
	return body, nil
}

// exec sends cmd and requires status 9000.
func (s *session) exec(name string, cmd *iso7816.CommandAPDU) ([]byte, error) {
	trace, err := s.send(name, cmd)
	if err != nil {
		return nil, err
	}
	if sw := trace.Status(); sw != iso7816.SW_NO_ERROR {
		return nil, &ProtocolStatusError{Command: name, Expected: iso7816.SW_NO_ERROR, Actual: sw}
	}
	return trace.Data(), nil
}

func (s *session) send(name string, cmd *iso7816.CommandAPDU) (iso7816.Trace, error) {
	trace, err := s.client.Send(cmd)
	if log.IsDebugEnabled() && len(trace) > 0 {
		s.log.Debugf("%s\n%s", name, trace.Describe())
	}
	if err != nil {
		return trace, &TransportError{Op: name, Err: err}
	}
	return trace, nil
}
