// Package vsd parses the insurant data documents (Versichertenstammdaten) stored on
// German health cards: the personal data of EF.PD and the insurance data of EF.VD.
//
// Both are XML documents, usually declared as ISO-8859-15. Elements are matched by
// local name so that namespace prefixes (vsdp:, vsda:, ...) and schema versions do
// not matter.
package vsd

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

const dateLayout = "20060102"

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// MarshalJSON shadows the RFC 3339 encoding of the embedded time.Time.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func parseDate(field, s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, &FieldError{Field: field, Value: s, Err: err}
	}
	return Date{t}, nil
}

// ErrMissingField is wrapped by FieldError when a required element is absent.
var ErrMissingField = errors.New("missing required element")

// FieldError reports a required element that is missing or unparsable.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("vsd: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("vsd: %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// common labels first, the IANA registry for the rest
var charsets = map[string]encoding.Encoding{
	"iso-8859-15":  charmap.ISO8859_15,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, ok := charsets[strings.ToLower(label)]
	if !ok {
		var err error
		if enc, err = ianaindex.IANA.Encoding(label); err != nil {
			return nil, fmt.Errorf("vsd: charset %q: %w", label, err)
		}
		if enc == nil {
			return nil, fmt.Errorf("vsd: charset %q not supported", label)
		}
	}
	return enc.NewDecoder().Reader(input), nil
}

// walk calls fn with the local names of the element path (outermost first) and the
// trimmed text of every non-empty text node.
func walk(doc []byte, fn func(path []string, text string)) error {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	dec.CharsetReader = charsetReader

	var path []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("vsd: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			path = append(path, t.Name.Local)
		case xml.EndElement:
			path = path[:len(path)-1]
		case xml.CharData:
			if text := strings.TrimSpace(string(t)); text != "" && len(path) > 0 {
				fn(path, text)
			}
		}
	}
}

// fieldSet keeps the first value seen for every element name.
type fieldSet map[string]string

func (f fieldSet) setOnce(name, value string) {
	if _, ok := f[name]; !ok {
		f[name] = value
	}
}

func (f fieldSet) required(names ...string) error {
	var missing []string
	for _, n := range names {
		if f[n] == "" {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &FieldError{Field: strings.Join(missing, ", "), Err: ErrMissingField}
	}
	return nil
}
