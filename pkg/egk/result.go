package egk

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Document is one decompressed file of the card.
type Document struct {
	// Name is the file name, "EF.PD" or "EF.VD".
	Name string
	// Compressed is the number of payload bytes read from the card.
	Compressed int
	// XML is the decompressed content; nil when Err is set.
	XML []byte
	// Err is the DecompressionError that made the document unavailable.
	Err error
}

// Available reports whether the document could be decompressed.
func (d Document) Available() bool {
	return d.Err == nil && d.XML != nil
}

// Result is everything read during one session.
type Result struct {
	ATR        []byte
	ICCSN      string // empty when EF.GDO was skipped or unreadable
	Versions   [VersionSlots]Version
	Status     Status
	Generation Generation

	PersonalData  Document
	InsuranceData Document
}

// Complete reports whether both documents are available.
func (r *Result) Complete() bool {
	return r.PersonalData.Available() && r.InsuranceData.Available()
}

// Err combines the errors of unavailable documents, nil when complete.
func (r *Result) Err() error {
	var merr *multierror.Error
	for _, d := range []Document{r.PersonalData, r.InsuranceData} {
		if d.Err != nil {
			merr = multierror.Append(merr, d.Err)
		}
	}
	return merr.ErrorOrNil()
}

// ATRString renders the ATR as space separated hex bytes.
func (r *Result) ATRString() string {
	return fmt.Sprintf("% X", r.ATR)
}
