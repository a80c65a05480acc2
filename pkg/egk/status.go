package egk

import (
	"fmt"
	"time"
)

// EF.StatusVD layout:
//
//	offset  size  content
//	0       1     '0' or '1': an update transaction is open
//	1       14    last update, ASCII YYYYMMDDhhmmss
//	15      5     schema version, packed BCD
const (
	statusTimestampLayout = "20060102150405"
	statusMinLength       = 20
)

// Status is the content of EF.StatusVD.
type Status struct {
	TransactionOpen bool      `json:"transaction_open"`
	LastUpdate      time.Time `json:"last_data_update"`
	SchemaVersion   Version   `json:"version_xsd"`
}

// ParseStatus decodes EF.StatusVD. The timestamp is interpreted in loc (UTC when nil).
func ParseStatus(data []byte, loc *time.Location) (Status, error) {
	if len(data) < statusMinLength {
		return Status{}, &MalformedDataError{
			Field:  "EF.StatusVD",
			Value:  fmt.Sprintf("%X", data),
			Reason: fmt.Sprintf("want at least %d bytes, got %d", statusMinLength, len(data)),
		}
	}
	if loc == nil {
		loc = time.UTC
	}

	var st Status
	// '0' is closed, any other digit open.
	if data[0] < '0' || data[0] > '9' {
		return Status{}, &MalformedDataError{Field: "transaction flag", Value: string(data[0:1]), Reason: "want a decimal digit"}
	}
	st.TransactionOpen = data[0] != '0'

	ts := string(data[1:15])
	t, err := time.ParseInLocation(statusTimestampLayout, ts, loc)
	if err != nil {
		return Status{}, &MalformedDataError{Field: "last update", Value: ts, Reason: err.Error()}
	}
	st.LastUpdate = t

	if st.SchemaVersion, err = ParseVersion(data[15:20]); err != nil {
		return Status{}, err
	}
	return st, nil
}
