package egk

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func statusBytes(flag, ts string, version []byte) []byte {
	b := append([]byte(flag), ts...)
	b = append(b, version...)
	return append(b, make([]byte, 5)...)
}

func TestParseStatus(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}

	tests := []struct {
		name    string
		data    []byte
		loc     *time.Location
		want    Status
		wantErr string
	}{
		{
			name: "closed transaction",
			data: statusBytes("0", "20231231235959", []byte{0x00, 0x50, 0x01, 0x00, 0x00}),
			want: Status{
				LastUpdate:    time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
				SchemaVersion: Version{5, 1, 0},
			},
		},
		{
			name: "open transaction in local time",
			data: statusBytes("1", "20240615080000", []byte{0x00, 0x50, 0x02, 0x00, 0x00}),
			loc:  berlin,
			want: Status{
				TransactionOpen: true,
				LastUpdate:      time.Date(2024, 6, 15, 8, 0, 0, 0, berlin),
				SchemaVersion:   Version{5, 2, 0},
			},
		},
		{
			name: "any non-zero digit means open",
			data: statusBytes("2", "20240615080000", []byte{0x00, 0x50, 0x02, 0x00, 0x00}),
			want: Status{
				TransactionOpen: true,
				LastUpdate:      time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC),
				SchemaVersion:   Version{5, 2, 0},
			},
		},
		{
			name:    "too short",
			data:    []byte("020240615080000"),
			wantErr: "EF.StatusVD",
		},
		{
			name:    "bad flag",
			data:    statusBytes("X", "20240615080000", []byte{0x00, 0x50, 0x02, 0x00, 0x00}),
			wantErr: "transaction flag",
		},
		{
			name:    "bad timestamp",
			data:    statusBytes("0", "20241315080000", []byte{0x00, 0x50, 0x02, 0x00, 0x00}),
			wantErr: "last update",
		},
		{
			name:    "bad schema version",
			data:    statusBytes("0", "20240615080000", []byte{0xFF, 0x50, 0x02, 0x00, 0x00}),
			wantErr: "version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.data, tt.loc)
			if tt.wantErr != "" {
				var merr *MalformedDataError
				if !errors.As(err, &merr) {
					t.Fatalf("error = %v, want *MalformedDataError", err)
				}
				if merr.Field != tt.wantErr {
					t.Errorf("Field = %q, want %q", merr.Field, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseStatus mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
