package egk

import (
	"fmt"

	"github.com/gregLibert/egk-reader/pkg/bcd"
)

// versionFieldLength is the width of a packed version field: 10 BCD digits split
// 3/3/4 into major, minor and patch.
const versionFieldLength = 5

// Version is a major.minor.patch triple as stored on the card.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MarshalText renders the version as "major.minor.patch".
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ParseVersion decodes a 5-byte packed BCD version field.
func ParseVersion(field []byte) (Version, error) {
	if len(field) != versionFieldLength {
		return Version{}, &MalformedDataError{
			Field:  "version",
			Value:  fmt.Sprintf("%X", field),
			Reason: fmt.Sprintf("want %d bytes, got %d", versionFieldLength, len(field)),
		}
	}

	digits := bcd.Unpack(field)
	parts := [3][]byte{digits[0:3], digits[3:6], digits[6:10]}

	var out [3]int
	for i, p := range parts {
		n, err := bcd.Decode(p)
		if err != nil {
			return Version{}, &MalformedDataError{Field: "version", Value: fmt.Sprintf("%X", field), Reason: err.Error()}
		}
		out[i] = n
	}
	return Version{Major: out[0], Minor: out[1], Patch: out[2]}, nil
}

// Generation classifies the card by its firmware versions.
type Generation int

const (
	// GenerationG1 is the base generation, assumed whenever the versions are not
	// recognised as a later one.
	GenerationG1 Generation = iota
	// GenerationG1Plus is the extended generation.
	GenerationG1Plus
)

var generationNames = map[Generation]string{
	GenerationG1:     "G1",
	GenerationG1Plus: "G1plus",
}

func (g Generation) String() string {
	if name, ok := generationNames[g]; ok {
		return name
	}
	return fmt.Sprintf("Generation(%d)", int(g))
}

func (g Generation) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// Versions of EF.Version records 2 and 3 that identify a G1plus card.
var (
	g1PlusVersion2 = Version{3, 0, 1}
	g1PlusVersion3 = Version{3, 0, 3}
)

// ClassifyGeneration derives the card generation from version slots 2 and 3.
// Only the exact G1plus pair is recognised; everything else is G1.
func ClassifyGeneration(v2, v3 Version) Generation {
	if v2 == g1PlusVersion2 && v3 == g1PlusVersion3 {
		return GenerationG1Plus
	}
	return GenerationG1
}
