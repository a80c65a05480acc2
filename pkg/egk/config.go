package egk

import (
	"fmt"
	"time"

	"github.com/gregLibert/egk-reader/internal/log"
)

// DefaultATR is the ATR of the eGK cards this reader knows.
var DefaultATR = []byte{
	0x3B, 0xDD, 0x97, 0xFF, 0x81, 0xB1, 0xFE, 0x45, 0x1F, 0x03, 0x00, 0x64,
	0x04, 0x05, 0x08, 0x03, 0x73, 0x96, 0x21, 0xD0, 0x00, 0x90, 0x00, 0xC8,
}

// DefaultMaxChunk is the largest READ BINARY length used. Some readers fail on
// transfers close to 256 bytes.
const DefaultMaxChunk = 252

// Config tunes a session.
type Config struct {
	// AllowedATRs lists the accepted ATRs, compared byte for byte.
	AllowedATRs [][]byte
	// SkipATRCheck accepts any card.
	SkipATRCheck bool
	// MaxChunk bounds the length of one READ BINARY, 1..255.
	MaxChunk int
	// Padding is the number of zero bytes appended before decompression.
	Padding int
	// ReadGDO reads the card serial number from EF.GDO. Failures only log a warning.
	ReadGDO bool
	// Location of the EF.StatusVD timestamp; UTC when nil.
	Location *time.Location
	// Logger receives state transitions and APDU traces; the package logger when nil.
	Logger log.Logger
}

// DefaultConfig returns the settings used for production cards.
func DefaultConfig() Config {
	return Config{
		AllowedATRs: [][]byte{DefaultATR},
		MaxChunk:    DefaultMaxChunk,
		Padding:     DefaultPadding,
		ReadGDO:     true,
		Location:    time.UTC,
	}
}

func (c Config) validate() error {
	if c.MaxChunk < 1 || c.MaxChunk > maxLength {
		return &RangeError{Field: "max chunk", Value: c.MaxChunk, Max: maxLength}
	}
	if c.Padding < 0 {
		return fmt.Errorf("egk: negative padding %d", c.Padding)
	}
	if !c.SkipATRCheck && len(c.AllowedATRs) == 0 {
		return fmt.Errorf("egk: empty ATR allow-list")
	}
	return nil
}
