package egk

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/adler32"
	"hash/crc32"
	"io"
)

// DefaultPadding is the number of zero bytes appended to a card payload before
// decompression. Cards cut the end of the stream; the padding stands in for the
// missing trailer.
const DefaultPadding = 16

// Format is the container around a deflate stream.
type Format int

const (
	FormatRaw Format = iota
	FormatGzip
	FormatZlib
)

func (f Format) String() string {
	switch f {
	case FormatGzip:
		return "gzip"
	case FormatZlib:
		return "zlib"
	default:
		return "deflate"
	}
}

// DetectFormat inspects the first bytes of data.
func DetectFormat(data []byte) Format {
	if len(data) >= 3 && data[0] == 0x1F && data[1] == 0x8B && data[2] == 0x08 {
		return FormatGzip
	}
	if len(data) >= 2 && data[0]&0x0F == 0x08 && data[0]>>4 <= 7 &&
		binary.BigEndian.Uint16(data)%31 == 0 {
		return FormatZlib
	}
	return FormatRaw
}

// Inflate pads data with padding zero bytes and decompresses it.
//
// A gzip or zlib trailer that does not match is accepted only when it agrees with the
// expected checksum up to some byte and is zero from there on, i.e. when the card cut
// the trailer and the padding filled the gap. Any other mismatch is an error.
func Inflate(data []byte, padding int) ([]byte, error) {
	if padding < 0 {
		return nil, fmt.Errorf("negative padding %d", padding)
	}
	buf := make([]byte, len(data)+padding)
	copy(buf, data)
	r := bytes.NewReader(buf)

	switch DetectFormat(data) {
	case FormatGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip header: %w", err)
		}
		// The padding must not be taken for a second member.
		zr.Multistream(false)
		out, err := io.ReadAll(zr)
		if errors.Is(err, gzip.ErrChecksum) {
			want := binary.LittleEndian.AppendUint32(
				binary.LittleEndian.AppendUint32(nil, crc32.ChecksumIEEE(out)), uint32(len(out)))
			err = checkTrailer(buf, r, want, err)
		}
		return out, err

	case FormatZlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zlib header: %w", err)
		}
		out, err := io.ReadAll(zr)
		if errors.Is(err, zlib.ErrChecksum) {
			want := binary.BigEndian.AppendUint32(nil, adler32.Checksum(out))
			err = checkTrailer(buf, r, want, err)
		}
		return out, err

	default:
		return io.ReadAll(flate.NewReader(r))
	}
}

// checkTrailer decides whether a checksum failure comes from a cut-off trailer.
// The trailer occupies the len(want) bytes before the reader position.
func checkTrailer(buf []byte, r *bytes.Reader, want []byte, cause error) error {
	end := len(buf) - r.Len()
	if end < len(want) {
		return cause
	}
	got := buf[end-len(want) : end]

	k := 0
	for k < len(got) && got[k] == want[k] {
		k++
	}
	for _, b := range got[k:] {
		if b != 0 {
			return cause
		}
	}
	return nil
}
