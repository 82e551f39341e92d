package uuidv7

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Version is the UUID version this package produces.
const Version = 7

// ErrInvalidFormat reports text that does not parse as a canonical UUID.
var ErrInvalidFormat = errors.New("uuidv7: invalid text representation")

// ErrUnsupportedVersion reports a well-formed UUID that is not a version 7
// identifier with the RFC variant.
var ErrUnsupportedVersion = errors.New("uuidv7: not a version 7 identifier")

// UUID is a 128-bit version 7 identifier. The zero value is Nil.
type UUID [16]byte

// Nil is the zero UUID, which never matches a generated identifier.
var Nil UUID

// Bytes returns the raw 16-byte representation.
func (u UUID) Bytes() []byte {
	return u[:]
}

// String returns the canonical 8-4-4-4-12 lowercase hex form.
func (u UUID) String() string {
	var b [36]byte
	hex.Encode(b[:8], u[:4])
	b[8] = '-'
	hex.Encode(b[9:13], u[4:6])
	b[13] = '-'
	hex.Encode(b[14:18], u[6:8])
	b[18] = '-'
	hex.Encode(b[19:23], u[8:10])
	b[23] = '-'
	hex.Encode(b[24:], u[10:])
	return string(b[:])
}

// Compare returns -1, 0 or 1 by lexical byte order, which for version 7
// identifiers is also creation order.
func (u UUID) Compare(other UUID) int {
	return bytes.Compare(u[:], other[:])
}

// IsNil reports whether u is the zero UUID.
func (u UUID) IsNil() bool {
	return u == Nil
}

// Version returns the version nibble from byte 6.
func (u UUID) Version() byte {
	return u[6] >> 4
}

// Variant returns the two variant bits from byte 8. Generated identifiers
// always carry the RFC variant 0b10.
func (u UUID) Variant() byte {
	return u[8] >> 6
}

// Time returns the embedded millisecond timestamp.
func (u UUID) Time() time.Time {
	ms := uint64(u[0])<<40 | uint64(u[1])<<32 | uint64(u[2])<<24 |
		uint64(u[3])<<16 | uint64(u[4])<<8 | uint64(u[5])
	return time.UnixMilli(int64(ms))
}

// Counter returns the embedded 18-bit monotonic counter.
func (u UUID) Counter() uint32 {
	return uint32(u[6]&0x0f)<<14 | uint32(u[7])<<6 | uint32(u[8]&0x3f)
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts only the
// canonical form of a version 7 identifier.
func (u *UUID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Parse converts canonical 8-4-4-4-12 text into a UUID. It rejects
// malformed text with ErrInvalidFormat and well-formed identifiers of the
// wrong version or variant with ErrUnsupportedVersion.
func Parse(s string) (UUID, error) {
	var u UUID
	if len(s) != 36 {
		return Nil, fmt.Errorf("%w: length %d, want 36", ErrInvalidFormat, len(s))
	}
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return Nil, fmt.Errorf("%w: misplaced separators", ErrInvalidFormat)
	}

	var raw [32]byte
	n := 0
	for i := 0; i < len(s); i++ {
		if i == 8 || i == 13 || i == 18 || i == 23 {
			continue
		}
		raw[n] = s[i]
		n++
	}
	if _, err := hex.Decode(u[:], raw[:]); err != nil {
		return Nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if err := u.validate(); err != nil {
		return Nil, err
	}
	return u, nil
}

// validate rejects identifiers that do not carry the version 7 nibble and
// the RFC variant bits.
func (u UUID) validate() error {
	if v := u.Version(); v != Version {
		return fmt.Errorf("%w: version %d", ErrUnsupportedVersion, v)
	}
	if u[8]&0xc0 != 0x80 {
		return fmt.Errorf("%w: variant bits %#02x", ErrUnsupportedVersion, u[8]>>6)
	}
	return nil
}

// MustParse is Parse for compile-time constants and test fixtures. It
// panics on any parse error.
func MustParse(s string) UUID {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}
