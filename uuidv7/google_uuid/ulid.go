package google_uuid

import (
	"io"

	"github.com/oklog/ulid/v2"

	"github.com/pg-sharding/pguuidv7/entropy"
	"github.com/pg-sharding/pguuidv7/errors"
	"github.com/pg-sharding/pguuidv7/uuidv7"
)

// ULIDGenerator implements IDGenerator for ULIDs with pluggable entropy.
type ULIDGenerator struct {
	entropy io.Reader
}

// NewULIDGenerator creates a ULID generator reading from src, or from the
// operating system CSPRNG when src is nil.
func NewULIDGenerator(src entropy.Source) *ULIDGenerator {
	if src == nil {
		src = entropy.Crypto()
	}
	return &ULIDGenerator{entropy: entropy.NewReader(src)}
}

// GenerateID produces a 26-character Crockford base32 ULID string.
func (g *ULIDGenerator) GenerateID() (string, error) {
	id, err := ulid.New(ulid.Now(), g.entropy)
	if err != nil {
		return "", errors.Wrap(err, "google_uuid: generate ulid")
	}
	return id.String(), nil
}

// ULID reinterprets id as a ULID. Both formats lead with the same 48-bit
// big-endian millisecond timestamp, so the view sorts the same way and
// reports the same time.
func ULID(id uuidv7.UUID) ulid.ULID {
	return ulid.ULID(id)
}
