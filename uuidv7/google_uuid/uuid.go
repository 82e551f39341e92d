package google_uuid

import (
	"github.com/google/uuid"

	"github.com/pg-sharding/pguuidv7/errors"
	"github.com/pg-sharding/pguuidv7/uuidv7"
)

// V7Generator implements IDGenerator on top of a version 7 generator.
type V7Generator struct {
	gen *uuidv7.Generator
}

// NewV7Generator wraps gen, or a fresh default generator when gen is nil.
func NewV7Generator(gen *uuidv7.Generator) *V7Generator {
	if gen == nil {
		gen = uuidv7.NewGenerator()
	}
	return &V7Generator{gen: gen}
}

// GenerateID produces a canonical version 7 identifier string.
func (g *V7Generator) GenerateID() (string, error) {
	id, err := g.gen.Next()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// GoogleUUIDGenerator implements IDGenerator for UUIDv4 via google/uuid.
type GoogleUUIDGenerator struct{}

// NewGoogleUUIDGenerator creates a new UUIDv4 generator.
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// GenerateID produces a RFC 4122-compliant UUIDv4 string.
func (g *GoogleUUIDGenerator) GenerateID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", errors.Wrap(err, "google_uuid: generate v4")
	}
	return id.String(), nil
}

// ToUUID reinterprets id as a github.com/google/uuid value. The bytes are
// identical; only the type changes.
func ToUUID(id uuidv7.UUID) uuid.UUID {
	return uuid.UUID(id)
}

// FromUUID copies the raw bytes of a google/uuid value. The result only
// honors the uuidv7 invariants when id is itself a version 7 identifier.
func FromUUID(id uuid.UUID) uuidv7.UUID {
	return uuidv7.UUID(id)
}
