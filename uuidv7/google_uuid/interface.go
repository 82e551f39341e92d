// Package google_uuid bridges version 7 identifiers to the google/uuid and
// oklog/ulid ecosystems.
package google_uuid

// IDGenerator defines the contract for string ID generation implementations.
type IDGenerator interface {
	GenerateID() (string, error)
}
