// Package uuidv7 generates RFC 9562 UUID version 7 identifiers whose byte
// order sorts by creation time.
//
// # Format
//
// The identifier is 16 bytes. Bytes 0-5 hold a 48-bit big-endian Unix
// millisecond timestamp, so byte-wise comparison preserves chronological
// order. The remaining 80 bits split between structure and entropy:
//
//	byte 6   high nibble: version 0b0111
//	         low nibble:  counter bits 17-14
//	byte 7   counter bits 13-6
//	byte 8   high 2 bits: variant 0b10
//	         low 6 bits:  counter bits 5-0
//	bytes 9-15  random
//
// # Monotonicity
//
// A Generator keeps identifiers strictly increasing per process:
//   - On a fresh millisecond the 18-bit counter reseeds from entropy with
//     its top bit cleared, leaving at least 2^17 increments of headroom.
//   - Within one millisecond the counter increments. If the clock repeats
//     or steps backwards, generation continues on the stored timestamp.
//   - Counter overflow advances the stored timestamp by one millisecond,
//     borrowing from clock drift that real clocks absorb quickly.
//
// # Usage
//
//	gen := uuidv7.NewGenerator()
//	id, err := gen.Next()
//	if err != nil {
//		// entropy source failed; no identifier was produced
//	}
//	s := id.String() // canonical 8-4-4-4-12 form
package uuidv7
