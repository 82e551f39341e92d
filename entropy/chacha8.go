package entropy

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	mathrand "math/rand/v2"
	"sync"

	"github.com/pg-sharding/pguuidv7/errors"
)

// ChaCha8 is a Source backed by a userspace ChaCha8 generator seeded once
// from the operating system CSPRNG. After seeding it never touches the
// kernel, which makes it markedly faster than Crypto under load.
type ChaCha8 struct {
	mu  sync.Mutex
	rng *mathrand.ChaCha8
}

// NewChaCha8 seeds a ChaCha8 source from crypto/rand. Seeding is the only
// point where this source can fail.
func NewChaCha8() (*ChaCha8, error) {
	var seed [32]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		return nil, errors.Wrap(err, "entropy: seed chacha8 source")
	}
	return &ChaCha8{rng: mathrand.NewChaCha8(seed)}, nil
}

// Fill implements Source interface for ChaCha8. It cannot fail after
// successful seeding.
func (c *ChaCha8) Fill(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var word [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(word[:], c.rng.Uint64())
		copy(p[i:], word[:])
	}
	return nil
}
