// Package entropy provides pluggable sources of cryptographically strong
// randomness. The default source reads the operating system CSPRNG; a
// ChaCha8 source trades a userspace generator for syscall-free speed.
package entropy

import (
	cryptorand "crypto/rand"
	"io"

	"github.com/pg-sharding/pguuidv7/errors"
)

// Source fills byte buffers with random data. A Source must either fill the
// whole buffer or report an error; callers never see partial fills.
type Source interface {
	Fill(p []byte) error
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(p []byte) error

// Fill implements Source interface for SourceFunc.
func (f SourceFunc) Fill(p []byte) error {
	return f(p)
}

// cryptoSource implements Source using the operating system CSPRNG.
type cryptoSource struct{}

// Crypto returns a Source backed by crypto/rand.
func Crypto() Source {
	return cryptoSource{}
}

// Fill implements Source interface for cryptoSource.
func (cryptoSource) Fill(p []byte) error {
	if _, err := io.ReadFull(cryptorand.Reader, p); err != nil {
		return errors.Wrap(err, "entropy: read system source")
	}
	return nil
}
