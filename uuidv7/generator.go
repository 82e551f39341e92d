package uuidv7

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pg-sharding/pguuidv7/clock"
	"github.com/pg-sharding/pguuidv7/entropy"
)

// ErrEntropyUnavailable reports that the random source failed. The error is
// fatal for the call: no identifier is produced, nothing is retried and the
// generator sequence is left exactly where it was.
var ErrEntropyUnavailable = errors.New("uuidv7: entropy source unavailable")

const (
	// counterMax bounds the 18-bit counter; incrementing past it advances
	// the stored timestamp instead.
	counterMax = 0x3FFFF

	// counterGuardBit is the counter's top bit within byte 6. Clearing it
	// right after a reseed guarantees at least 2^17 increments before an
	// overflow can occur.
	counterGuardBit = 0x08
)

// Generator produces strictly increasing version 7 identifiers. It is safe
// for concurrent use; a mutex serializes state updates so every identifier
// observes a unique (timestamp, counter) pair.
type Generator struct {
	mu  sync.Mutex
	clk clock.Clock
	src entropy.Source
	rec Recorder

	lastMs  uint64 // timestamp of the last identifier, never decreases
	counter uint32 // 18-bit counter within lastMs
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock substitutes the time source.
func WithClock(c clock.Clock) Option {
	return func(g *Generator) { g.clk = c }
}

// WithEntropy substitutes the random source.
func WithEntropy(src entropy.Source) Option {
	return func(g *Generator) { g.src = src }
}

// WithRecorder attaches an observer for generation events.
func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.rec = r }
}

// NewGenerator creates a Generator backed by the system clock and the
// operating system CSPRNG, then applies opts.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		clk: clock.New(),
		src: entropy.Crypto(),
		rec: nopRecorder{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns the next identifier in the generation order.
//
// A fresh millisecond reseeds the counter from entropy. A repeated or
// backward clock reading increments the counter on the stored timestamp,
// escalating overflow into the timestamp itself. State commits only after
// the entropy read succeeds, so a failed call leaves the sequence intact.
func (g *Generator) Next() (UUID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var u UUID
	ms := g.clk.Now().UnixMilli()
	if ms < 0 {
		// Pre-epoch readings collapse to zero; the same-tick path below
		// keeps ordering intact regardless.
		ms = 0
	}
	now := uint64(ms)

	fresh := now > g.lastMs
	if !fresh && now < g.lastMs {
		g.rec.ClockRegression()
	}

	var err error
	if fresh {
		err = g.reseed(&u, now)
	} else {
		err = g.advance(&u)
	}
	if err != nil {
		g.rec.EntropyFailure()
		return Nil, err
	}

	writeTimestamp(&u, g.lastMs)
	u[6] = u[6]&0x0f | 0x70 // version 7
	u[8] = u[8]&0x3f | 0x80 // variant 0b10

	g.rec.Generated(fresh)
	return u, nil
}

// reseed fills bytes 6-15 with fresh entropy and reads the counter back out
// of its final bit positions, so the random seed and the stored counter
// agree bit for bit.
func (g *Generator) reseed(u *UUID, now uint64) error {
	if err := g.src.Fill(u[6:]); err != nil {
		return fmt.Errorf("%w: %w", ErrEntropyUnavailable, err)
	}
	u[6] &^= counterGuardBit
	g.counter = u.Counter()
	g.lastMs = now
	return nil
}

// advance computes the incremented counter and, on overflow, the escalated
// timestamp, then fills only the random tail. The new state commits after
// the fill succeeds.
func (g *Generator) advance(u *UUID) error {
	next, ts := g.counter+1, g.lastMs
	overflowed := next > counterMax
	if overflowed {
		next, ts = 0, ts+1
	}

	if err := g.src.Fill(u[9:]); err != nil {
		return fmt.Errorf("%w: %w", ErrEntropyUnavailable, err)
	}

	g.counter, g.lastMs = next, ts
	u[6] = byte(next >> 14)
	u[7] = byte(next >> 6)
	u[8] = byte(next)

	if overflowed {
		g.rec.CounterOverflow()
	}
	return nil
}

// writeTimestamp encodes the low 48 bits of ms big-endian into bytes 0-5.
func writeTimestamp(u *UUID, ms uint64) {
	u[0] = byte(ms >> 40)
	u[1] = byte(ms >> 32)
	u[2] = byte(ms >> 24)
	u[3] = byte(ms >> 16)
	u[4] = byte(ms >> 8)
	u[5] = byte(ms)
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// New returns the next identifier from the shared process-wide generator.
func New() (UUID, error) {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator.Next()
}

// Must returns the next identifier from the shared generator and panics if
// entropy is unavailable. Intended for initialization paths where failing
// to produce an identifier is unrecoverable.
func Must() UUID {
	u, err := New()
	if err != nil {
		panic(err)
	}
	return u
}
