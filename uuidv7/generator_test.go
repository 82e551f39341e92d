package uuidv7

import (
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pg-sharding/pguuidv7/clock"
	"github.com/pg-sharding/pguuidv7/entropy"
)

// fixedClock always reads the same millisecond.
func fixedClock(ms int64) clock.Clock {
	return clock.Func(func() time.Time {
		return time.UnixMilli(ms)
	})
}

// scriptClock replays the given milliseconds in order, repeating the final
// one once the script runs out.
func scriptClock(ms ...int64) clock.Clock {
	i := 0
	return clock.Func(func() time.Time {
		if i >= len(ms) {
			return time.UnixMilli(ms[len(ms)-1])
		}
		t := time.UnixMilli(ms[i])
		i++
		return t
	})
}

func zeroEntropy() entropy.Source {
	return entropy.SourceFunc(func(p []byte) error {
		clear(p)
		return nil
	})
}

func constEntropy(b byte) entropy.Source {
	return entropy.SourceFunc(func(p []byte) error {
		for i := range p {
			p[i] = b
		}
		return nil
	})
}

// countingRecorder tallies every generation event.
type countingRecorder struct {
	fresh, same, overflow, regression, failure int
}

func (r *countingRecorder) Generated(fresh bool) {
	if fresh {
		r.fresh++
	} else {
		r.same++
	}
}
func (r *countingRecorder) CounterOverflow() { r.overflow++ }
func (r *countingRecorder) ClockRegression() { r.regression++ }
func (r *countingRecorder) EntropyFailure()  { r.failure++ }

func TestKnownAnswers(t *testing.T) {
	g := NewGenerator(WithClock(fixedClock(1_000_000)), WithEntropy(zeroEntropy()))

	first, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	want := UUID{0x00, 0x00, 0x00, 0x0f, 0x42, 0x40, 0x70, 0x00, 0x80}
	if first != want {
		t.Errorf("first id = %v, want %v", first, want)
	}

	second, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	want[8] = 0x81 // counter ticked from 0 to 1
	if second != want {
		t.Errorf("second id = %v, want %v", second, want)
	}
	if second.Compare(first) <= 0 {
		t.Error("second id does not sort after the first")
	}
}

func TestVersionAndVariant(t *testing.T) {
	chacha, err := entropy.NewChaCha8()
	if err != nil {
		t.Fatalf("NewChaCha8 failed: %v", err)
	}
	sources := map[string]entropy.Source{
		"crypto":  entropy.Crypto(),
		"chacha8": chacha,
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			g := NewGenerator(WithEntropy(src))
			for i := 0; i < 1000; i++ {
				u, err := g.Next()
				if err != nil {
					t.Fatalf("Next failed: %v", err)
				}
				if u[6]&0xf0 != 0x70 {
					t.Fatalf("id %v version nibble = %#02x, want 0x70", u, u[6]&0xf0)
				}
				if u[8]&0xc0 != 0x80 {
					t.Fatalf("id %v variant bits = %#02x, want 0x80", u, u[8]&0xc0)
				}
				if c := u.Counter(); c > counterMax {
					t.Fatalf("id %v counter = %#x, above 18-bit bound", u, c)
				}
			}
		})
	}
}

func TestReseedClearsGuardBit(t *testing.T) {
	g := NewGenerator(WithClock(fixedClock(5)), WithEntropy(constEntropy(0xFF)))

	u, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	// All-ones entropy would seed 0x3FFFF; the cleared guard bit caps the
	// seed at 0x1FFFF, leaving 2^17 increments of headroom.
	if g.counter != 0x1FFFF {
		t.Errorf("seeded counter = %#x, want 0x1ffff", g.counter)
	}
	if c := u.Counter(); c != 0x1FFFF {
		t.Errorf("embedded counter = %#x, want 0x1ffff", c)
	}
	if u[6] != 0x77 {
		t.Errorf("byte 6 = %#02x, want 0x77", u[6])
	}
}

func TestSameTickIncrements(t *testing.T) {
	g := NewGenerator(WithClock(fixedClock(42)))

	prev, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	for i := 0; i < 100; i++ {
		u, err := g.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if got, want := u.Counter(), prev.Counter()+1; got != want {
			t.Fatalf("counter = %#x, want %#x", got, want)
		}
		if u.Time() != prev.Time() {
			t.Fatalf("timestamp moved within one tick: %v -> %v", prev.Time(), u.Time())
		}
		if u.Compare(prev) <= 0 {
			t.Fatalf("id %v does not sort after %v", u, prev)
		}
		prev = u
	}
}

func TestStrictlyIncreasingUnderClockJitter(t *testing.T) {
	g := NewGenerator(WithClock(scriptClock(10, 10, 12, 11, 11, 13, 9, 9, 14)))

	prev, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	for i := 0; i < 8; i++ {
		u, err := g.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if u.Compare(prev) <= 0 {
			t.Fatalf("id %v does not sort after %v", u, prev)
		}
		prev = u
	}
}

func TestBackwardClockPinsTimestamp(t *testing.T) {
	rec := &countingRecorder{}
	g := NewGenerator(WithClock(scriptClock(5000, 4000)), WithRecorder(rec))

	first, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	second, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	if got := second.Time().UnixMilli(); got != 5000 {
		t.Errorf("timestamp = %d, want the pinned 5000", got)
	}
	if got, want := second.Counter(), first.Counter()+1; got != want {
		t.Errorf("counter = %#x, want %#x", got, want)
	}
	if rec.regression != 1 {
		t.Errorf("regression events = %d, want 1", rec.regression)
	}
}

func TestCounterOverflowEscalatesTimestamp(t *testing.T) {
	rec := &countingRecorder{}
	g := NewGenerator(WithClock(fixedClock(7000)), WithEntropy(zeroEntropy()), WithRecorder(rec))

	first, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	g.counter = counterMax // force the next increment to wrap

	second, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got := second.Counter(); got != 0 {
		t.Errorf("counter after overflow = %#x, want 0", got)
	}
	if got := second.Time().UnixMilli(); got != 7001 {
		t.Errorf("timestamp after overflow = %d, want 7001", got)
	}
	if g.lastMs != 7001 {
		t.Errorf("stored timestamp = %d, want 7001", g.lastMs)
	}
	if second.Compare(first) <= 0 {
		t.Error("overflow escalation broke ordering")
	}
	if rec.overflow != 1 {
		t.Errorf("overflow events = %d, want 1", rec.overflow)
	}
}

func TestEntropyFailureLeavesStateUntouched(t *testing.T) {
	cause := errors.New("device gone")
	failing := entropy.SourceFunc(func(p []byte) error {
		return cause
	})
	g := NewGenerator(WithClock(fixedClock(100)), WithEntropy(failing))

	u, err := g.Next()
	if !errors.Is(err, ErrEntropyUnavailable) {
		t.Errorf("error = %v, want ErrEntropyUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error %v does not carry the source cause", err)
	}
	if !u.IsNil() {
		t.Errorf("failed call returned identifier %v, want Nil", u)
	}
	if g.lastMs != 0 || g.counter != 0 {
		t.Errorf("state moved on failure: lastMs=%d counter=%d", g.lastMs, g.counter)
	}
}

func TestEntropyFailureThenRecovery(t *testing.T) {
	fail := false
	flaky := entropy.SourceFunc(func(p []byte) error {
		if fail {
			return errors.New("transient")
		}
		clear(p)
		return nil
	})
	g := NewGenerator(WithClock(fixedClock(100)), WithEntropy(flaky))

	if _, err := g.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	c0 := g.counter

	fail = true
	if _, err := g.Next(); !errors.Is(err, ErrEntropyUnavailable) {
		t.Fatalf("error = %v, want ErrEntropyUnavailable", err)
	}
	if g.counter != c0 {
		t.Errorf("counter moved on failure: %#x, want %#x", g.counter, c0)
	}

	fail = false
	u, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed after recovery: %v", err)
	}
	if got, want := u.Counter(), c0+1; got != want {
		t.Errorf("counter after recovery = %#x, want %#x", got, want)
	}
}

func TestRecorderEvents(t *testing.T) {
	rec := &countingRecorder{}
	g := NewGenerator(WithClock(scriptClock(100, 100, 50, 200)), WithRecorder(rec))

	for i := 0; i < 4; i++ {
		if _, err := g.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
	}
	g.src = entropy.SourceFunc(func(p []byte) error {
		return errors.New("dry")
	})
	if _, err := g.Next(); err == nil {
		t.Fatal("Next succeeded with a failing source")
	}

	if rec.fresh != 2 {
		t.Errorf("fresh events = %d, want 2", rec.fresh)
	}
	if rec.same != 2 {
		t.Errorf("same-tick events = %d, want 2", rec.same)
	}
	if rec.regression != 1 {
		t.Errorf("regression events = %d, want 1", rec.regression)
	}
	if rec.failure != 1 {
		t.Errorf("failure events = %d, want 1", rec.failure)
	}
}

func TestNegativeClockClamps(t *testing.T) {
	g := NewGenerator(WithClock(fixedClock(-5000)))

	u, err := g.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got := u.Time().UnixMilli(); got != 0 {
		t.Errorf("timestamp = %d, want 0 for a pre-epoch clock", got)
	}
	if u[6]&0xf0 != 0x70 || u[8]&0xc0 != 0x80 {
		t.Errorf("id %v lost version or variant bits", u)
	}
}

func TestConcurrentGeneration(t *testing.T) {
	const workers, perWorker = 8, 2000

	g := NewGenerator()
	var mu sync.Mutex
	seen := make(map[UUID]struct{}, workers*perWorker)

	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			local := make([]UUID, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				u, err := g.Next()
				if err != nil {
					return err
				}
				local = append(local, u)
			}
			for i := 1; i < len(local); i++ {
				if local[i].Compare(local[i-1]) <= 0 {
					return errors.New("identifiers not increasing within one goroutine")
				}
			}
			mu.Lock()
			for _, u := range local {
				seen[u] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("concurrent generation failed: %v", err)
	}
	if len(seen) != workers*perWorker {
		t.Errorf("unique identifiers = %d, want %d", len(seen), workers*perWorker)
	}
}

func TestPackageDefault(t *testing.T) {
	u, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if u.Version() != Version {
		t.Errorf("version = %d, want %d", u.Version(), Version)
	}
	if Must() == u {
		t.Error("Must returned a duplicate identifier")
	}
}

func BenchmarkNextCrypto(b *testing.B) {
	g := NewGenerator()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Next()
	}
}

func BenchmarkNextChaCha8(b *testing.B) {
	src, err := entropy.NewChaCha8()
	if err != nil {
		b.Fatalf("NewChaCha8 failed: %v", err)
	}
	g := NewGenerator(WithEntropy(src))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Next()
	}
}
