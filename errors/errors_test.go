package errors

import (
	"strings"
	"testing"
)

func TestAppendNilSafety(t *testing.T) {
	if err := Append(nil); err != nil {
		t.Errorf("Append(nil) = %v, want nil", err)
	}
	if err := Append(nil, nil, nil); err != nil {
		t.Errorf("Append(nil, nil, nil) = %v, want nil", err)
	}

	base := New("first")
	err := Append(nil, base, New("second"))
	if err == nil {
		t.Fatal("Append with real errors returned nil")
	}
	if !Is(err, base) {
		t.Error("merged error lost Is match for an appended error")
	}
	for _, want := range []string{"first", "second"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("merged error %q missing %q", err, want)
		}
	}
}

func TestWrapPreservesChain(t *testing.T) {
	sentinel := New("source exhausted")
	wrapped := Wrap(sentinel, "reading seed")
	if !Is(wrapped, sentinel) {
		t.Error("Wrap broke the error chain")
	}
	if got, want := wrapped.Error(), "reading seed: source exhausted"; got != want {
		t.Errorf("wrapped message = %q, want %q", got, want)
	}
	if Wrap(nil, "ignored") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapfFormatsBeforeCause(t *testing.T) {
	sentinel := New("boom")
	wrapped := Wrapf(sentinel, "attempt %d of %d", 2, 3)
	if got, want := wrapped.Error(), "attempt 2 of 3: boom"; got != want {
		t.Errorf("wrapped message = %q, want %q", got, want)
	}
	if !Is(wrapped, sentinel) {
		t.Error("Wrapf broke the error chain")
	}
}

func TestPrefixReachesEveryError(t *testing.T) {
	single := Prefix(New("refused"), "dial")
	if got, want := single.Error(), "dial refused"; got != want {
		t.Errorf("prefixed message = %q, want %q", got, want)
	}

	multi := Prefix(Append(nil, New("a"), New("b")), "close")
	for _, want := range []string{"close a", "close b"} {
		if !strings.Contains(multi.Error(), want) {
			t.Errorf("prefixed multi-error %q missing %q", multi, want)
		}
	}

	if Prefix(nil, "ignored") != nil {
		t.Error("Prefix(nil) should return nil")
	}
}

func TestCombine(t *testing.T) {
	fresh := Combine(nil, "standalone")
	if fresh == nil || fresh.Error() != "standalone" {
		t.Errorf("Combine(nil, ...) = %v, want plain error", fresh)
	}

	base := New("original")
	merged := Combine(base, "addendum")
	if !Is(merged, base) {
		t.Error("Combine lost the original error")
	}
	for _, want := range []string{"original", "addendum"} {
		if !strings.Contains(merged.Error(), want) {
			t.Errorf("combined error %q missing %q", merged, want)
		}
	}
}

func TestFlattenCollapsesNesting(t *testing.T) {
	inner := Append(nil, New("a"), New("b"))
	outer := Append(nil, inner, New("c"))
	flat := Flatten(outer)
	if flat == nil {
		t.Fatal("Flatten returned nil for populated multi-error")
	}
	for _, want := range []string{"a", "b", "c"} {
		if !strings.Contains(flat.Error(), want) {
			t.Errorf("flattened error %q missing %q", flat, want)
		}
	}
}
