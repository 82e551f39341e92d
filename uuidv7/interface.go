package uuidv7

// Recorder receives generation events for observability. Calls happen under
// the generator lock, so implementations should return quickly and must not
// call back into the generator.
type Recorder interface {
	// Generated reports a successfully produced identifier. fresh is true
	// when the identifier opened a new millisecond with a reseeded counter.
	Generated(fresh bool)

	// CounterOverflow reports a counter wrap that advanced the stored
	// timestamp past the wall clock.
	CounterOverflow()

	// ClockRegression reports a clock reading strictly older than the
	// stored timestamp.
	ClockRegression()

	// EntropyFailure reports a failed random read. No identifier was
	// produced and generator state did not change.
	EntropyFailure()
}

// nopRecorder discards all events. It backs generators with no recorder
// attached.
type nopRecorder struct{}

func (nopRecorder) Generated(bool)   {}
func (nopRecorder) CounterOverflow() {}
func (nopRecorder) ClockRegression() {}
func (nopRecorder) EntropyFailure()  {}
