package entropy

// Reader adapts a Source to the io.Reader contract for libraries that
// consume entropy through a reader, such as ULID constructors.
type Reader struct {
	src Source
}

// NewReader wraps src in an io.Reader.
func NewReader(src Source) *Reader {
	return &Reader{src: src}
}

// Read implements io.Reader for Reader. It fills p entirely or reports an
// error with a zero count, never a short read.
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.src.Fill(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
