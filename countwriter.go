package marshalling

import "io"

// CountWriter is a write-only, non-seekable sink that accumulates the sum
// of accepted byte counts and discards the content itself. It is the
// write-side counterpart of the byte-count tracking Reader/Writer do on
// their own count field, pulled out as a standalone collaborator since
// Stream needs to hand a plain io.Writer to things like CopyTo destinations
// during size-estimation passes.
type CountWriter struct {
	n int64
}

// NewCountWriter returns a CountWriter ready to accumulate.
func NewCountWriter() *CountWriter {
	return &CountWriter{}
}

// Write implements io.Writer. It never fails and never inspects p's
// contents; it only counts.
func (c *CountWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

// WriteByte implements io.ByteWriter.
func (c *CountWriter) WriteByte(byte) error {
	c.n++
	return nil
}

// WriteString implements io.StringWriter.
func (c *CountWriter) WriteString(s string) (int, error) {
	c.n += int64(len(s))
	return len(s), nil
}

// Read always fails: CountWriter is write-only.
func (c *CountWriter) Read([]byte) (int, error) {
	return 0, ErrNotReadable
}

// Seek always fails: CountWriter is non-seekable.
func (c *CountWriter) Seek(int64, int) (int64, error) {
	return 0, ErrNotSeekable
}

// Count returns the total number of bytes accepted so far.
func (c *CountWriter) Count() int64 { return c.n }

// Reset zeroes the accumulated count so the sink can be reused.
func (c *CountWriter) Reset() { c.n = 0 }

var _ io.Writer = (*CountWriter)(nil)
