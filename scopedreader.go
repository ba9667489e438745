package marshalling

import "io"

// ScopedReader wraps a readable source and enforces a hard cap MaxReadable
// on the total number of bytes deliverable. Once the cap is reached, further
// reads return 0 without consulting the source. Built on io.LimitedReader,
// with a WriteTo fast path for callers that can use it.
type ScopedReader struct {
	r *io.LimitedReader
}

// NewScopedReader caps r to at most maxReadable bytes.
func NewScopedReader(r io.Reader, maxReadable int64) *ScopedReader {
	return &ScopedReader{r: &io.LimitedReader{R: r, N: maxReadable}}
}

// Read implements io.Reader. io.LimitedReader already returns (0, io.EOF)
// once its budget is exhausted without touching the wrapped reader, which is
// exactly the "return 0 without consulting the source" rule.
func (s *ScopedReader) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// Remaining reports how many more bytes this reader will deliver before it
// is permanently exhausted.
func (s *ScopedReader) Remaining() int64 { return s.r.N }

// Close closes the underlying reader if it implements io.Closer.
func (s *ScopedReader) Close() error {
	if c, ok := s.r.R.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// WriteTo implements io.WriterTo, providing a copy fast path that still
// respects the remaining budget.
func (s *ScopedReader) WriteTo(w io.Writer) (int64, error) {
	if rf, ok := w.(io.ReaderFrom); ok {
		return rf.ReadFrom(s.r)
	}

	buf := bufPool.Get().(*[]byte)
	defer bufPool.Put(buf)

	var n int64
	for {
		read, er := s.r.Read(*buf)
		if read > 0 {
			written, ew := w.Write((*buf)[:read])
			n += int64(written)
			if ew != nil {
				return n, ew
			}
			if written != read {
				return n, io.ErrShortWrite
			}
		}
		if er != nil {
			if er == io.EOF {
				return n, nil
			}
			return n, er
		}
	}
}

var _ io.Reader = (*ScopedReader)(nil)
