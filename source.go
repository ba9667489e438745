package marshalling

import (
	"bufio"
	"io"
)

// source wraps whatever underlying byte source a Stream was constructed
// over and snapshots which of Read/Write/Seek/Close it actually supports:
// a capability set {Read, Write, Seek, Close} carried by an interface,
// with runtime flags snapshotted once at construction. Any value is
// accepted and probed via type assertion rather than adapted per concrete
// stdlib type, since Stream does its own buffering.
type source struct {
	reader io.Reader
	writer io.Writer
	seeker io.Seeker
	closer io.Closer
}

func newSource(v any) (*source, error) {
	if v == nil {
		return nil, ErrNilIO
	}
	switch v.(type) {
	case *bufio.Reader, *bufio.Writer, *Stream:
		// Wrapping an already-buffered source would double-buffer
		// unpredictably.
		return nil, ErrAlreadyBuffered
	}

	s := &source{}
	s.reader, _ = v.(io.Reader)
	s.writer, _ = v.(io.Writer)
	s.seeker, _ = v.(io.Seeker)
	s.closer, _ = v.(io.Closer)
	return s, nil
}

func (s *source) canRead() bool  { return s.reader != nil }
func (s *source) canWrite() bool { return s.writer != nil }
func (s *source) canSeek() bool  { return s.seeker != nil }

func (s *source) Read(p []byte) (int, error) {
	if s.reader == nil {
		return 0, ErrNotReadable
	}
	return s.reader.Read(p)
}

func (s *source) Write(p []byte) (int, error) {
	if s.writer == nil {
		return 0, ErrNotWritable
	}
	return s.writer.Write(p)
}

func (s *source) Seek(offset int64, whence int) (int64, error) {
	if s.seeker == nil {
		return 0, ErrNotSeekable
	}
	return s.seeker.Seek(offset, whence)
}

func (s *source) Position() (int64, error) {
	return s.Seek(0, io.SeekCurrent)
}

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *source) SetLength(n int64) error {
	type truncater interface {
		Truncate(int64) error
	}
	if t, ok := s.seeker.(truncater); ok {
		return t.Truncate(n)
	}
	return ErrNotSeekable
}
