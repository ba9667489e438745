package marshalling

import (
	"bytes"
	"encoding"
	"fmt"
	"io"
)

// MarshalBinaryGeneric provides a generic encoding.BinaryMarshaler
// implementation for any Stream-based Marshaler, by writing to a Stream
// wrapping an in-memory buffer.
func MarshalBinaryGeneric[T interface {
	Size() int
	WriteTo(s *Stream) (int64, error)
}](v T) ([]byte, error) {
	expectedSize := v.Size()
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	s, err := NewStream(buf, false)
	if err != nil {
		return nil, err
	}
	n, err := v.WriteTo(s)
	if err != nil {
		return nil, err
	}
	if err := s.Flush(); err != nil {
		return nil, err
	}
	if n < int64(expectedSize) {
		return nil, fmt.Errorf("%w: expected at least %d bytes, but wrote %d", ErrTruncatedData, expectedSize, n)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// UnmarshalBinaryGeneric provides a generic UnmarshalBinary for types
// implementing a Stream-based ReadFrom. It adapts the Stream-based ReadFrom
// to the slice-based UnmarshalBinary interface and checks for unexpected
// trailing data.
func UnmarshalBinaryGeneric[T interface {
	ReadFrom(s *Stream) (int64, error)
	Size() int
}](v T, data []byte) error {
	s := NewFixedStream(data)
	n, err := v.ReadFrom(s)
	if err != nil {
		return err
	}
	expectedSize := v.Size()

	if n < int64(expectedSize) {
		return fmt.Errorf("%w: expected at least %d bytes, but read %d", ErrTruncatedData, expectedSize, n)
	}

	if len(data) > int(n) {
		if err := CheckBufferNotZeros(data[n:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadFromGeneric provides a generic, non-streaming io.ReaderFrom
// implementation. It is NOT streaming: it reads the entire io.Reader into a
// memory buffer before unmarshalling, so it is unsuitable for very large
// inputs.
func ReadFromGeneric[T encoding.BinaryUnmarshaler](v T, r io.Reader) (int64, error) {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	n, err := buf.ReadFrom(r)
	if err != nil {
		return n, err
	}
	return n, v.UnmarshalBinary(buf.Bytes())
}

// WriteToGeneric provides a generic io.WriterTo implementation. It adapts a
// type that can marshal to a byte slice to the streaming io.Writer
// interface.
func WriteToGeneric[T encoding.BinaryMarshaler](v T, w io.Writer) (int64, error) {
	buf, err := v.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	if err != nil {
		return int64(n), err
	}
	if n < len(buf) {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

// MarshalToGeneric provides a fallback implementation for the MarshalTo
// method, backed by a Stream wrapping the destination slice.
func MarshalToGeneric[T interface {
	Size() int
	WriteTo(s *Stream) (int64, error)
}](v T, p []byte) (int, error) {
	size := v.Size()
	if len(p) < size {
		return 0, io.ErrShortWrite
	}
	buf := bytes.NewBuffer(p[:0])
	s, err := NewStream(buf, false)
	if err != nil {
		return 0, err
	}
	n, err := v.WriteTo(s)
	if err != nil {
		return int(n), err
	}
	if err := s.Flush(); err != nil {
		return int(n), err
	}
	if n < int64(size) {
		return int(n), io.ErrShortWrite
	}
	return int(n), nil
}
