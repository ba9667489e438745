package marshalling

import "encoding"

// Sizer is an interface for types that can report their binary size. This is
// useful for pre-allocating buffers before encoding.
type Sizer interface {
	// Size returns the size of the type in bytes when binary encoded.
	Size() int
}

// Marshaler defines the core methods for encoding a value into a byte
// stream. It integrates the standard library's encoding.BinaryMarshaler
// with a Stream-based writer for efficient, allocation-free encoding.
type Marshaler interface {
	// encoding.BinaryMarshaler provides the primary encoding method. It
	// allocates and returns a new byte slice.
	encoding.BinaryMarshaler

	// WriteTo writes the encoded value to s.
	WriteTo(s *Stream) (int64, error)

	// MarshalTo is a zero-allocation encoding method. It encodes the value
	// into a pre-allocated buffer, returning an error (e.g. io.ErrShortBuffer)
	// if the buffer is too small.
	MarshalTo(buf []byte) (int, error)
}

// Unmarshaler defines the core methods for decoding a byte stream into a
// value.
type Unmarshaler interface {
	// encoding.BinaryUnmarshaler decodes data from a byte slice.
	encoding.BinaryUnmarshaler

	// ReadFrom decodes a value from s.
	ReadFrom(s *Stream) (int64, error)
}

// Codec aggregates all binary serialization and deserialization interfaces.
// A type implementing Codec is a complete, self-sizing binary encoder and
// decoder built on Stream.
type Codec interface {
	Sizer
	Marshaler
	Unmarshaler
}
