package marshalling

import (
	"encoding/binary"
	"io"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sizeCache avoids the high performance cost of reflection in binary.Size on
// every call. A concurrent-safe map lets many Fixed[T] instances of the same
// Payload type across goroutines share one cached size.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// Fixed provides a generic Codec implementation for any struct Payload
// composed of fixed-size fields, eliminating boilerplate for simple data
// structures.
//
// Constraint: Payload MUST NOT contain variable-size fields like slices,
// maps, or strings, as this will cause binary.Size to fail.
type Fixed[Payload any] struct {
	Payload Payload
}

var _ Codec = (*Fixed[struct{}])(nil)

// Size returns the fixed size of the struct in bytes. The result is cached
// to avoid reflection overhead on subsequent calls.
func (c *Fixed[Payload]) Size() int {
	bodyType := reflect.TypeOf((*Payload)(nil)).Elem()

	if size, ok := sizeCache.Load(bodyType); ok {
		return size
	}

	size := binary.Size(&c.Payload)
	sizeCache.Store(bodyType, size)
	return size
}

// MarshalBinary implements encoding.BinaryMarshaler. It allocates a new
// byte slice; for performance-critical paths use MarshalTo or WriteTo
// instead.
func (c *Fixed[Payload]) MarshalBinary() ([]byte, error) {
	buf := make([]byte, c.Size())
	if _, err := binary.Encode(buf, BE.Order, &c.Payload); err != nil {
		return nil, io.ErrShortWrite
	}
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Data shorter than
// Size() fails with ErrTruncatedData; any trailing bytes are passed to
// CheckBufferNotZeros to catch an oversized payload.
func (c *Fixed[Payload]) UnmarshalBinary(data []byte) error {
	n, err := binary.Decode(data, BE.Order, &c.Payload)
	if err != nil {
		return ErrTruncatedData
	}
	if len(data) > n {
		if err := CheckBufferNotZeros(data[n:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrom implements Unmarshaler, decoding directly from a Stream.
func (c *Fixed[Payload]) ReadFrom(s *Stream) (int64, error) {
	if err := binary.Read(s, BE.Order, &c.Payload); err != nil {
		return 0, err
	}
	return int64(c.Size()), nil
}

// WriteTo implements Marshaler, encoding directly to a Stream.
func (c *Fixed[Payload]) WriteTo(s *Stream) (int64, error) {
	if err := binary.Write(s, BE.Order, &c.Payload); err != nil {
		return 0, err
	}
	return int64(c.Size()), nil
}

// MarshalTo marshals the struct into the provided slice p. This is the most
// performant marshalling option, as it avoids any allocation.
func (c *Fixed[Payload]) MarshalTo(p []byte) (int, error) {
	n, err := binary.Encode(p, BE.Order, &c.Payload)
	if err != nil {
		return n, io.ErrShortWrite
	}
	return n, nil
}
