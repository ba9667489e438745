package marshalling

import (
	"fmt"
	"io"

	"golang.org/x/exp/constraints"
)

// Ptr is a helper function to create a pointer to a value, making test
// setup cleaner.
func Ptr[T any](v T) *T { return &v }

// Roundup rounds n up to the nearest multiple of align. align must be a
// power of two; for other values the result is not a multiple of align.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }

// MAX_PADDING bounds how many trailing bytes CheckTrailingNotZeros will
// read before giving up; a well-formed payload should have none left.
const MAX_PADDING = 1024

// CheckBufferNotZeros verifies that every byte in data is zero. It is used
// by the typed record codec layer to catch a malformed or oversized payload
// when a fixed-size decode leaves unconsumed bytes in a source buffer.
func CheckBufferNotZeros(data []byte) error {
	for i, b := range data {
		if b != 0 {
			return fmt.Errorf("%w: found non-zero byte 0x%02x at offset %d", ErrTrailingData, b, i)
		}
	}
	return nil
}

// CheckTrailingNotZeros verifies that everything remaining in s is a zero
// byte, up to MAX_PADDING bytes. It is used by typed record codecs to catch
// a malformed or truncated payload after decoding the expected fields.
func CheckTrailingNotZeros(s *Stream) error {
	var buf [MAX_PADDING + 1]byte
	total := 0
	for total <= MAX_PADDING {
		n, err := s.Read(buf[total:])
		total += n
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		if n == 0 {
			break
		}
	}
	if total > MAX_PADDING {
		return fmt.Errorf("%w: exceeds maximum expected size of %d bytes", ErrTrailingData, MAX_PADDING)
	}
	for i, b := range buf[:total] {
		if b != 0 {
			return fmt.Errorf("%w: found non-zero byte 0x%02x at offset %d", ErrTrailingData, b, i)
		}
	}
	return nil
}
