package marshalling

import "fmt"

// Decoder is the incremental decode half of the text codec abstraction
// consumed by Stream.ReadString: state that persists across calls, a
// character-count probe, a decode-into-buffer operation, and a reset.
//
// CharCount and GetChars must agree: CharCount(src, flush) reports exactly
// how many runes GetChars(src, dst, flush) would produce for the same src
// and flush, without committing src to the decoder's running state twice —
// ReadString relies on this when it probes the null-terminator size with
// CharCount. Destination buffers are not sized in advance; ReadString grows
// them when GetChars returns *ErrDstTooSmall.
type Decoder interface {
	// MinCodeUnitSize returns the smallest byte span that can decode to a
	// single character in this encoding: 1 for ASCII/UTF-8, 2 for UTF-16, 4
	// for UTF-32.
	MinCodeUnitSize() int

	// CharCount reports how many characters src would decode to given the
	// decoder's current incremental state.
	CharCount(src []byte, flush bool) (int, error)

	// GetChars decodes src into dst, returning the number of characters
	// written. If dst is too small, it returns *ErrDstTooSmall with the
	// required length. If flush is true, the decoder also flushes any
	// pending internal state into dst.
	GetChars(src []byte, dst []rune, flush bool) (int, error)

	// Reset clears all incremental decode state.
	Reset()
}

// Encoder is the incremental encode half of the text codec abstraction
// consumed by Stream.WriteString (spec.md §4.1 Write-string, §6).
type Encoder interface {
	// MinCodeUnitSize returns the byte length of one code unit. WriteString
	// does not use it; it sizes the null terminator with ByteCount instead.
	MinCodeUnitSize() int

	// ByteCount reports how many bytes src would encode to.
	ByteCount(src []rune) (int, error)

	// GetBytes encodes src into dst, returning the number of bytes written.
	// If dst is too small, it returns *ErrDstTooSmall with the required
	// length. If flush is true, the encoder also flushes any pending
	// internal state into dst.
	GetBytes(src []rune, dst []byte, flush bool) (int, error)

	// Reset clears all incremental encode state.
	Reset()
}

// TextCodec is a text codec abstraction: a factory for a matched pair of
// incremental Decoder/Encoder. It offers no way to select a fallback policy;
// each implementation applies its own fixed handling of malformed input.
// Two concrete TextCodecs are provided:
// AsciiTextCodec (1-byte code units, via unicode/utf8) and the UTF-16
// family (2-byte code units, via golang.org/x/text/encoding/unicode).
type TextCodec interface {
	NewDecoder() Decoder
	NewEncoder() Encoder
}

// ErrDstTooSmall is returned by GetChars/GetBytes when the destination
// buffer cannot hold the decoded/encoded result. Required is the
// destination length (in runes for GetChars, bytes for GetBytes) that would
// have succeeded; callers regrow to at least this size and retry.
type ErrDstTooSmall struct {
	Required int
}

func (e *ErrDstTooSmall) Error() string {
	return fmt.Sprintf("marshalling: destination buffer too small, need at least %d", e.Required)
}
