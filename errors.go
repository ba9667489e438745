package marshalling

import "errors"

// Error categories: Disposed, Unsupported capability, Argument domain, I/O
// (propagated unmodified, not wrapped here), Cancellation, Decoder/encoder
// fault, and invariant violation by callback.
var (
	// ErrDisposed is returned by any operation attempted after the stream has
	// been disposed.
	ErrDisposed = errors.New("marshalling: stream is disposed")

	// ErrNotReadable indicates a read was attempted on a stream that cannot
	// currently read (disposed, underlying not readable, or a write processor
	// is registered).
	ErrNotReadable = errors.New("marshalling: stream is not readable")

	// ErrNotWritable indicates a write was attempted on a stream that cannot
	// currently write (disposed, underlying not writable, a read processor is
	// registered, or the backing is fixed).
	ErrNotWritable = errors.New("marshalling: stream is not writable")

	// ErrNotSeekable indicates a seek, set-length, or mode transition
	// requiring a seek was attempted on a stream that cannot currently seek.
	ErrNotSeekable = errors.New("marshalling: stream is not seekable")

	// ErrUnreadDrainImpossible indicates a read-to-write transition was
	// requested while unread prefetched bytes remain and the underlying
	// source cannot be seeked backward to drain them.
	ErrUnreadDrainImpossible = errors.New("marshalling: cannot drain unread buffered bytes on a non-seekable source")

	// ErrNegativeSize indicates a negative count was supplied where a
	// non-negative count was required.
	ErrNegativeSize = errors.New("marshalling: negative size")

	// ErrWindowTooLarge indicates min_window exceeded the stream's buffer
	// capacity.
	ErrWindowTooLarge = errors.New("marshalling: min_window exceeds buffer capacity")

	// ErrWindowTooSmall indicates min_window was less than 1.
	ErrWindowTooSmall = errors.New("marshalling: min_window must be at least 1")

	// ErrPatternTooLong indicates a Match pattern longer than the stream's
	// buffer capacity was probed against a source that cannot refill enough
	// to cover it in one pass.
	ErrPatternTooLong = errors.New("marshalling: match pattern exceeds buffer capacity")

	// ErrInvalidSeek indicates a seek was attempted to an invalid position.
	ErrInvalidSeek = errors.New("marshalling: seek to an invalid position")

	// ErrInvalidWhence indicates an unsupported whence was passed to Seek.
	ErrInvalidWhence = errors.New("marshalling: unsupported whence value")

	// ErrCancelled is returned by async operations when their context is
	// cancelled at a suspension point.
	ErrCancelled = errors.New("marshalling: operation cancelled")

	// ErrDecoderFault wraps a fault raised by a text decoder mid-operation.
	// After this error the stream's logical position is undefined within the
	// span of the failed operation.
	ErrDecoderFault = errors.New("marshalling: decoder fault")

	// ErrEncoderFault wraps a fault raised by a text encoder mid-operation.
	ErrEncoderFault = errors.New("marshalling: encoder fault")

	// ErrEncoderOverflowed indicates the per-pass encode budget reached zero
	// while repeatedly halving to recover from an encoder overflow fault.
	ErrEncoderOverflowed = errors.New("marshalling: encoder cannot make progress even at a single character per pass")

	// ErrBadSkip indicates a scan function returned a skip count outside
	// (0, view length] when it did not return 0 to signal a match.
	ErrBadSkip = errors.New("marshalling: scan function returned an invalid skip count")

	// ErrNoSuchCodeUnitSize indicates no null-terminator size in [1, 8] bytes
	// decodes to exactly one character, so the decoder passed to ReadString
	// cannot be used with null-terminator detection.
	ErrNoSuchCodeUnitSize = errors.New("marshalling: decoder has no discoverable null-terminator code unit size")

	// --- used by the typed codec layer and the sequential Reader/Writer
	// facade built on top of Stream ---

	// ErrNilIO indicates a constructor was called with a nil io.Reader/io.Writer.
	ErrNilIO = errors.New("marshalling: constructor called with a nil io.Reader/io.Writer")

	// ErrSizeTooSmall indicates a requested buffer size conflicts with the
	// minimum usable buffer size.
	ErrSizeTooSmall = errors.New("marshalling: buffer size smaller than minimum")

	// ErrAlreadyBuffered indicates a stream was constructed over an
	// already-buffered source, which would double-buffer unpredictably.
	ErrAlreadyBuffered = errors.New("marshalling: source or destination is already buffered")

	// ErrTruncatedData indicates a read operation could not complete because
	// the source ended before all expected bytes were read.
	ErrTruncatedData = errors.New("marshalling: truncated data")

	// ErrTrailingData is returned when non-zero bytes are found after the
	// expected end of a decoded structure.
	ErrTrailingData = errors.New("marshalling: non-zero trailing data found after decoding")

	// ErrDiscardNegative indicates a discard/skip was attempted with a
	// negative byte count.
	ErrDiscardNegative = errors.New("marshalling: cannot discard a negative number of bytes")
)
