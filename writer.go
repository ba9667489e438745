package marshalling

import "io"

// Zero is an io.Reader that reads an infinite stream of zero bytes, used by
// WriteZeros to pad without allocating a large temporary buffer.
var Zero io.Reader = zero{}

type zero struct{}

func (z zero) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// Writer is a sequential typed-value facade over a *Stream: it tracks the
// first error encountered and turns every subsequent call into a no-op,
// mirroring Reader's accumulator pattern.
type Writer struct {
	s     *Stream
	codec EndianCodec
	count int64
	err   error
}

// NewWriter wraps s for typed sequential writes using big-endian encoding.
func NewWriter(s *Stream) *Writer {
	return &Writer{s: s, codec: BE}
}

// WithByteOrder sets the codec used for multi-byte writes and returns w for
// chaining.
func (w *Writer) WithByteOrder(codec EndianCodec) *Writer {
	w.codec = codec
	return w
}

// Stream returns the underlying Stream.
func (w *Writer) Stream() *Stream { return w.s }

func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Count returns the total number of bytes written so far.
func (w *Writer) Count() int64 { return w.count }

// Err returns the first error encountered, if any.
func (w *Writer) Err() error { return w.err }

// Result flushes pending writes and returns the total count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Flush writes any staged bytes to the underlying source.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	err := w.s.FlushWrite()
	w.setError(err)
	return err
}

// Write implements io.Writer.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.s.Write(buf)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteByte implements io.ByteWriter.
func (w *Writer) WriteByte(v byte) error {
	if w.err != nil {
		return w.err
	}
	err := w.s.WriteByte(v)
	if err == nil {
		w.count++
	} else {
		w.setError(err)
	}
	return err
}

// WriteBytes writes a byte slice, ignoring a nil buf.
func (w *Writer) WriteBytes(buf []byte) {
	if buf == nil || w.err != nil {
		return
	}
	_, _ = w.Write(buf)
}

// WriteZeros writes n zero bytes, often for padding, without allocating a
// large temporary buffer for big padding.
func (w *Writer) WriteZeros(n int64) {
	if w.err != nil || n <= 0 {
		return
	}
	// count is already tallied by Write, which io.CopyN calls underneath.
	_, err := io.CopyN(w, Zero, n)
	w.setError(err)
}

// Align writes zero bytes until the write count is aligned to n.
func (w *Writer) Align(n int) {
	if n > 1 {
		w.WriteZeros(Roundup(w.count, int64(n)) - w.count)
	}
}

// String encodes text via encoder, optionally appending a null terminator.
func (w *Writer) String(encoder Encoder, text []rune, withNull bool) {
	if w.err != nil {
		return
	}
	n, err := w.s.WriteString(encoder, text, withNull)
	w.count += n
	w.setError(err)
}

// --- Primitive Write Operations ---

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

func (w *Writer) WriteUint8(v uint8) {
	w.WriteByte(v)
}

func (w *Writer) WriteInt8(v int8) {
	w.WriteByte(uint8(v))
}

func (w *Writer) WriteUint16(v uint16) {
	if w.err != nil {
		return
	}
	var buf [2]byte
	w.setError(w.codec.WriteUint16(v, buf[:]))
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	w.setError(w.codec.WriteUint32(v, buf[:]))
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteUint64(v uint64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	w.setError(w.codec.WriteUint64(v, buf[:]))
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteInt16(v int16) {
	if w.err != nil {
		return
	}
	var buf [2]byte
	w.setError(w.codec.WriteInt16(v, buf[:]))
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteInt32(v int32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	w.setError(w.codec.WriteInt32(v, buf[:]))
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteInt64(v int64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	w.setError(w.codec.WriteInt64(v, buf[:]))
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteFloat32(v float32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	w.setError(w.codec.WriteFloat32(v, buf[:]))
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteFloat64(v float64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	w.setError(w.codec.WriteFloat64(v, buf[:]))
	_, _ = w.Write(buf[:])
}

var _ io.Writer = (*Writer)(nil)
var _ io.ByteWriter = (*Writer)(nil)
