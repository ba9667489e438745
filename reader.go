package marshalling

import "io"

// Reader is a sequential typed-value facade over a *Stream: it tracks the
// first error encountered and turns every subsequent call into a no-op,
// delegating the actual buffering/backing-mode logic to Stream.
type Reader struct {
	s     *Stream
	codec EndianCodec
	count int64
	err   error
}

// NewReader wraps s for typed sequential reads using big-endian encoding.
func NewReader(s *Stream) *Reader {
	return &Reader{s: s, codec: BE}
}

// WithByteOrder sets the codec used for multi-byte reads and returns r for
// chaining.
func (r *Reader) WithByteOrder(codec EndianCodec) *Reader {
	r.codec = codec
	return r
}

// Stream returns the underlying Stream.
func (r *Reader) Stream() *Stream { return r.s }

func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Count returns the total number of bytes read so far.
func (r *Reader) Count() int64 { return r.count }

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// IsEOF reports whether the first recorded error was io.EOF.
func (r *Reader) IsEOF() bool { return r.err == io.EOF }

// Result returns the total bytes read and the final error state.
func (r *Reader) Result() (int64, error) {
	return r.count, r.err
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.s.Read(p)
	r.count += int64(n)
	r.setError(err)
	return n, r.err
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.s.ReadByte()
	if err == nil {
		r.count++
	} else {
		r.setError(err)
	}
	return b, err
}

// readFull reads exactly n bytes. A value cut short after at least one byte
// already fails with io.ErrUnexpectedEOF from io.ReadFull; an io.EOF before
// any byte of the value is escalated to io.ErrUnexpectedEOF as well.
func (r *Reader) readFull(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.s, buf); err != nil {
		if err == io.EOF {
			r.err = io.ErrUnexpectedEOF
		} else {
			r.err = err
		}
		return nil
	}
	r.count += int64(n)
	return buf
}

// ReadBytes reads n bytes and returns a new byte slice.
func (r *Reader) ReadBytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	return r.readFull(n)
}

// ReadBytesTo fills dest completely.
func (r *Reader) ReadBytesTo(dest []byte) {
	if r.err != nil || len(dest) == 0 {
		return
	}
	n, err := io.ReadFull(r.s, dest)
	r.count += int64(n)
	r.setError(err)
}

// Align discards bytes until the read count is aligned to n.
func (r *Reader) Align(n int) {
	if r.err != nil || n <= 1 {
		return
	}
	skip := Roundup(r.count, int64(n)) - r.count
	nn, err := r.s.Skip(skip)
	r.count += nn
	r.setError(err)
}

// String reads a null-terminated string via decoder, stopping at the first
// confirmed terminator (NullStop). It escalates EOF-before-terminator into
// io.ErrUnexpectedEOF.
func (r *Reader) String(decoder Decoder, maxBytes int64) string {
	if r.err != nil {
		return ""
	}
	value, n, stopped, eof, err := r.s.ReadString(decoder, maxBytes, NullStop)
	r.count += n
	if err != nil {
		r.setError(err)
		return value
	}
	if eof && !stopped {
		r.setError(io.ErrUnexpectedEOF)
	}
	return value
}

// --- Primitive Read Operations ---

func (r *Reader) ReadBool(dest *bool) {
	b, err := r.ReadByte()
	if err == nil {
		*dest = b != 0
	}
}

func (r *Reader) ReadUint8(dest *uint8) {
	b, err := r.ReadByte()
	if err == nil {
		*dest = b
	}
}

func (r *Reader) ReadInt8(dest *int8) {
	b, err := r.ReadByte()
	if err == nil {
		*dest = int8(b)
	}
}

func (r *Reader) ReadUint16(dest *uint16) {
	buf := r.readFull(2)
	if r.err == nil {
		v, err := r.codec.ReadUint16(buf)
		r.setError(err)
		*dest = v
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	buf := r.readFull(4)
	if r.err == nil {
		v, err := r.codec.ReadUint32(buf)
		r.setError(err)
		*dest = v
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	buf := r.readFull(8)
	if r.err == nil {
		v, err := r.codec.ReadUint64(buf)
		r.setError(err)
		*dest = v
	}
}

func (r *Reader) ReadInt16(dest *int16) {
	buf := r.readFull(2)
	if r.err == nil {
		v, err := r.codec.ReadInt16(buf)
		r.setError(err)
		*dest = v
	}
}

func (r *Reader) ReadInt32(dest *int32) {
	buf := r.readFull(4)
	if r.err == nil {
		v, err := r.codec.ReadInt32(buf)
		r.setError(err)
		*dest = v
	}
}

func (r *Reader) ReadInt64(dest *int64) {
	buf := r.readFull(8)
	if r.err == nil {
		v, err := r.codec.ReadInt64(buf)
		r.setError(err)
		*dest = v
	}
}

func (r *Reader) ReadFloat32(dest *float32) {
	buf := r.readFull(4)
	if r.err == nil {
		v, err := r.codec.ReadFloat32(buf)
		r.setError(err)
		*dest = v
	}
}

func (r *Reader) ReadFloat64(dest *float64) {
	buf := r.readFull(8)
	if r.err == nil {
		v, err := r.codec.ReadFloat64(buf)
		r.setError(err)
		*dest = v
	}
}

var _ io.Reader = (*Reader)(nil)
var _ io.ByteReader = (*Reader)(nil)
