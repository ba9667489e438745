// Package marshalling provides low-level primitives for marshalling binary
// data between in-memory values and byte streams: an endian-aware numeric
// codec (EndianCodec), a buffered marshalling Stream that exposes its read
// buffer for zero-copy parsing, and encoding-aware text read/write with
// null-terminator semantics.
package marshalling

import (
	"context"
	"fmt"
	"io"
)

// DefaultBufferSize is used when a source-backed Stream is constructed with
// a zero buffer size.
const DefaultBufferSize = 16384

// Stream is the buffered marshalling stream of spec.md §3/§4.1: a stream
// wrapper that maintains a shared read/write buffer, supports bidirectional
// read<->write transitions atop a possibly non-seekable underlying source,
// exposes the live buffer for in-place scanning (Match/Scan), and supports
// two backing modes: source-backed (an external byte source) or fixed (an
// immutable byte view).
//
// At any instant exactly one of three modes holds (spec.md §3):
//   - idle:         bufLen == 0 && readOff == 0
//   - read-staged:  !dirtyWrite, buf[readOff:bufLen] are prefetched bytes
//   - write-staged: dirtyWrite, readOff == 0, buf[:bufLen] are unpersisted
//     bytes logically written after the underlying source's position
//
// Stream is not safe for concurrent use by multiple goroutines, matching
// spec.md §5's single-threaded cooperative scheduling model.
type Stream struct {
	src        *source
	ownBacking bool

	fixed    []byte
	fixedPos int64

	buf        []byte
	bufLen     int
	readOff    int
	dirtyWrite bool

	readProcs  processorSet
	writeProcs processorSet

	disposed bool

	// ctx, when non-nil, is checked at the suspension points spec.md §5
	// names (before an underlying read, before an underlying write, between
	// scan-loop iterations, between string-read passes, before each
	// char-encoder pass). It is set for the duration of a *Context entry
	// point call by withContext and cleared afterward; Stream itself never
	// spawns goroutines, so this is plain cooperative cancellation, not
	// parallelism.
	ctx context.Context
}

// NewStream constructs a source-backed Stream with the default buffer
// capacity (16384 bytes). ownBacking controls whether Close disposes of v.
func NewStream(v any, ownBacking bool) (*Stream, error) {
	return NewStreamSize(v, 0, ownBacking)
}

// NewStreamSize constructs a source-backed Stream with the given buffer
// capacity; zero means DefaultBufferSize. Capability flags (CanRead/
// CanWrite/CanSeek) are snapshotted from v at construction time.
func NewStreamSize(v any, size int, ownBacking bool) (*Stream, error) {
	if size < 0 {
		return nil, ErrNegativeSize
	}
	if size == 0 {
		size = DefaultBufferSize
	}
	src, err := newSource(v)
	if err != nil {
		return nil, err
	}
	return &Stream{
		src:        src,
		ownBacking: ownBacking,
		buf:        make([]byte, size),
	}, nil
}

// NewFixedStream wraps an immutable byte view. CanRead and CanSeek are true;
// CanWrite is always false. The stream never writes to data.
func NewFixedStream(data []byte) *Stream {
	if data == nil {
		// A nil view would be indistinguishable from source mode.
		data = []byte{}
	}
	return &Stream{fixed: data}
}

// BufferCapacity returns the internal buffer's fixed capacity, or 0 in fixed
// mode (fixed mode has no staging buffer).
func (s *Stream) BufferCapacity() int {
	return len(s.buf)
}

// IsDisposed reports whether Close/Dispose has run.
func (s *Stream) IsDisposed() bool { return s.disposed }

func (s *Stream) checkDisposed() error {
	if s.disposed {
		return ErrDisposed
	}
	return nil
}

// --- capability flags (spec.md §4.1) ---

// CanRead reports whether Read/Skip/Match/Scan/ReadString can currently
// succeed: not disposed, the backing is readable, and no write processor is
// registered (a write processor establishes a one-shot observation contract
// that a concurrent read direction would violate).
func (s *Stream) CanRead() bool {
	if s.disposed {
		return false
	}
	if s.fixed != nil {
		return s.writeProcs.len() == 0
	}
	return s.src.canRead() && s.writeProcs.len() == 0
}

// CanWrite reports whether Write/WriteString can currently succeed.
func (s *Stream) CanWrite() bool {
	if s.disposed {
		return false
	}
	if s.fixed != nil {
		return false
	}
	return s.src.canWrite() && s.readProcs.len() == 0
}

// CanSeek reports whether Seek/SetLength can currently succeed.
func (s *Stream) CanSeek() bool {
	if s.disposed {
		return false
	}
	if s.fixed != nil {
		return true
	}
	return s.src.canSeek() && s.readProcs.len() == 0 && s.writeProcs.len() == 0
}

// Position returns the current logical position, per the identities in
// spec.md §3. In source mode it requires a seekable underlying source
// (position is only meaningfully queryable when the underlying source has a
// stable single-position cursor); registered processors do not affect it.
func (s *Stream) Position() (int64, error) {
	if err := s.checkDisposed(); err != nil {
		return 0, err
	}
	if s.fixed != nil {
		return s.fixedPos, nil
	}
	if !s.src.canSeek() {
		return 0, ErrNotSeekable
	}
	u, err := s.src.Position()
	if err != nil {
		return 0, err
	}
	if s.dirtyWrite {
		return u + int64(s.bufLen), nil
	}
	return u - int64(s.bufLen) + int64(s.readOff), nil
}

// --- context plumbing (spec.md §5 suspension points) ---

func (s *Stream) withContext(ctx context.Context, fn func() error) error {
	prev := s.ctx
	s.ctx = ctx
	err := fn()
	s.ctx = prev
	return err
}

func (s *Stream) checkCancel() error {
	if s.ctx == nil {
		return nil
	}
	select {
	case <-s.ctx.Done():
		return fmt.Errorf("%w: %v", ErrCancelled, s.ctx.Err())
	default:
		return nil
	}
}

// --- low-level buffer plumbing (source mode only) ---

// compact shifts any unread bytes down to offset 0.
func (s *Stream) compact() {
	if s.readOff == 0 {
		return
	}
	remaining := s.bufLen - s.readOff
	if remaining > 0 {
		copy(s.buf[:remaining], s.buf[s.readOff:s.bufLen])
	}
	s.bufLen = remaining
	s.readOff = 0
}

// fillOnce issues exactly one underlying Read into the buffer's free tail.
func (s *Stream) fillOnce() (int, error) {
	if s.bufLen >= len(s.buf) {
		return 0, nil
	}
	if err := s.checkCancel(); err != nil {
		return 0, err
	}
	n, err := s.src.Read(s.buf[s.bufLen:])
	if n < 0 {
		return 0, ErrNegativeSize
	}
	s.bufLen += n
	if err != nil {
		if err == io.EOF {
			return n, nil
		}
		return n, err
	}
	return n, nil
}

func (s *Stream) writeAllToUnderlying(p []byte) error {
	for len(p) > 0 {
		if err := s.checkCancel(); err != nil {
			return err
		}
		n, err := s.src.Write(p)
		if n > 0 {
			p = p[n:]
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}

// --- Read / EnsureBuffered ---

// Read implements io.Reader. Partial reads are intentional: the caller
// receives what the buffer already holds plus at most one refill
// (spec.md §4.1 Read).
func (s *Stream) Read(dst []byte) (int, error) {
	if err := s.checkDisposed(); err != nil {
		return 0, err
	}
	if !s.CanRead() {
		return 0, ErrNotReadable
	}
	if s.fixed != nil {
		return s.readFixed(dst)
	}
	if s.dirtyWrite {
		if err := s.FlushWrite(); err != nil {
			return 0, err
		}
	}
	if len(dst) == 0 {
		return 0, nil
	}
	if s.bufLen-s.readOff == 0 {
		s.compact()
		n, err := s.fillOnce()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
	}
	avail := s.bufLen - s.readOff
	n := len(dst)
	if n > avail {
		n = avail
	}
	if err := s.readProcs.deliver(s.buf[s.readOff : s.readOff+n]); err != nil {
		return 0, err
	}
	copy(dst, s.buf[s.readOff:s.readOff+n])
	s.readOff += n
	return n, nil
}

// ReadContext is Read with ctx checked at the suspension point before the
// underlying read.
func (s *Stream) ReadContext(ctx context.Context, dst []byte) (int, error) {
	var n int
	err := s.withContext(ctx, func() error {
		var e error
		n, e = s.Read(dst)
		return e
	})
	return n, err
}

func (s *Stream) readFixed(dst []byte) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.fixedPos >= int64(len(s.fixed)) {
		return 0, io.EOF
	}
	n := copy(dst, s.fixed[s.fixedPos:])
	if err := s.readProcs.deliver(dst[:n]); err != nil {
		return 0, err
	}
	s.fixedPos += int64(n)
	return n, nil
}

// ReadByte implements io.ByteReader.
func (s *Stream) ReadByte() (byte, error) {
	var b [1]byte
	n, err := s.Read(b[:])
	if n == 1 {
		return b[0], nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

// EnsureBuffered guarantees that after the call either at least n bytes are
// readable without touching the underlying source, or the source is
// permanently exhausted (returns false). n must be <= BufferCapacity() in
// source mode. If write-staged, flushes writes first (spec.md §4.1
// Ensure-buffered).
func (s *Stream) EnsureBuffered(n int) (bool, error) {
	if err := s.checkDisposed(); err != nil {
		return false, err
	}
	if n < 0 {
		return false, ErrNegativeSize
	}
	if s.fixed != nil {
		return int64(len(s.fixed))-s.fixedPos >= int64(n), nil
	}
	if n > len(s.buf) {
		return false, ErrWindowTooLarge
	}
	if !s.CanRead() {
		return false, ErrNotReadable
	}
	if s.dirtyWrite {
		if err := s.FlushWrite(); err != nil {
			return false, err
		}
	}
	if n == 0 {
		return true, nil
	}
	if s.bufLen-s.readOff >= n {
		return true, nil
	}
	s.compact()
	for s.bufLen < n {
		read, err := s.fillOnce()
		if err != nil {
			return false, err
		}
		if read == 0 {
			return false, nil
		}
	}
	return true, nil
}

// readableWindow returns the current zero-copy readable window, used by
// Scan and ReadString to operate directly on the live buffer.
func (s *Stream) readableWindow() []byte {
	if s.fixed != nil {
		return s.fixed[s.fixedPos:]
	}
	return s.buf[s.readOff:s.bufLen]
}

// --- Write ---

// Write implements io.Writer. Switching to write-staged requires flushing
// any read-staged prefetch first (spec.md §4.1 Write).
func (s *Stream) Write(src []byte) (int, error) {
	if err := s.checkDisposed(); err != nil {
		return 0, err
	}
	if s.fixed != nil {
		return 0, ErrNotWritable
	}
	if !s.CanWrite() {
		return 0, ErrNotWritable
	}
	if !s.dirtyWrite {
		if err := s.transitionToWrite(); err != nil {
			return 0, err
		}
	}
	if len(src) == 0 {
		return 0, nil
	}
	if err := s.writeProcs.deliver(src); err != nil {
		return 0, err
	}

	capacity := len(s.buf)
	total := 0
	for len(src) > 0 {
		if s.bufLen > 0 || len(src) < capacity {
			n := copy(s.buf[s.bufLen:], src)
			s.bufLen += n
			src = src[n:]
			total += n
			if s.bufLen == capacity {
				if err := s.FlushWrite(); err != nil {
					return total, err
				}
			}
			continue
		}
		// buffer empty and remaining src >= capacity: bypass the buffer.
		if err := s.checkCancel(); err != nil {
			return total, err
		}
		n, err := s.src.Write(src)
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
		src = src[n:]
	}
	return total, nil
}

// WriteContext is Write with ctx checked at each suspension point before an
// underlying write.
func (s *Stream) WriteContext(ctx context.Context, src []byte) (int, error) {
	var n int
	err := s.withContext(ctx, func() error {
		var e error
		n, e = s.Write(src)
		return e
	})
	return n, err
}

// WriteByte implements io.ByteWriter.
func (s *Stream) WriteByte(b byte) error {
	_, err := s.Write([]byte{b})
	return err
}

// transitionToWrite fully drains any unread prefetched bytes before
// entering write-staged mode, per spec.md §3's transition rule.
func (s *Stream) transitionToWrite() error {
	unread := s.bufLen - s.readOff
	if unread > 0 {
		if !s.src.canSeek() {
			return ErrUnreadDrainImpossible
		}
		if _, err := s.src.Seek(-int64(unread), io.SeekCurrent); err != nil {
			return err
		}
	}
	s.bufLen = 0
	s.readOff = 0
	s.dirtyWrite = true
	return nil
}

// --- Flush ---

// FlushRead rewinds the underlying source by the unread count (requires
// seekable) and resets the buffer. A no-op in fixed mode or when already
// write-staged.
func (s *Stream) FlushRead() error {
	if s.fixed != nil || s.dirtyWrite {
		return nil
	}
	unread := s.bufLen - s.readOff
	if unread > 0 {
		if !s.src.canSeek() {
			return ErrNotSeekable
		}
		if _, err := s.src.Seek(-int64(unread), io.SeekCurrent); err != nil {
			return err
		}
	}
	s.bufLen = 0
	s.readOff = 0
	return nil
}

// FlushWrite writes any staged bytes to the underlying source. A no-op in
// fixed mode or when not write-staged.
func (s *Stream) FlushWrite() error {
	if s.fixed != nil || !s.dirtyWrite {
		return nil
	}
	if s.bufLen > 0 {
		if err := s.writeAllToUnderlying(s.buf[:s.bufLen]); err != nil {
			return err
		}
	}
	s.bufLen = 0
	s.dirtyWrite = false
	return nil
}

// Flush does both FlushRead and FlushWrite (at least one of them is always a
// no-op, per the mode invariant; in idle mode both are).
func (s *Stream) Flush() error {
	if err := s.FlushRead(); err != nil {
		return err
	}
	return s.FlushWrite()
}

// --- Seek / SetLength ---

// Seek implements io.Seeker. When the target lies within the currently
// buffered window, only readOff moves (O(1) seek through prefetch);
// otherwise the underlying source is seeked and the buffer invalidated
// (spec.md §4.1 Seek).
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if err := s.checkDisposed(); err != nil {
		return 0, err
	}
	if s.fixed != nil {
		return s.seekFixed(offset, whence)
	}
	if !s.CanSeek() {
		return 0, ErrNotSeekable
	}

	pos, err := s.Position()
	if err != nil {
		return 0, err
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = pos + offset
	case io.SeekEnd:
		if err := s.Flush(); err != nil {
			return 0, err
		}
		end, err := s.src.Seek(offset, io.SeekEnd)
		if err != nil {
			return 0, err
		}
		s.bufLen, s.readOff = 0, 0
		return end, nil
	default:
		return 0, ErrInvalidWhence
	}
	if target < 0 {
		return 0, ErrInvalidSeek
	}

	if !s.dirtyWrite {
		winStart := pos - int64(s.readOff)
		winEnd := pos + int64(s.bufLen-s.readOff)
		if target >= winStart && target <= winEnd {
			s.readOff = int(target - winStart)
			return target, nil
		}
	}

	if err := s.Flush(); err != nil {
		return 0, err
	}
	newPos, err := s.src.Seek(target, io.SeekStart)
	if err != nil {
		return 0, err
	}
	s.bufLen, s.readOff = 0, 0
	return newPos, nil
}

func (s *Stream) seekFixed(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.fixedPos + offset
	case io.SeekEnd:
		target = int64(len(s.fixed)) + offset
	default:
		return 0, ErrInvalidWhence
	}
	if target < 0 {
		return 0, ErrInvalidSeek
	}
	// Fixed mode allows seeking past end; reading there simply yields 0
	// bytes (spec.md §3 Fixed-mode invariant).
	s.fixedPos = target
	return target, nil
}

// SetLength requires seekable and writable; it flushes, then delegates to
// the underlying source.
func (s *Stream) SetLength(n int64) error {
	if err := s.checkDisposed(); err != nil {
		return err
	}
	if s.fixed != nil {
		return ErrNotWritable
	}
	if !s.CanSeek() || !s.CanWrite() {
		return ErrNotSeekable
	}
	if err := s.Flush(); err != nil {
		return err
	}
	return s.src.SetLength(n)
}

// --- CopyTo / Skip ---

// CopyTo drains prefetched bytes to dst (delivering them to read
// processors), then repeatedly reads the underlying source into a scratch
// buffer (at least minScratch bytes or the internal capacity) and writes to
// dst, delivering each chunk to read processors. It bypasses re-buffering
// (spec.md §4.1 Copy-to).
func (s *Stream) CopyTo(dst io.Writer, minScratch int) (int64, error) {
	if err := s.checkDisposed(); err != nil {
		return 0, err
	}
	if !s.CanRead() {
		return 0, ErrNotReadable
	}

	var total int64
	if s.fixed != nil {
		if s.fixedPos < int64(len(s.fixed)) {
			b := s.fixed[s.fixedPos:]
			if err := s.readProcs.deliver(b); err != nil {
				return total, err
			}
			n, err := dst.Write(b)
			total += int64(n)
			s.fixedPos += int64(n)
			if err != nil {
				return total, err
			}
			if n < len(b) {
				return total, io.ErrShortWrite
			}
		}
		return total, nil
	}

	if s.dirtyWrite {
		if err := s.FlushWrite(); err != nil {
			return total, err
		}
	}

	if avail := s.bufLen - s.readOff; avail > 0 {
		b := s.buf[s.readOff:s.bufLen]
		if err := s.readProcs.deliver(b); err != nil {
			return total, err
		}
		n, err := dst.Write(b)
		total += int64(n)
		s.readOff += n
		if err != nil {
			return total, err
		}
		if n < len(b) {
			return total, io.ErrShortWrite
		}
	}

	size := CHUNK_SIZE
	if minScratch > size {
		size = minScratch
	}
	if cap := len(s.buf); cap > size {
		size = cap
	}
	scratchPtr := getScratchBuf(size)
	defer putScratchBuf(scratchPtr)
	scratch := *scratchPtr

	for {
		if err := s.checkCancel(); err != nil {
			return total, err
		}
		n, err := s.src.Read(scratch)
		if n > 0 {
			if derr := s.readProcs.deliver(scratch[:n]); derr != nil {
				return total, derr
			}
			wn, werr := dst.Write(scratch[:n])
			total += int64(wn)
			if werr != nil {
				return total, werr
			}
			if wn < n {
				return total, io.ErrShortWrite
			}
		}
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
	}
}

// CopyToContext is CopyTo with ctx checked before each underlying read.
func (s *Stream) CopyToContext(ctx context.Context, dst io.Writer, minScratch int) (int64, error) {
	var n int64
	err := s.withContext(ctx, func() error {
		var e error
		n, e = s.CopyTo(dst, minScratch)
		return e
	})
	return n, err
}

// Skip reads and discards up to n bytes (or until EOF), delivering the
// skipped bytes to read processors in order. Returns the actual number
// skipped (spec.md §4.1 Skip).
func (s *Stream) Skip(n int64) (int64, error) {
	if err := s.checkDisposed(); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ErrDiscardNegative
	}
	if !s.CanRead() {
		return 0, ErrNotReadable
	}
	if s.fixed != nil {
		avail := int64(len(s.fixed)) - s.fixedPos
		if n > avail {
			n = avail
		}
		if n > 0 {
			if err := s.readProcs.deliver(s.fixed[s.fixedPos : s.fixedPos+n]); err != nil {
				return 0, err
			}
			s.fixedPos += n
		}
		return n, nil
	}
	if s.dirtyWrite {
		if err := s.FlushWrite(); err != nil {
			return 0, err
		}
	}
	var total int64
	for total < n {
		avail := int64(s.bufLen - s.readOff)
		if avail > 0 {
			take := n - total
			if take > avail {
				take = avail
			}
			if err := s.readProcs.deliver(s.buf[s.readOff : s.readOff+int(take)]); err != nil {
				return total, err
			}
			s.readOff += int(take)
			total += take
			continue
		}
		s.compact()
		read, err := s.fillOnce()
		if err != nil {
			return total, err
		}
		if read == 0 {
			break
		}
	}
	return total, nil
}

// --- Match ---

// Match scans pattern byte-by-byte against the buffered window, refilling
// as needed. On mismatch, the position advances only by the bytes already
// compared and consumed from the buffer; on match, it advances by the full
// pattern length. An empty pattern trivially matches with 0 bytes consumed
// (spec.md §4.1 Match).
func (s *Stream) Match(pattern []byte) (bool, int64, error) {
	if err := s.checkDisposed(); err != nil {
		return false, 0, err
	}
	if len(pattern) == 0 {
		return true, 0, nil
	}
	if !s.CanRead() {
		return false, 0, ErrNotReadable
	}
	if s.fixed != nil {
		return s.matchFixed(pattern)
	}
	if s.dirtyWrite {
		if err := s.FlushWrite(); err != nil {
			return false, 0, err
		}
	}

	var consumed int64
	for i := 0; i < len(pattern); i++ {
		if s.bufLen-s.readOff == 0 {
			s.compact()
			read, err := s.fillOnce()
			if err != nil {
				return false, consumed, err
			}
			if read == 0 {
				return false, consumed, nil
			}
		}
		b := s.buf[s.readOff]
		if err := s.readProcs.deliver(s.buf[s.readOff : s.readOff+1]); err != nil {
			return false, consumed, err
		}
		s.readOff++
		consumed++
		if b != pattern[i] {
			return false, consumed, nil
		}
	}
	return true, consumed, nil
}

func (s *Stream) matchFixed(pattern []byte) (bool, int64, error) {
	avail := int64(len(s.fixed)) - s.fixedPos
	n := int64(len(pattern))
	limit := n
	if avail < limit {
		limit = avail
	}
	for i := int64(0); i < limit; i++ {
		if s.fixed[s.fixedPos+i] != pattern[i] {
			consumed := i + 1
			if err := s.readProcs.deliver(s.fixed[s.fixedPos : s.fixedPos+consumed]); err != nil {
				return false, 0, err
			}
			s.fixedPos += consumed
			return false, consumed, nil
		}
	}
	if limit < n {
		// Ran out of data before the whole pattern could be compared.
		if err := s.readProcs.deliver(s.fixed[s.fixedPos : s.fixedPos+limit]); err != nil {
			return false, 0, err
		}
		s.fixedPos += limit
		return false, limit, nil
	}
	if err := s.readProcs.deliver(s.fixed[s.fixedPos : s.fixedPos+n]); err != nil {
		return false, 0, err
	}
	s.fixedPos += n
	return true, n, nil
}

// --- Scan ---

// ScanFunc inspects the current readable window and returns either 0 (stop:
// a positive match occurred here) or k in (0, len(view)] (skip k bytes and
// continue scanning).
type ScanFunc func(view []byte) (int, error)

// Scan repeatedly ensures at least minWindow buffered bytes, calls scanFn
// with the current readable window, and either stops (scanFn returns 0) or
// advances by scanFn's returned skip count. Non-matching bytes are
// delivered to read processors and, if dst is non-nil, copied to dst. Scan
// returns (totalSkipped, matched, endOfStream). maxBytes of -1 means
// unbounded; otherwise it caps both the total bytes skipped and each
// window handed to scanFn (spec.md §4.1 Scan).
//
// An optional destination can be "a dst-buffer or a dst-stream"; both
// collapse to a single io.Writer parameter here (a pre-sized buffer and a
// stream are both just io.Writer in Go), so Scan takes one dst parameter
// instead of two mutually exclusive ones.
func (s *Stream) Scan(minWindow int, maxBytes int64, scanFn ScanFunc, dst io.Writer) (int64, bool, bool, error) {
	if err := s.checkDisposed(); err != nil {
		return 0, false, false, err
	}
	if minWindow < 1 {
		return 0, false, false, ErrWindowTooSmall
	}
	if s.fixed == nil && minWindow > len(s.buf) {
		return 0, false, false, ErrWindowTooLarge
	}
	if maxBytes < -1 {
		return 0, false, false, ErrNegativeSize
	}
	if !s.CanRead() {
		return 0, false, false, ErrNotReadable
	}
	if s.fixed == nil && s.dirtyWrite {
		if err := s.FlushWrite(); err != nil {
			return 0, false, false, err
		}
	}

	var total int64
	for {
		if err := s.checkCancel(); err != nil {
			return total, false, false, err
		}
		if maxBytes >= 0 && total >= maxBytes {
			return total, false, false, nil
		}
		if _, err := s.EnsureBuffered(minWindow); err != nil {
			return total, false, false, err
		}
		view := s.readableWindow()
		if len(view) == 0 {
			return total, false, true, nil
		}
		if maxBytes >= 0 {
			if remain := maxBytes - total; int64(len(view)) > remain {
				view = view[:remain]
			}
		}

		k, serr := scanFn(view)
		if serr != nil {
			return total, false, false, serr
		}
		if k == 0 {
			return total, true, false, nil
		}
		if k < 0 || k > len(view) {
			return total, false, false, ErrBadSkip
		}

		consumed, err := s.consumeAndForward(k, dst)
		total += int64(consumed)
		if err != nil {
			return total, false, false, err
		}
	}
}

// ScanContext is Scan with ctx checked between scan-loop iterations.
func (s *Stream) ScanContext(ctx context.Context, minWindow int, maxBytes int64, scanFn ScanFunc, dst io.Writer) (int64, bool, bool, error) {
	var (
		total   int64
		matched bool
		eof     bool
	)
	err := s.withContext(ctx, func() error {
		var e error
		total, matched, eof, e = s.Scan(minWindow, maxBytes, scanFn, dst)
		return e
	})
	return total, matched, eof, err
}

func (s *Stream) consumeAndForward(k int, dst io.Writer) (int, error) {
	var b []byte
	if s.fixed != nil {
		b = s.fixed[s.fixedPos : s.fixedPos+int64(k)]
	} else {
		b = s.buf[s.readOff : s.readOff+k]
	}
	if err := s.readProcs.deliver(b); err != nil {
		return 0, err
	}
	if dst != nil {
		n, err := dst.Write(b)
		if err != nil {
			return n, err
		}
		if n < len(b) {
			return n, io.ErrShortWrite
		}
	}
	if s.fixed != nil {
		s.fixedPos += int64(k)
	} else {
		s.readOff += k
	}
	return k, nil
}

// --- processors ---

// AddReadProcessor registers p to observe every byte a future Read/Skip/
// Match/Scan/ReadString call returns to its caller. Duplicates (by pointer
// identity) are rejected.
func (s *Stream) AddReadProcessor(p Processor) error {
	if err := s.checkDisposed(); err != nil {
		return err
	}
	if !s.readProcs.add(p) {
		return fmt.Errorf("%w: read processor already registered", ErrAlreadyBuffered)
	}
	return nil
}

// RemoveReadProcessor deregisters p. It is a no-op if p was not registered.
// Capabilities (CanWrite, CanSeek) reflect the removal immediately.
func (s *Stream) RemoveReadProcessor(p Processor) {
	s.readProcs.remove(p)
}

// AddWriteProcessor registers p to observe every byte handed to Write/
// WriteString before it is buffered or sent to the underlying source.
func (s *Stream) AddWriteProcessor(p Processor) error {
	if err := s.checkDisposed(); err != nil {
		return err
	}
	if !s.writeProcs.add(p) {
		return fmt.Errorf("%w: write processor already registered", ErrAlreadyBuffered)
	}
	return nil
}

// RemoveWriteProcessor deregisters p. It is a no-op if p was not registered.
func (s *Stream) RemoveWriteProcessor(p Processor) {
	s.writeProcs.remove(p)
}

// --- Dispose ---

// Close flushes any pending write-staged bytes, then closes the underlying
// source iff it is owned. Idempotent: calling Close more than once is a
// no-op after the first call (spec.md §4.1 Dispose).
func (s *Stream) Close() error {
	if s.disposed {
		return nil
	}
	wasFixed := s.fixed != nil
	var ferr error
	if !wasFixed {
		ferr = s.FlushWrite()
	}
	s.disposed = true
	s.buf = nil
	s.fixed = nil
	var cerr error
	if !wasFixed && s.ownBacking && s.src != nil {
		cerr = s.src.Close()
	}
	if ferr != nil {
		return ferr
	}
	return cerr
}

// CloseContext is Close with ctx checked before the final flush's
// underlying write.
func (s *Stream) CloseContext(ctx context.Context) error {
	return s.withContext(ctx, s.Close)
}

var (
	_ io.Reader   = (*Stream)(nil)
	_ io.Writer   = (*Stream)(nil)
	_ io.Seeker   = (*Stream)(nil)
	_ io.Closer   = (*Stream)(nil)
	_ io.ByteReader = (*Stream)(nil)
	_ io.ByteWriter = (*Stream)(nil)
)
