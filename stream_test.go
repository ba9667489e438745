package marshalling

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StreamTestSuite struct {
	suite.Suite
}

func TestStreamTestSuite(t *testing.T) {
	suite.Run(t, new(StreamTestSuite))
}

func (s *StreamTestSuite) TestConstructorRejectsNil() {
	_, err := NewStream(nil, false)
	s.ErrorIs(err, ErrNilIO)
}

func (s *StreamTestSuite) TestConstructorRejectsDoubleBuffering() {
	buf := &bytes.Buffer{}
	inner, err := NewStream(buf, false)
	s.Require().NoError(err)
	_, err = NewStream(inner, false)
	s.ErrorIs(err, ErrAlreadyBuffered)
}

func (s *StreamTestSuite) TestReadEmptyDstIsNoop() {
	st, err := NewStream(bytes.NewReader([]byte{1, 2, 3}), false)
	s.Require().NoError(err)
	n, err := st.Read(nil)
	s.Equal(0, n)
	s.NoError(err)
}

func (s *StreamTestSuite) TestEnsureBufferedZeroAlwaysTrue() {
	st, err := NewStream(bytes.NewReader(nil), false)
	s.Require().NoError(err)
	ok, err := st.EnsureBuffered(0)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *StreamTestSuite) TestEnsureBufferedReportsPermanentEOF() {
	st, err := NewStreamSize(bytes.NewReader([]byte{1, 2, 3}), 16, false)
	s.Require().NoError(err)
	ok, err := st.EnsureBuffered(4)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *StreamTestSuite) TestEnsureBufferedWindowTooLarge() {
	st, err := NewStreamSize(bytes.NewReader([]byte{1, 2, 3}), 4, false)
	s.Require().NoError(err)
	_, err = st.EnsureBuffered(8)
	s.ErrorIs(err, ErrWindowTooLarge)
}

func (s *StreamTestSuite) TestFixedModeSeekPastEndThenReadReturnsZero() {
	st := NewFixedStream([]byte{1, 2, 3})
	_, err := st.Seek(100, io.SeekStart)
	s.Require().NoError(err)
	var buf [4]byte
	n, err := st.Read(buf[:])
	s.Equal(0, n)
	s.ErrorIs(err, io.EOF)
}

func (s *StreamTestSuite) TestWriteThenReadRoundTripOnSeekableSource() {
	// bytes.Buffer is read+write but not seekable, so use an in-memory
	// seekable backing instead.
	rws := newMemRWS()
	st2, err := NewStream(rws, false)
	s.Require().NoError(err)

	values := []uint32{0, 1, 0xDEADBEEF, 42}
	for _, v := range values {
		var b [4]byte
		s.Require().NoError(BE.WriteUint32(v, b[:]))
		_, err := st2.Write(b[:])
		s.Require().NoError(err)
	}
	s.Require().NoError(st2.Flush())

	_, err = st2.Seek(0, io.SeekStart)
	s.Require().NoError(err)
	for _, want := range values {
		var b [4]byte
		_, err := io.ReadFull(st2, b[:])
		s.Require().NoError(err)
		got, err := BE.ReadUint32(b[:])
		s.Require().NoError(err)
		s.Equal(want, got)
	}
}

func (s *StreamTestSuite) TestSkipEquivalentToReadScratch() {
	data := []byte("abcdefghij")

	st1, _ := NewStream(bytes.NewReader(data), false)
	var cp1 countingProcessorBytes
	s.Require().NoError(st1.AddReadProcessor(&cp1))
	skipped, err := st1.Skip(5)
	s.Require().NoError(err)
	s.EqualValues(5, skipped)

	st2, _ := NewStream(bytes.NewReader(data), false)
	var cp2 countingProcessorBytes
	s.Require().NoError(st2.AddReadProcessor(&cp2))
	scratch := make([]byte, 5)
	n, err := io.ReadFull(st2, scratch)
	s.Require().NoError(err)
	s.Equal(5, n)

	s.Equal(cp2.seen, cp1.seen)
}

func (s *StreamTestSuite) TestMatchSuccess() {
	st := NewFixedStream([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	ok, n, err := st.Match([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	s.Require().NoError(err)
	s.True(ok)
	s.EqualValues(4, n)
}

func (s *StreamTestSuite) TestMatchPartialConsumeOnMismatch() {
	rws := newMemRWS()
	rws.Write([]byte{0xDE, 0xAD, 0xFF})
	rws.pos = 0
	st, err := NewStreamSize(rws, 3, false)
	s.Require().NoError(err)
	ok, n, err := st.Match([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	s.Require().NoError(err)
	s.False(ok)
	s.EqualValues(3, n)
}

func (s *StreamTestSuite) TestScanStopsAndAdvances() {
	data := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	st, err := NewStreamSize(bytes.NewReader(data), 8, false)
	s.Require().NoError(err)

	scanFn := func(view []byte) (int, error) {
		if len(view) >= 1 && view[0] == 0xCC {
			return 0, nil
		}
		return 2, nil
	}
	var dst bytes.Buffer
	total, matched, eof, err := st.Scan(2, -1, scanFn, &dst)
	s.Require().NoError(err)
	s.True(matched)
	s.False(eof)
	s.EqualValues(2, total)
	s.Equal([]byte{0xAA, 0xBB}, dst.Bytes())
}

func (s *StreamTestSuite) TestScanRunsToEOFWhenNeverMatches() {
	data := []byte{1, 2, 3, 4, 5}
	st, err := NewStreamSize(bytes.NewReader(data), 8, false)
	s.Require().NoError(err)

	scanFn := func(view []byte) (int, error) {
		return len(view), nil
	}
	total, matched, eof, err := st.Scan(1, -1, scanFn, nil)
	s.Require().NoError(err)
	s.False(matched)
	s.True(eof)
	s.EqualValues(len(data), total)
}

func (s *StreamTestSuite) TestProcessorSeesEachByteExactlyOnce() {
	data := []byte("the quick brown fox")
	st, err := NewStreamSize(bytes.NewReader(data), 4, false)
	s.Require().NoError(err)
	var cp countingProcessorBytes
	s.Require().NoError(st.AddReadProcessor(&cp))

	out, err := io.ReadAll(st)
	s.Require().NoError(err)
	s.Equal(data, out)
	s.Equal(data, cp.seen)
}

func (s *StreamTestSuite) TestDuplicateProcessorRejected() {
	st, err := NewStream(bytes.NewReader(nil), false)
	s.Require().NoError(err)
	var cp countingProcessorBytes
	s.Require().NoError(st.AddReadProcessor(&cp))
	err = st.AddReadProcessor(&cp)
	s.ErrorIs(err, ErrAlreadyBuffered)
}

func (s *StreamTestSuite) TestCanWriteFalseWhileReadProcessorRegistered() {
	rws := newMemRWS()
	st, err := NewStream(rws, false)
	s.Require().NoError(err)
	var cp countingProcessorBytes
	s.Require().NoError(st.AddReadProcessor(&cp))
	s.False(st.CanWrite())
	st.RemoveReadProcessor(&cp)
	s.True(st.CanWrite())
}

func (s *StreamTestSuite) TestTransitionToWriteFailsOnNonSeekableWithUnread() {
	r := bytes.NewReader([]byte{1, 2, 3, 4})
	pr, pw := io.Pipe()
	go func() {
		io.Copy(pw, r)
		pw.Close()
	}()
	st, err := NewStreamSize(struct {
		io.Reader
		io.Writer
	}{pr, io.Discard}, 16, false)
	s.Require().NoError(err)

	var b [1]byte
	_, err = st.Read(b[:])
	s.Require().NoError(err)

	_, err = st.Write([]byte{9})
	s.ErrorIs(err, ErrUnreadDrainImpossible)
}

func (s *StreamTestSuite) TestDisposeIsIdempotent() {
	st, err := NewStream(bytes.NewReader(nil), false)
	s.Require().NoError(err)
	require.NoError(s.T(), st.Close())
	require.NoError(s.T(), st.Close())
	s.True(st.IsDisposed())
	_, err = st.Read(make([]byte, 1))
	s.ErrorIs(err, ErrDisposed)
}

func (s *StreamTestSuite) TestPositionIdentitySourceReadStaged() {
	rws := newMemRWS()
	rws.Write([]byte("0123456789"))
	rws.pos = 0
	st, err := NewStreamSize(rws, 4, false)
	s.Require().NoError(err)

	var b [2]byte
	_, err = st.Read(b[:])
	s.Require().NoError(err)
	pos, err := st.Position()
	s.Require().NoError(err)
	s.EqualValues(2, pos)
}

// --- test helpers ---

type countingProcessorBytes struct {
	seen []byte
}

func (c *countingProcessorBytes) Process(b []byte) error {
	c.seen = append(c.seen, b...)
	return nil
}

// memRWS is a minimal in-memory io.ReadWriteSeeker+io.Closer for tests that
// need a seekable backing (bytes.Buffer is not seekable).
type memRWS struct {
	buf []byte
	pos int64
}

func newMemRWS() *memRWS { return &memRWS{} }

func (m *memRWS) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memRWS) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memRWS) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.pos + offset
	case io.SeekEnd:
		target = int64(len(m.buf)) + offset
	default:
		return 0, ErrInvalidWhence
	}
	if target < 0 {
		return 0, ErrInvalidSeek
	}
	m.pos = target
	return target, nil
}

func (m *memRWS) Close() error { return nil }

var (
	_ io.ReadWriteSeeker = (*memRWS)(nil)
	_ io.Closer          = (*memRWS)(nil)
)

func TestMatchEmptyPatternTrivially(t *testing.T) {
	st, err := NewStream(bytes.NewReader([]byte{1}), false)
	require.NoError(t, err)
	ok, n, err := st.Match(nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 0, n)
}
