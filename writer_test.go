package marshalling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterTypedRoundTrip(t *testing.T) {
	rws := newMemRWS()
	st, err := NewStream(rws, false)
	require.NoError(t, err)
	w := NewWriter(st)

	w.WriteUint32(0xCAFEBABE)
	w.WriteInt16(-7)
	w.WriteFloat32(1.5)
	w.WriteBool(true)
	w.WriteUint8(0xFE)
	n, err := w.Result()
	require.NoError(t, err)
	assert.EqualValues(t, 4+2+4+1+1, n)

	_, err = st.Seek(0, 0)
	require.NoError(t, err)
	r := NewReader(st)
	var u32 uint32
	var i16 int16
	var f32 float32
	var bl bool
	var u8 uint8
	r.ReadUint32(&u32)
	r.ReadInt16(&i16)
	r.ReadFloat32(&f32)
	r.ReadBool(&bl)
	r.ReadUint8(&u8)
	require.NoError(t, r.Err())
	assert.EqualValues(t, 0xCAFEBABE, u32)
	assert.EqualValues(t, -7, i16)
	assert.EqualValues(t, 1.5, f32)
	assert.True(t, bl)
	assert.EqualValues(t, 0xFE, u8)
}

func TestWriterWriteZeros(t *testing.T) {
	rws := newMemRWS()
	st, err := NewStream(rws, false)
	require.NoError(t, err)
	w := NewWriter(st)

	w.WriteByte(1)
	w.WriteZeros(5)
	w.WriteByte(2)
	n, err := w.Result()
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)

	_, err = st.Seek(0, 0)
	require.NoError(t, err)
	var got [7]byte
	_, err = st.Read(got[:])
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 2}, got[:])
}

func TestWriterAlign(t *testing.T) {
	rws := newMemRWS()
	st, err := NewStream(rws, false)
	require.NoError(t, err)
	w := NewWriter(st)

	w.WriteUint8(1)
	w.Align(4)
	w.WriteUint8(9)
	n, err := w.Result()
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	_, err = st.Seek(0, 0)
	require.NoError(t, err)
	var got [5]byte
	_, err = st.Read(got[:])
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 9}, got[:])
}

func TestWriterFirstErrorSticks(t *testing.T) {
	w := NewWriter(NewFixedStream(nil))
	w.WriteUint32(1) // Fixed-mode stream is read-only, Write must fail
	firstErr := w.Err()
	require.Error(t, firstErr)

	w.WriteUint8(2)
	assert.Equal(t, firstErr, w.Err())
}

func TestWriterString(t *testing.T) {
	rws := newMemRWS()
	st, err := NewStream(rws, false)
	require.NoError(t, err)
	w := NewWriter(st)
	w.String(AsciiTextCodec.NewEncoder(), []rune("hi"), true)
	n, err := w.Result()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = st.Seek(0, 0)
	require.NoError(t, err)
	r := NewReader(st)
	value := r.String(AsciiTextCodec.NewDecoder(), -1)
	require.NoError(t, r.Err())
	assert.Equal(t, "hi", value)
}

func TestWriterWithByteOrder(t *testing.T) {
	rws := newMemRWS()
	st, err := NewStream(rws, false)
	require.NoError(t, err)
	w := NewWriter(st).WithByteOrder(LE)
	w.WriteUint32(0x01020304)
	_, err = w.Result()
	require.NoError(t, err)

	_, err = st.Seek(0, 0)
	require.NoError(t, err)
	var got [4]byte
	_, err = st.Read(got[:])
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, got[:])
}
