package marshalling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPayload struct {
	A uint32
	B int16
	C byte
}

func TestFixedSize(t *testing.T) {
	c := &Fixed[fixedPayload]{}
	assert.Equal(t, 7, c.Size())
}

func TestFixedMarshalUnmarshalBinaryRoundTrip(t *testing.T) {
	c := &Fixed[fixedPayload]{Payload: fixedPayload{A: 0xCAFEBABE, B: -7, C: 0x42}}
	data, err := c.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, c.Size())

	var out Fixed[fixedPayload]
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, c.Payload, out.Payload)
}

func TestFixedUnmarshalBinaryRejectsNonZeroTrailing(t *testing.T) {
	c := &Fixed[fixedPayload]{Payload: fixedPayload{A: 1, B: 2, C: 3}}
	data, err := c.MarshalBinary()
	require.NoError(t, err)
	data = append(data, 0xFF)

	var out Fixed[fixedPayload]
	err = out.UnmarshalBinary(data)
	assert.ErrorIs(t, err, ErrTrailingData)
}

func TestFixedUnmarshalBinaryAllowsZeroTrailing(t *testing.T) {
	c := &Fixed[fixedPayload]{Payload: fixedPayload{A: 1, B: 2, C: 3}}
	data, err := c.MarshalBinary()
	require.NoError(t, err)
	data = append(data, 0x00, 0x00)

	var out Fixed[fixedPayload]
	require.NoError(t, out.UnmarshalBinary(data))
	assert.Equal(t, c.Payload, out.Payload)
}

func TestFixedWriteToReadFromStream(t *testing.T) {
	c := &Fixed[fixedPayload]{Payload: fixedPayload{A: 99, B: -1, C: 7}}
	rws := newMemRWS()
	st, err := NewStream(rws, false)
	require.NoError(t, err)

	n, err := c.WriteTo(st)
	require.NoError(t, err)
	assert.EqualValues(t, c.Size(), n)
	require.NoError(t, st.Flush())

	_, err = st.Seek(0, 0)
	require.NoError(t, err)

	var out Fixed[fixedPayload]
	n, err = out.ReadFrom(st)
	require.NoError(t, err)
	assert.EqualValues(t, c.Size(), n)
	assert.Equal(t, c.Payload, out.Payload)
}

func TestFixedMarshalTo(t *testing.T) {
	c := &Fixed[fixedPayload]{Payload: fixedPayload{A: 1, B: 2, C: 3}}
	buf := make([]byte, c.Size())
	n, err := c.MarshalTo(buf)
	require.NoError(t, err)
	assert.Equal(t, c.Size(), n)

	expected, err := c.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, expected, buf)
}
