package marshalling

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndianCodecRoundTripBE(t *testing.T) {
	testEndianCodecRoundTrip(t, BE)
}

func TestEndianCodecRoundTripLE(t *testing.T) {
	testEndianCodecRoundTrip(t, LE)
}

func testEndianCodecRoundTrip(t *testing.T, c EndianCodec) {
	t.Run("uint8", func(t *testing.T) {
		var buf [1]byte
		require.NoError(t, c.WriteUint8(0xAB, buf[:]))
		got, err := c.ReadUint8(buf[:])
		require.NoError(t, err)
		assert.EqualValues(t, 0xAB, got)
	})
	t.Run("int8", func(t *testing.T) {
		var buf [1]byte
		require.NoError(t, c.WriteInt8(-5, buf[:]))
		got, err := c.ReadInt8(buf[:])
		require.NoError(t, err)
		assert.EqualValues(t, -5, got)
	})
	t.Run("uint16", func(t *testing.T) {
		var buf [2]byte
		require.NoError(t, c.WriteUint16(0xBEEF, buf[:]))
		got, err := c.ReadUint16(buf[:])
		require.NoError(t, err)
		assert.EqualValues(t, 0xBEEF, got)
	})
	t.Run("int16", func(t *testing.T) {
		var buf [2]byte
		require.NoError(t, c.WriteInt16(-1234, buf[:]))
		got, err := c.ReadInt16(buf[:])
		require.NoError(t, err)
		assert.EqualValues(t, -1234, got)
	})
	t.Run("uint32", func(t *testing.T) {
		var buf [4]byte
		require.NoError(t, c.WriteUint32(0xDEADBEEF, buf[:]))
		got, err := c.ReadUint32(buf[:])
		require.NoError(t, err)
		assert.EqualValues(t, 0xDEADBEEF, got)
	})
	t.Run("int32", func(t *testing.T) {
		var buf [4]byte
		require.NoError(t, c.WriteInt32(-123456789, buf[:]))
		got, err := c.ReadInt32(buf[:])
		require.NoError(t, err)
		assert.EqualValues(t, -123456789, got)
	})
	t.Run("uint64", func(t *testing.T) {
		var buf [8]byte
		require.NoError(t, c.WriteUint64(0x0123456789ABCDEF, buf[:]))
		got, err := c.ReadUint64(buf[:])
		require.NoError(t, err)
		assert.EqualValues(t, 0x0123456789ABCDEF, got)
	})
	t.Run("int64", func(t *testing.T) {
		var buf [8]byte
		require.NoError(t, c.WriteInt64(-9876543210, buf[:]))
		got, err := c.ReadInt64(buf[:])
		require.NoError(t, err)
		assert.EqualValues(t, -9876543210, got)
	})
	t.Run("float32", func(t *testing.T) {
		var buf [4]byte
		require.NoError(t, c.WriteFloat32(3.14159, buf[:]))
		got, err := c.ReadFloat32(buf[:])
		require.NoError(t, err)
		assert.InDelta(t, 3.14159, got, 1e-5)
	})
	t.Run("float64", func(t *testing.T) {
		var buf [8]byte
		require.NoError(t, c.WriteFloat64(2.718281828, buf[:]))
		got, err := c.ReadFloat64(buf[:])
		require.NoError(t, err)
		assert.InDelta(t, 2.718281828, got, 1e-9)
	})
}

func TestEndianCodecShortBufferErrors(t *testing.T) {
	var tiny [1]byte
	_, err := BE.ReadUint32(tiny[:])
	assert.ErrorIs(t, err, io.ErrShortBuffer)
	err = BE.WriteUint64(1, tiny[:])
	assert.ErrorIs(t, err, io.ErrShortBuffer)
}

func TestSwapFunctions(t *testing.T) {
	assert.Equal(t, uint16(0xCDAB), SwapUint16(0xABCD))
	assert.Equal(t, uint32(0xEFCDAB89), SwapUint32(0x89ABCDEF))
	assert.Equal(t, uint64(0xEFCDAB8967452301), SwapUint64(0x0123456789ABCDEF))
}

func TestBEAndLEProduceByteSwappedEncodings(t *testing.T) {
	var be, le [4]byte
	require.NoError(t, BE.WriteUint32(0x01020304, be[:]))
	require.NoError(t, LE.WriteUint32(0x01020304, le[:]))
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, be[:])
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, le[:])
}
