package marshalling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsciiDecoderRoundTrip(t *testing.T) {
	dec := AsciiTextCodec.NewDecoder()
	assert.Equal(t, 1, dec.MinCodeUnitSize())

	src := []byte("hello")
	n, err := dec.CharCount(src, true)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	dst := make([]rune, n)
	written, err := dec.GetChars(src, dst, true)
	require.NoError(t, err)
	assert.Equal(t, 5, written)
	assert.Equal(t, []rune("hello"), dst)
}

func TestAsciiDecoderDstTooSmall(t *testing.T) {
	dec := AsciiTextCodec.NewDecoder()
	dst := make([]rune, 1)
	_, err := dec.GetChars([]byte("hi"), dst, true)
	var tooSmall *ErrDstTooSmall
	require.ErrorAs(t, err, &tooSmall)
	assert.Equal(t, 2, tooSmall.Required)
}

func TestAsciiEncoderRoundTrip(t *testing.T) {
	enc := AsciiTextCodec.NewEncoder()
	src := []rune("hello")
	n, err := enc.ByteCount(src)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	dst := make([]byte, n)
	written, err := enc.GetBytes(src, dst, true)
	require.NoError(t, err)
	assert.Equal(t, 5, written)
	assert.Equal(t, []byte("hello"), dst)
}

func TestUTF16LERoundTrip(t *testing.T) {
	enc := UTF16LE.NewEncoder()
	src := []rune("hi")
	encoded := make([]byte, 8)
	n, err := enc.GetBytes(src, encoded, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{'h', 0x00, 'i', 0x00}, encoded[:n])

	dec := UTF16LE.NewDecoder()
	assert.Equal(t, 2, dec.MinCodeUnitSize())
	count, err := dec.CharCount(encoded[:n], true)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	dst := make([]rune, count)
	written, err := dec.GetChars(encoded[:n], dst, true)
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Equal(t, []rune("hi"), dst)
}

func TestUTF16BERoundTrip(t *testing.T) {
	enc := UTF16BE.NewEncoder()
	src := []rune("hi")
	encoded := make([]byte, 8)
	n, err := enc.GetBytes(src, encoded, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 'h', 0x00, 'i'}, encoded[:n])

	dec := UTF16BE.NewDecoder()
	dst := make([]rune, 2)
	written, err := dec.GetChars(encoded[:n], dst, true)
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Equal(t, []rune("hi"), dst)
}

func TestUTF16DecoderGetCharsDstTooSmall(t *testing.T) {
	enc := UTF16LE.NewEncoder()
	encoded := make([]byte, 8)
	n, err := enc.GetBytes([]rune("hi"), encoded, true)
	require.NoError(t, err)

	dec := UTF16LE.NewDecoder()
	dst := make([]rune, 1)
	_, err = dec.GetChars(encoded[:n], dst, true)
	var tooSmall *ErrDstTooSmall
	require.ErrorAs(t, err, &tooSmall)
	assert.Equal(t, 2, tooSmall.Required)
}

func TestUTF16DecoderCarriesSplitByteAcrossCalls(t *testing.T) {
	enc := UTF16LE.NewEncoder()
	encoded := make([]byte, 8)
	n, err := enc.GetBytes([]rune("hi"), encoded, true)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	dec := UTF16LE.NewDecoder()
	dst := make([]rune, 2)

	// Feed the first byte of "h" alone: no complete code unit yet.
	count, err := dec.GetChars(encoded[:1], dst, false)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Feed the rest; the carried byte should complete 'h', then 'i' follows.
	count, err = dec.GetChars(encoded[1:4], dst, true)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []rune("hi"), dst[:count])
}

func TestDecoderResetClearsCarry(t *testing.T) {
	dec := UTF16LE.NewDecoder()
	dst := make([]rune, 2)
	_, err := dec.GetChars([]byte{'h', 0x00}[:1], dst, false)
	require.NoError(t, err)
	dec.Reset()

	// After reset, feeding a fresh complete code unit should decode cleanly
	// without any leftover carry from before.
	n, err := dec.GetChars([]byte{'x', 0x00}, dst, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 'x', dst[0])
}
