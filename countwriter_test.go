package marshalling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountWriterAccumulates(t *testing.T) {
	cw := NewCountWriter()
	n, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, cw.WriteByte('!'))

	n, err = cw.WriteString(" world")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	assert.EqualValues(t, 12, cw.Count())
}

func TestCountWriterReadAndSeekFail(t *testing.T) {
	cw := NewCountWriter()
	_, err := cw.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrNotReadable)
	_, err = cw.Seek(0, 0)
	assert.ErrorIs(t, err, ErrNotSeekable)
}

func TestCountWriterReset(t *testing.T) {
	cw := NewCountWriter()
	cw.Write([]byte("abc"))
	cw.Reset()
	assert.EqualValues(t, 0, cw.Count())
}
