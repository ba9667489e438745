package marshalling

import (
	"io"
	"math"

	"encoding/binary"
)

// EndianCodec is a bidirectional mapping between fixed-width scalars and
// byte spans under a chosen byte order (binary.ByteOrder plus manual float
// bit-juggling), pulled out into its own named contract so Stream, Reader
// and Writer all share one implementation.
type EndianCodec struct {
	Order binary.ByteOrder
}

// BE and LE are the two concrete byte orders exposed as package globals.
// Native here means BE; callers needing true host-native order should
// detect it themselves and pick BE or LE.
var (
	BE = EndianCodec{Order: binary.BigEndian}
	LE = EndianCodec{Order: binary.LittleEndian}
)

func (c EndianCodec) sizeErr(n, need int) error {
	if n < need {
		return io.ErrShortBuffer
	}
	return nil
}

func (c EndianCodec) ReadUint8(buf []byte) (uint8, error) {
	if err := c.sizeErr(len(buf), 1); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (c EndianCodec) WriteUint8(v uint8, buf []byte) error {
	if err := c.sizeErr(len(buf), 1); err != nil {
		return err
	}
	buf[0] = v
	return nil
}

func (c EndianCodec) ReadInt8(buf []byte) (int8, error) {
	v, err := c.ReadUint8(buf)
	return int8(v), err
}

func (c EndianCodec) WriteInt8(v int8, buf []byte) error {
	return c.WriteUint8(uint8(v), buf)
}

func (c EndianCodec) ReadUint16(buf []byte) (uint16, error) {
	if err := c.sizeErr(len(buf), 2); err != nil {
		return 0, err
	}
	return c.Order.Uint16(buf), nil
}

func (c EndianCodec) WriteUint16(v uint16, buf []byte) error {
	if err := c.sizeErr(len(buf), 2); err != nil {
		return err
	}
	c.Order.PutUint16(buf, v)
	return nil
}

func (c EndianCodec) ReadInt16(buf []byte) (int16, error) {
	v, err := c.ReadUint16(buf)
	return int16(v), err
}

func (c EndianCodec) WriteInt16(v int16, buf []byte) error {
	return c.WriteUint16(uint16(v), buf)
}

func (c EndianCodec) ReadUint32(buf []byte) (uint32, error) {
	if err := c.sizeErr(len(buf), 4); err != nil {
		return 0, err
	}
	return c.Order.Uint32(buf), nil
}

func (c EndianCodec) WriteUint32(v uint32, buf []byte) error {
	if err := c.sizeErr(len(buf), 4); err != nil {
		return err
	}
	c.Order.PutUint32(buf, v)
	return nil
}

func (c EndianCodec) ReadInt32(buf []byte) (int32, error) {
	v, err := c.ReadUint32(buf)
	return int32(v), err
}

func (c EndianCodec) WriteInt32(v int32, buf []byte) error {
	return c.WriteUint32(uint32(v), buf)
}

func (c EndianCodec) ReadUint64(buf []byte) (uint64, error) {
	if err := c.sizeErr(len(buf), 8); err != nil {
		return 0, err
	}
	return c.Order.Uint64(buf), nil
}

func (c EndianCodec) WriteUint64(v uint64, buf []byte) error {
	if err := c.sizeErr(len(buf), 8); err != nil {
		return err
	}
	c.Order.PutUint64(buf, v)
	return nil
}

func (c EndianCodec) ReadInt64(buf []byte) (int64, error) {
	v, err := c.ReadUint64(buf)
	return int64(v), err
}

func (c EndianCodec) WriteInt64(v int64, buf []byte) error {
	return c.WriteUint64(uint64(v), buf)
}

// ReadFloat32 reads an IEEE-754 single-precision float. Float byte order is
// handled by reinterpreting the raw bit pattern read under the same integer
// byte order, per spec.md §4.3.
func (c EndianCodec) ReadFloat32(buf []byte) (float32, error) {
	bits, err := c.ReadUint32(buf)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func (c EndianCodec) WriteFloat32(v float32, buf []byte) error {
	return c.WriteUint32(math.Float32bits(v), buf)
}

func (c EndianCodec) ReadFloat64(buf []byte) (float64, error) {
	bits, err := c.ReadUint64(buf)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func (c EndianCodec) WriteFloat64(v float64, buf []byte) error {
	return c.WriteUint64(math.Float64bits(v), buf)
}

// SwapUint16 reverses the byte order of v.
func SwapUint16(v uint16) uint16 {
	return v<<8 | v>>8
}

// SwapUint32 reverses the byte order of v.
func SwapUint32(v uint32) uint32 {
	return v<<24 | (v&0xFF00)<<8 | (v&0xFF0000)>>8 | v>>24
}

// SwapUint64 reverses the byte order of v.
func SwapUint64(v uint64) uint64 {
	return v<<56 |
		(v&0xFF00)<<40 |
		(v&0xFF0000)<<24 |
		(v&0xFF000000)<<8 |
		(v&0xFF00000000)>>8 |
		(v&0xFF0000000000)>>24 |
		(v&0xFF000000000000)>>40 |
		v>>56
}
