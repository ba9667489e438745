package marshalling

import (
	"context"
	"errors"
	"fmt"
)

// NullBehavior selects how ReadString treats a decoded null character
// (spec.md §4.2, §6).
type NullBehavior int

const (
	// NullIgnore appends every decoded character, including embedded nulls,
	// and never sets stoppedOnNull.
	NullIgnore NullBehavior = iota
	// NullStop stops at the first confirmed null terminator and discards it
	// and everything after.
	NullStop
	// NullTrimTrailing appends every character but defers trailing zero
	// characters, dropping them if the string ends before a non-zero
	// character follows.
	NullTrimTrailing
)

// discoverNullTerminatorSize finds the smallest i in [1, 8] such that i
// zero bytes decode to exactly one character under decoder's current state,
// per spec.md §4.2 Setup. It uses a throwaway probe via CharCount with
// flush=false, so an encoding whose minimum code unit is wider than i bytes
// correctly reports 0 characters for an incomplete prefix instead of
// mis-firing on a partial code unit.
func discoverNullTerminatorSize(decoder Decoder) (int, error) {
	var zeros [8]byte
	for i := 1; i <= 8; i++ {
		n, err := decoder.CharCount(zeros[:i], false)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrDecoderFault, err)
		}
		if n == 1 {
			return i, nil
		}
	}
	return 0, ErrNoSuchCodeUnitSize
}

// nullProbe implements the §4.2 step-3 byte-level null-terminator probe. It
// inspects window (the bytes about to be processed this pass, already
// capped to the per-pass budget) and returns the number of bytes this pass
// should actually consume, possibly less than len(window) when a candidate
// terminator run needs to be confirmed one byte at a time by the decoder.
//
// *zeroCount carries state across passes:
//   - 0: no pending candidate.
//   - in [1, ntSize-1]: a candidate run of that many zero bytes is pending,
//     continuing from the end of the previous pass's consumed bytes.
//   - >= ntSize: a full-width run has been confirmed at the byte level;
//     remaining bytes of it are now fed one at a time until the decoder
//     itself reports a determinate character count for one of those passes.
func nullProbe(window []byte, zeroCount *int, ntSize int) int {
	take := len(window)
	if take == 0 {
		return 0
	}

	if *zeroCount >= ntSize {
		// Already byte-confirmed; single-step until the decoder resolves it.
		if take > 1 {
			take = 1
		}
		return take
	}

	if *zeroCount > 0 {
		newZeros := 0
		for newZeros < take && window[newZeros] == 0 {
			newZeros++
		}
		if newZeros > 0 {
			total := *zeroCount + newZeros
			if total >= ntSize {
				limit := ntSize - *zeroCount
				*zeroCount = ntSize
				return limit
			}
			if newZeros == take {
				*zeroCount = total
				return take
			}
			// Run broken by a non-zero byte before reaching ntSize: dead
			// candidate. Fall through to a fresh search over the window.
		}
		*zeroCount = 0
	}

	count := 0
	for i := 0; i < take; i++ {
		if window[i] == 0 {
			count++
			if count == ntSize {
				idx := i - ntSize + 1
				if ntSize == 1 {
					*zeroCount = ntSize
					return idx + ntSize
				}
				// Hold back the run's final byte so the next pass feeds it
				// alone, forcing the decoder to confirm the code-unit
				// boundary before a null character is accepted (spec.md
				// §4.2's defense against non-aligned false positives).
				*zeroCount = ntSize - 1
				return idx + ntSize - 1
			}
		} else {
			count = 0
		}
	}

	trailing := 0
	for i := take - 1; i >= 0 && window[i] == 0; i-- {
		trailing++
	}
	*zeroCount = trailing
	return take
}

func charBufferBaseCapacity(s *Stream) int {
	base := s.BufferCapacity()
	if base == 0 || base > 8192 {
		base = 8192
	}
	reserve := base / 4
	if reserve < 4 {
		reserve = 4
	}
	return base + reserve
}

func growCharBufReserve(required int) int {
	reserve := required / 4
	if reserve < 4 {
		reserve = 4
	}
	return required + reserve
}

// getCharsWithGrowth calls decoder.GetChars(src, *charBuf, flush), growing
// *charBuf once and retrying if the decoder reports ErrDstTooSmall, per
// spec.md §4.2 step 4.
func getCharsWithGrowth(decoder Decoder, src []byte, charBuf **[]rune, flush bool) (int, error) {
	m, err := decoder.GetChars(src, **charBuf, flush)
	if err == nil {
		return m, nil
	}
	var tooSmall *ErrDstTooSmall
	if !errors.As(err, &tooSmall) {
		return 0, fmt.Errorf("%w: %v", ErrDecoderFault, err)
	}
	need := growCharBufReserve(tooSmall.Required)
	if need <= len(**charBuf) {
		return 0, fmt.Errorf("%w: decoder requested growth but the buffer is already large enough", ErrDecoderFault)
	}
	putRuneBuf(*charBuf)
	*charBuf = getRuneBuf(need)
	m, err = decoder.GetChars(src, **charBuf, flush)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecoderFault, err)
	}
	return m, nil
}

// ReadString implements the decisive null-terminator-aware string read of
// spec.md §4.2. It returns the decoded text, the number of bytes consumed,
// whether a confirmed null terminator stopped the read, and whether the
// underlying source was exhausted before maxBytes/a terminator was reached.
func (s *Stream) ReadString(decoder Decoder, maxBytes int64, nullBehavior NullBehavior) (string, int64, bool, bool, error) {
	if err := s.checkDisposed(); err != nil {
		return "", 0, false, false, err
	}
	if maxBytes < -1 {
		return "", 0, false, false, ErrNegativeSize
	}
	if !s.CanRead() {
		return "", 0, false, false, ErrNotReadable
	}

	var ntSize int
	if nullBehavior == NullStop {
		var err error
		ntSize, err = discoverNullTerminatorSize(decoder)
		if err != nil {
			return "", 0, false, false, err
		}
	}

	charBuf := getRuneBuf(charBufferBaseCapacity(s))
	defer putRuneBuf(charBuf)

	var (
		result        []rune
		consumed      int64
		stoppedOnNull bool
		eof           bool
		zeroCount     int
		deferredZeros int
	)

	for !stoppedOnNull && (maxBytes < 0 || consumed < maxBytes) {
		if err := s.checkCancel(); err != nil {
			return string(result), consumed, stoppedOnNull, eof, err
		}
		ok, err := s.EnsureBuffered(1)
		if err != nil {
			return string(result), consumed, stoppedOnNull, eof, err
		}
		if !ok {
			eof = true
			break
		}
		view := s.readableWindow()
		take := len(view)
		if take > len(*charBuf) {
			take = len(*charBuf)
		}
		if maxBytes >= 0 {
			if remain := maxBytes - consumed; int64(take) > remain {
				take = int(remain)
			}
		}
		if nullBehavior == NullStop && take > 0 {
			take = nullProbe(view[:take], &zeroCount, ntSize)
		}
		if take == 0 {
			break
		}
		chunk := view[:take]
		if err := s.readProcs.deliver(chunk); err != nil {
			return string(result), consumed, stoppedOnNull, eof, err
		}

		m, err := getCharsWithGrowth(decoder, chunk, &charBuf, false)
		if err != nil {
			return string(result), consumed, stoppedOnNull, eof, err
		}

		if s.fixed != nil {
			s.fixedPos += int64(take)
		} else {
			s.readOff += take
		}
		consumed += int64(take)

		chars := (*charBuf)[:m]
		switch nullBehavior {
		case NullIgnore:
			result = append(result, chars...)
		case NullStop:
			if zeroCount >= ntSize {
				for _, r := range chars {
					if r == 0 {
						stoppedOnNull = true
						break
					}
					result = append(result, r)
				}
			} else {
				result = append(result, chars...)
			}
		case NullTrimTrailing:
			for _, r := range chars {
				if r == 0 {
					deferredZeros++
					continue
				}
				for ; deferredZeros > 0; deferredZeros-- {
					result = append(result, 0)
				}
				result = append(result, r)
			}
		}

		if take == 1 && m > 0 {
			zeroCount = 0
		}
	}

	if !stoppedOnNull {
		m, err := getCharsWithGrowth(decoder, nil, &charBuf, true)
		if err != nil {
			return string(result), consumed, stoppedOnNull, eof, err
		}
		chars := (*charBuf)[:m]
		switch nullBehavior {
		case NullIgnore:
			result = append(result, chars...)
		case NullStop:
			for _, r := range chars {
				if r == 0 {
					stoppedOnNull = true
					break
				}
				result = append(result, r)
			}
		case NullTrimTrailing:
			for _, r := range chars {
				if r == 0 {
					deferredZeros++
					continue
				}
				for ; deferredZeros > 0; deferredZeros-- {
					result = append(result, 0)
				}
				result = append(result, r)
			}
			// Deferred trailing zero characters are dropped, not flushed.
		}
	}

	return string(result), consumed, stoppedOnNull, eof, nil
}

// ReadStringContext is ReadString with ctx checked between passes.
func (s *Stream) ReadStringContext(ctx context.Context, decoder Decoder, maxBytes int64, nullBehavior NullBehavior) (string, int64, bool, bool, error) {
	var (
		value         string
		consumed      int64
		stoppedOnNull bool
		eof           bool
	)
	err := s.withContext(ctx, func() error {
		var e error
		value, consumed, stoppedOnNull, eof, e = s.ReadString(decoder, maxBytes, nullBehavior)
		return e
	})
	return value, consumed, stoppedOnNull, eof, err
}

// WriteString encodes text incrementally and writes it, per spec.md §4.1
// Write-string. If withNull is set, an encoded null terminator (sized to
// the encoder's own code unit) is appended. Returns total bytes written.
func (s *Stream) WriteString(encoder Encoder, text []rune, withNull bool) (int64, error) {
	if err := s.checkDisposed(); err != nil {
		return 0, err
	}
	if !s.CanWrite() {
		return 0, ErrNotWritable
	}

	ntSize, err := encoder.ByteCount([]rune{0})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEncoderFault, err)
	}
	if ntSize <= 0 {
		return 0, ErrNoSuchCodeUnitSize
	}
	reserve := ntSize * 3
	threshold := reserve * 100

	if !s.dirtyWrite {
		if err := s.transitionToWrite(); err != nil {
			return 0, err
		}
	}

	var total int64
	if len(s.buf) >= threshold {
		n, err := s.writeStringDirect(encoder, text, reserve)
		total += n
		if err != nil {
			return total, err
		}
	} else {
		n, err := s.writeStringRented(encoder, text, reserve, threshold)
		total += n
		if err != nil {
			return total, err
		}
	}

	if withNull {
		zeros := make([]byte, ntSize)
		n, err := s.Write(zeros)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteStringContext is WriteString with ctx checked before each encoder
// pass's underlying write.
func (s *Stream) WriteStringContext(ctx context.Context, encoder Encoder, text []rune, withNull bool) (int64, error) {
	var n int64
	err := s.withContext(ctx, func() error {
		var e error
		n, e = s.WriteString(encoder, text, withNull)
		return e
	})
	return n, err
}

func encodeChunkWithRetry(encoder Encoder, remaining []rune, dst []byte, maxChars int) (consumedChars, written int, newMaxChars int, err error) {
	for {
		if maxChars < 1 {
			maxChars = 1
		}
		chunk := remaining
		if maxChars < len(chunk) {
			chunk = chunk[:maxChars]
		}
		n, e := encoder.GetBytes(chunk, dst, false)
		if e != nil {
			var tooSmall *ErrDstTooSmall
			if errors.As(e, &tooSmall) {
				if maxChars <= 1 {
					return 0, 0, maxChars, fmt.Errorf("%w: %v", ErrEncoderOverflowed, e)
				}
				maxChars /= 2
				continue
			}
			return 0, 0, maxChars, fmt.Errorf("%w: %v", ErrEncoderFault, e)
		}
		return len(chunk), n, maxChars, nil
	}
}

func (s *Stream) writeStringDirect(encoder Encoder, text []rune, reserve int) (int64, error) {
	var total int64
	remaining := text
	for len(remaining) > 0 {
		if err := s.checkCancel(); err != nil {
			return total, err
		}
		if len(s.buf)-s.bufLen < reserve {
			if err := s.FlushWrite(); err != nil {
				return total, err
			}
			if err := s.transitionToWrite(); err != nil {
				return total, err
			}
		}
		maxChars := (len(s.buf) - s.bufLen) / reserve
		cc, n, _, err := encodeChunkWithRetry(encoder, remaining, s.buf[s.bufLen:], maxChars)
		if err != nil {
			return total, err
		}
		if err := s.writeProcs.deliver(s.buf[s.bufLen : s.bufLen+n]); err != nil {
			return total, err
		}
		s.bufLen += n
		total += int64(n)
		remaining = remaining[cc:]
	}

	for {
		if len(s.buf)-s.bufLen < reserve {
			if err := s.FlushWrite(); err != nil {
				return total, err
			}
			if err := s.transitionToWrite(); err != nil {
				return total, err
			}
		}
		n, err := encoder.GetBytes(nil, s.buf[s.bufLen:], true)
		if err != nil {
			var tooSmall *ErrDstTooSmall
			if errors.As(err, &tooSmall) {
				continue
			}
			return total, fmt.Errorf("%w: %v", ErrEncoderFault, err)
		}
		if err := s.writeProcs.deliver(s.buf[s.bufLen : s.bufLen+n]); err != nil {
			return total, err
		}
		s.bufLen += n
		total += int64(n)
		return total, nil
	}
}

func (s *Stream) writeStringRented(encoder Encoder, text []rune, reserve, threshold int) (int64, error) {
	scratchPtr := getScratchBuf(threshold)
	defer putScratchBuf(scratchPtr)
	scratch := *scratchPtr

	var total int64
	remaining := text
	maxChars := threshold / reserve
	for len(remaining) > 0 {
		if err := s.checkCancel(); err != nil {
			return total, err
		}
		cc, n, newMax, err := encodeChunkWithRetry(encoder, remaining, scratch, maxChars)
		maxChars = newMax
		if err != nil {
			return total, err
		}
		wn, werr := s.Write(scratch[:n])
		total += int64(wn)
		if werr != nil {
			return total, werr
		}
		remaining = remaining[cc:]
	}

	n, err := encoder.GetBytes(nil, scratch, true)
	if err != nil {
		return total, fmt.Errorf("%w: %v", ErrEncoderFault, err)
	}
	wn, werr := s.Write(scratch[:n])
	total += int64(wn)
	if werr != nil {
		return total, werr
	}
	return total, nil
}
