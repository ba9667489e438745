package marshalling

import (
	"io"
	"reflect"
)

type List interface {
	Codec
	Len() int
	Codecs() []Codec
}

// listOptions defines the configuration for encoding and decoding a list of
// codecs.
type listOptions struct {
	// Alignment specifies the byte boundary to which each item (except the
	// last) should be padded. A value of 0 or 1 means no alignment. Common
	// values are 4 or 8.
	Alignment int
}

// list is a generic codec for handling slices of any type implementing
// Codec. It supports alignment padding and streams its items through a
// Stream rather than buffering the whole slice.
type list[T Codec] struct {
	Items   []T
	options *listOptions
}

var _ List = (*list[Codec])(nil)

func (l *list[T]) Codecs() []Codec {
	codecs := make([]Codec, l.Len())
	for i, codec := range l.Items {
		codecs[i] = codec
	}
	return codecs
}

type (
	List0[T Codec] struct{ list[T] }
	List4[T Codec] struct{ list[T] }
	List8[T Codec] struct{ list[T] }
)

// NewList creates a new List codec with the given items and options.
func NewList[T Codec](items []T, options *listOptions) *list[T] {
	if options == nil {
		options = &listOptions{Alignment: 0}
	}
	return &list[T]{
		Items:   items,
		options: options,
	}
}

// NewList0 creates an unaligned list.
func NewList0[T Codec](items []T) *List0[T] {
	return &List0[T]{list[T]{Items: items, options: &listOptions{Alignment: 0}}}
}

// NewList4 creates a 4-byte-aligned list.
func NewList4[T Codec](items []T) *List4[T] {
	return &List4[T]{list[T]{Items: items, options: &listOptions{Alignment: 4}}}
}

// NewList8 creates an 8-byte-aligned list.
func NewList8[T Codec](items []T) *List8[T] {
	return &List8[T]{list[T]{Items: items, options: &listOptions{Alignment: 8}}}
}

func (l *list[T]) Len() int {
	return len(l.Items)
}

// Size calculates the total binary size of the list, including alignment
// padding.
func (l *list[T]) Size() int {
	if len(l.Items) == 0 {
		return 0
	}

	totalSize := 0
	lastIndex := len(l.Items) - 1

	for i, item := range l.Items {
		itemSize := item.Size()
		totalSize += itemSize
		if i < lastIndex && l.options.Alignment > 1 {
			padding := Roundup(itemSize, l.options.Alignment) - itemSize
			totalSize += padding
		}
	}
	return totalSize
}

// WriteTo writes the entire list to s, handling alignment.
func (l *list[T]) WriteTo(s *Stream) (int64, error) {
	if len(l.Items) == 0 {
		return 0, nil
	}

	w := NewWriter(s)
	lastIndex := len(l.Items) - 1

	for i, item := range l.Items {
		n, err := item.WriteTo(s)
		w.count += n
		if err != nil {
			w.setError(err)
			break
		}

		if i < lastIndex && l.options.Alignment > 1 {
			w.Align(l.options.Alignment)
		}
	}
	return w.Result()
}

// ReadFrom reads and decodes items into the list from s.
//
// The read behavior is determined by the capacity of l.Items:
//   - If cap(l.Items) > 0, it reads exactly that many items.
//   - If cap(l.Items) == 0, it reads items until s returns io.EOF.
func (l *list[T]) ReadFrom(s *Stream) (int64, error) {
	var n int64
	count := cap(l.Items)
	readUntilEOF := count == 0

	for i := 0; readUntilEOF || i < count; i++ {
		var item T

		elemType := reflect.TypeOf(item)
		if elemType.Kind() == reflect.Ptr {
			elemType = elemType.Elem()
		}
		newItem := reflect.New(elemType).Interface().(T)

		read, err := newItem.ReadFrom(s)
		n += read

		if err != nil {
			if readUntilEOF && (err == io.EOF || read == 0) {
				break
			}
			return n, err
		}

		l.Items = append(l.Items, newItem)

		isLastItem := !readUntilEOF && (i == count-1)

		if !isLastItem && l.options.Alignment > 1 {
			padding := Roundup(read, int64(l.options.Alignment)) - read
			if padding > 0 {
				skipped, err := s.Skip(padding)
				n += skipped

				if err != nil {
					if readUntilEOF && (err == io.EOF || read == 0) {
						break
					}
					return n, err
				}
			}
		}
	}

	return n, nil
}

// --- Boilerplate implementations ---

func (l *list[T]) MarshalBinary() ([]byte, error) {
	return MarshalBinaryGeneric(l)
}

func (l *list[T]) UnmarshalBinary(data []byte) error {
	return UnmarshalBinaryGeneric(l, data)
}

func (l *list[T]) MarshalTo(buf []byte) (int, error) {
	return MarshalToGeneric(l, buf)
}
