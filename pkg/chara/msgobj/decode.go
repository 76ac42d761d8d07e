package msgobj

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
)

// MaxDepth bounds container nesting during decoding.
const MaxDepth = 64

// Unmarshal decodes exactly one object occupying all of data.
func Unmarshal(data []byte) (Value, error) {
	v, n, err := DecodeFirst(data)
	if err != nil {
		return Value{}, err
	}
	if n != len(data) {
		return Value{}, fmt.Errorf("%w: %d trailing bytes after object", cerrors.ErrCorruptObject, len(data)-n)
	}
	return v, nil
}

// DecodeFirst decodes one object from the start of data and returns it along
// with the number of bytes it occupied.
func DecodeFirst(data []byte) (Value, int, error) {
	br := bytes.NewReader(data)
	d := &decoder{dec: msgpack.NewDecoder(br), br: br}
	v, err := d.value(0)
	if err != nil {
		return Value{}, 0, err
	}
	return v, len(data) - br.Len(), nil
}

// Stream is the result of decoding back-to-back objects.
type Stream struct {
	Objects []Value
	// Offsets[i] is the start of Objects[i] within the input.
	Offsets []int
	// Consumed is the number of bytes covered by Objects.
	Consumed int
	// Err is the failure that stopped decoding before the end, if any.
	Err error
}

// DecodeStream decodes objects placed back to back until the input is
// exhausted or an object fails to decode. Objects decoded before a failure
// are kept.
func DecodeStream(data []byte) Stream {
	var s Stream
	for s.Consumed < len(data) {
		v, n, err := DecodeFirst(data[s.Consumed:])
		if err != nil {
			s.Err = fmt.Errorf("object %d at offset %d: %w", len(s.Objects), s.Consumed, err)
			break
		}
		s.Objects = append(s.Objects, v)
		s.Offsets = append(s.Offsets, s.Consumed)
		s.Consumed += n
	}
	return s
}

type decoder struct {
	dec *msgpack.Decoder
	br  *bytes.Reader
}

func (d *decoder) corrupt(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", cerrors.ErrCorruptObject, fmt.Sprintf(format, args...))
}

// wrap marks a library decoding error as object corruption.
func (d *decoder) wrap(err error) error {
	return fmt.Errorf("%w: %v", cerrors.ErrCorruptObject, err)
}

func (d *decoder) value(depth int) (Value, error) {
	if depth > MaxDepth {
		return Value{}, d.corrupt("nesting deeper than %d", MaxDepth)
	}

	c, err := d.dec.PeekCode()
	if err != nil {
		return Value{}, d.wrap(err)
	}

	switch {
	case c <= msgpcode.PosFixedNumHigh || c >= msgpcode.NegFixedNumLow:
		n, err := d.dec.DecodeInt64()
		if err != nil {
			return Value{}, d.wrap(err)
		}
		return Int(n), nil

	case c == msgpcode.Nil:
		if err := d.dec.DecodeNil(); err != nil {
			return Value{}, d.wrap(err)
		}
		return Nil(), nil

	case c == msgpcode.False || c == msgpcode.True:
		b, err := d.dec.DecodeBool()
		if err != nil {
			return Value{}, d.wrap(err)
		}
		return Bool(b), nil

	case c == msgpcode.Float:
		f, err := d.dec.DecodeFloat32()
		if err != nil {
			return Value{}, d.wrap(err)
		}
		return Float32(f), nil

	case c == msgpcode.Double:
		f, err := d.dec.DecodeFloat64()
		if err != nil {
			return Value{}, d.wrap(err)
		}
		return Float64(f), nil

	case c >= msgpcode.Uint8 && c <= msgpcode.Uint64:
		n, err := d.dec.DecodeUint64()
		if err != nil {
			return Value{}, d.wrap(err)
		}
		return Uint(n), nil

	case c >= msgpcode.Int8 && c <= msgpcode.Int64:
		n, err := d.dec.DecodeInt64()
		if err != nil {
			return Value{}, d.wrap(err)
		}
		return Int(n), nil

	case (c >= msgpcode.FixedStrLow && c <= msgpcode.FixedStrHigh) ||
		c == msgpcode.Str8 || c == msgpcode.Str16 || c == msgpcode.Str32:
		data, err := d.payload("string")
		if err != nil {
			return Value{}, err
		}
		return Str(string(data)), nil

	case c == msgpcode.Bin8 || c == msgpcode.Bin16 || c == msgpcode.Bin32:
		data, err := d.payload("bin")
		if err != nil {
			return Value{}, err
		}
		return Bytes(data), nil

	case (c >= msgpcode.FixedArrayLow && c <= msgpcode.FixedArrayHigh) ||
		c == msgpcode.Array16 || c == msgpcode.Array32:
		return d.list(depth)

	case (c >= msgpcode.FixedMapLow && c <= msgpcode.FixedMapHigh) ||
		c == msgpcode.Map16 || c == msgpcode.Map32:
		return d.mapping(depth)

	case (c >= msgpcode.FixExt1 && c <= msgpcode.FixExt16) ||
		c == msgpcode.Ext8 || c == msgpcode.Ext16 || c == msgpcode.Ext32:
		return d.extension()

	default:
		return Value{}, d.corrupt("reserved code 0x%02x", c)
	}
}

// payload reads a str or bin header and its bytes, refusing lengths that
// exceed the remaining input before allocating.
func (d *decoder) payload(what string) ([]byte, error) {
	n, err := d.dec.DecodeBytesLen()
	if err != nil {
		return nil, d.wrap(err)
	}
	if n < 0 || n > d.br.Len() {
		return nil, d.corrupt("%s of %d bytes with %d bytes left", what, n, d.br.Len())
	}
	data := make([]byte, n)
	if err := d.dec.ReadFull(data); err != nil {
		return nil, d.wrap(err)
	}
	return data, nil
}

func (d *decoder) list(depth int) (Value, error) {
	n, err := d.dec.DecodeArrayLen()
	if err != nil {
		return Value{}, d.wrap(err)
	}
	// every element takes at least one byte
	if n < 0 || n > d.br.Len() {
		return Value{}, d.corrupt("array of %d elements with %d bytes left", n, d.br.Len())
	}
	items := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		item, err := d.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	return List(items...), nil
}

func (d *decoder) mapping(depth int) (Value, error) {
	n, err := d.dec.DecodeMapLen()
	if err != nil {
		return Value{}, d.wrap(err)
	}
	if n < 0 || 2*n > d.br.Len() {
		return Value{}, d.corrupt("map of %d entries with %d bytes left", n, d.br.Len())
	}
	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		key, err := d.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		val, err := d.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		pairs = append(pairs, Pair{Key: key, Val: val})
	}
	return Map(pairs...), nil
}

func (d *decoder) extension() (Value, error) {
	typ, n, err := d.dec.DecodeExtHeader()
	if err != nil {
		return Value{}, d.wrap(err)
	}
	if n < 0 || n > d.br.Len() {
		return Value{}, d.corrupt("ext payload of %d bytes with %d bytes left", n, d.br.Len())
	}
	data := make([]byte, n)
	if err := d.dec.ReadFull(data); err != nil {
		return Value{}, d.wrap(err)
	}
	return Ext(typ, data), nil
}
