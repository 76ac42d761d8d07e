// Package msgobj decodes and re-encodes MessagePack objects without a schema.
//
// Decoded data is held in Value, a closed tagged variant. Map entries keep
// their wire order and floats keep their wire width, so an unchanged Value
// encodes back to the same number of bytes it was decoded from whenever the
// producer used the shortest integer, string and container headers.
package msgobj

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindStr
	KindBytes
	KindList
	KindMap
	KindExt
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindExt:
		return "ext"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Pair is one map entry.
type Pair struct {
	Key Value
	Val Value
}

// Value is a decoded MessagePack object. The zero Value is nil.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	u     uint64
	f     float64
	wide  bool // float64 on the wire
	s     string
	raw   []byte // bytes or ext payload
	ext   int8
	list  []Value
	pairs []Pair
}

func Nil() Value { return Value{} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Uint(u uint64) Value { return Value{kind: KindUint, u: u} }
func Float32(f float32) Value { return Value{kind: KindFloat, f: float64(f)} }
func Float64(f float64) Value { return Value{kind: KindFloat, f: f, wide: true} }
func Str(s string) Value { return Value{kind: KindStr, s: s} }
func List(items ...Value) Value { return Value{kind: KindList, list: items} }
func Map(pairs ...Pair) Value { return Value{kind: KindMap, pairs: pairs} }

// Bytes returns a binary Value. A nil slice is stored as empty so that it
// encodes as bin rather than nil.
func Bytes(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: KindBytes, raw: b}
}

// Ext returns an extension Value with the given type code and payload.
func Ext(typ int8, data []byte) Value {
	if data == nil {
		data = []byte{}
	}
	return Value{kind: KindExt, ext: typ, raw: data}
}

// P builds a map entry keyed by a string.
func P(key string, val Value) Pair {
	return Pair{Key: Str(key), Val: val}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNil() bool { return v.kind == KindNil }
func (v Value) IsWide() bool { return v.kind == KindFloat && v.wide }

// Len returns the element count of a list or map, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.pairs)
	default:
		return 0
	}
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsInt returns the value as int64 for int and uint variants that fit.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindUint:
		if v.u > math.MaxInt64 {
			return 0, false
		}
		return int64(v.u), true
	default:
		return 0, false
	}
}

// AsNumber returns any numeric variant as float64.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	case KindUint:
		return float64(v.u), true
	default:
		return 0, false
	}
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindStr
}

// AsBytes returns the payload of a bytes Value.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return v.raw, true
}

// AsExt returns the type code and payload of an extension Value.
func (v Value) AsExt() (int8, []byte, bool) {
	if v.kind != KindExt {
		return 0, nil, false
	}
	return v.ext, v.raw, true
}

// Items returns the elements of a list. The slice aliases the Value.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// Pairs returns the entries of a map in wire order. The slice aliases the Value.
func (v Value) Pairs() []Pair {
	if v.kind != KindMap {
		return nil
	}
	return v.pairs
}

// Index returns element i of a list.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return Value{}, false
	}
	return v.list[i], true
}

// Get returns the value bound to a string key in a map.
func (v Value) Get(key string) (Value, bool) {
	for _, p := range v.Pairs() {
		if s, ok := p.Key.AsString(); ok && s == key {
			return p.Val, true
		}
	}
	return Value{}, false
}

// GetInt returns the value bound to an integer key in a map.
func (v Value) GetInt(key int64) (Value, bool) {
	for _, p := range v.Pairs() {
		if n, ok := p.Key.AsInt(); ok && n == key {
			return p.Val, true
		}
	}
	return Value{}, false
}

// With returns a copy of the map with key rebound to val, keeping the entry
// position. The receiver is not modified. ok is false if v is not a map or
// has no such key.
func (v Value) With(key string, val Value) (Value, bool) {
	if v.kind != KindMap {
		return v, false
	}
	for i, p := range v.pairs {
		if s, isStr := p.Key.AsString(); isStr && s == key {
			pairs := make([]Pair, len(v.pairs))
			copy(pairs, v.pairs)
			pairs[i].Val = val
			out := v
			out.pairs = pairs
			return out, true
		}
	}
	return v, false
}

// String renders the value in a compact debug notation.
func (v Value) String() string {
	var sb strings.Builder
	v.format(&sb)
	return sb.String()
}

func (v Value) format(sb *strings.Builder) {
	switch v.kind {
	case KindNil:
		sb.WriteString("nil")
	case KindBool:
		fmt.Fprintf(sb, "%t", v.b)
	case KindInt:
		fmt.Fprintf(sb, "%d", v.i)
	case KindUint:
		fmt.Fprintf(sb, "%d", v.u)
	case KindFloat:
		if v.wide {
			fmt.Fprintf(sb, "%g", v.f)
		} else {
			fmt.Fprintf(sb, "%gf", float32(v.f))
		}
	case KindStr:
		fmt.Fprintf(sb, "%q", v.s)
	case KindBytes:
		fmt.Fprintf(sb, "bin[%d]", len(v.raw))
	case KindExt:
		fmt.Fprintf(sb, "ext(%d)[%d]", v.ext, len(v.raw))
	case KindList:
		sb.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.format(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		for i, p := range v.pairs {
			if i > 0 {
				sb.WriteString(", ")
			}
			p.Key.format(sb)
			sb.WriteString(": ")
			p.Val.format(sb)
		}
		sb.WriteByte('}')
	}
}
