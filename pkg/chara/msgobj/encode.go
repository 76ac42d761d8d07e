package msgobj

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Marshal encodes v using the shortest header for every integer, string,
// binary and container.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalAll encodes values back to back.
func MarshalAll(values []Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	for i, v := range values {
		if err := encode(enc, v); err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Encode writes v to w.
func Encode(w io.Writer, v Value) error {
	return encode(msgpack.NewEncoder(w), v)
}

func encode(enc *msgpack.Encoder, v Value) error {
	switch v.kind {
	case KindNil:
		return enc.EncodeNil()
	case KindBool:
		return enc.EncodeBool(v.b)
	case KindInt:
		return enc.EncodeInt(v.i)
	case KindUint:
		return enc.EncodeUint(v.u)
	case KindFloat:
		if v.wide {
			return enc.EncodeFloat64(v.f)
		}
		return enc.EncodeFloat32(float32(v.f))
	case KindStr:
		return enc.EncodeString(v.s)
	case KindBytes:
		raw := v.raw
		if raw == nil {
			raw = []byte{}
		}
		return enc.EncodeBytes(raw)
	case KindExt:
		if err := enc.EncodeExtHeader(v.ext, len(v.raw)); err != nil {
			return err
		}
		_, err := enc.Writer().Write(v.raw)
		return err
	case KindList:
		if err := enc.EncodeArrayLen(len(v.list)); err != nil {
			return err
		}
		for _, item := range v.list {
			if err := encode(enc, item); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		if err := enc.EncodeMapLen(len(v.pairs)); err != nil {
			return err
		}
		for _, p := range v.pairs {
			if err := encode(enc, p.Key); err != nil {
				return err
			}
			if err := encode(enc, p.Val); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("msgobj: cannot encode %s", v.kind)
	}
}
