// Package cardfixture builds synthetic character cards for tests.
//
// It encodes records on its own, without the codec packages, so tests compare
// the codec against an independent writer.
package cardfixture

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/photo2card/hs2card/pkg/chara/msgobj"
)

// FaceKey is the Custom block key of the slider array.
const FaceKey = "shapeValueFace"

// FaceFieldCount is the number of face sliders.
const FaceFieldCount = 59

// Block is one payload block of a record.
type Block struct {
	Name    string
	Version string
	Payload []byte
}

// Record describes a trailing record to build.
type Record struct {
	ProductTag int32
	Marker     string
	Version    string
	Language   int32
	UserID     string
	DataID     string
	Reserved   int64
	Blocks     []Block

	// ListKey names the descriptor list field; empty means "lstInfo".
	ListKey string
	// BareList writes the descriptor list without the wrapping map.
	BareList bool
	// ArrayDescriptors writes descriptors as [name, version, pos, size].
	ArrayDescriptors bool
	// SizeDelta is added to every recorded block size.
	SizeDelta int
}

// NewRecord returns a record with a valid header and no blocks.
func NewRecord() *Record {
	return &Record{
		ProductTag: 100,
		Marker:     "【AIS_Chara】",
		Version:    "1.0.0",
		Language:   0,
		UserID:     "fixture-user",
		DataID:     "fixture-data",
	}
}

// AddBlock appends a block and returns the record.
func (r *Record) AddBlock(name, version string, payload []byte) *Record {
	r.Blocks = append(r.Blocks, Block{Name: name, Version: version, Payload: payload})
	return r
}

// BlockTable encodes the descriptor table. Blocks are laid out back to back
// from position 0.
func (r *Record) BlockTable() []byte {
	items := make([]msgobj.Value, 0, len(r.Blocks))
	pos := 0
	for _, b := range r.Blocks {
		size := len(b.Payload) + r.SizeDelta
		if r.ArrayDescriptors {
			items = append(items, msgobj.List(
				msgobj.Str(b.Name), msgobj.Str(b.Version), msgobj.Int(int64(pos)), msgobj.Int(int64(size)),
			))
		} else {
			items = append(items, msgobj.Map(
				msgobj.P("name", msgobj.Str(b.Name)),
				msgobj.P("version", msgobj.Str(b.Version)),
				msgobj.P("pos", msgobj.Int(int64(pos))),
				msgobj.P("size", msgobj.Int(int64(size))),
			))
		}
		pos += len(b.Payload)
	}

	root := msgobj.List(items...)
	if !r.BareList {
		key := r.ListKey
		if key == "" {
			key = "lstInfo"
		}
		root = msgobj.Map(msgobj.P(key, root))
	}
	return mustMarshal(root)
}

// Header encodes the header with the given block table bytes.
func (r *Record) Header(table []byte) []byte {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, uint32(r.ProductTag))
	buf = AppendString(buf, r.Marker)
	buf = AppendString(buf, r.Version)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(r.Language))
	buf = AppendString(buf, r.UserID)
	buf = AppendString(buf, r.DataID)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(table)))
	buf = append(buf, table...)
	return binary.LittleEndian.AppendUint64(buf, uint64(r.Reserved))
}

// Bytes encodes the whole record.
func (r *Record) Bytes() []byte {
	out := r.Header(r.BlockTable())
	for _, b := range r.Blocks {
		out = append(out, b.Payload...)
	}
	return out
}

// BasePosition returns the offset where block payloads start.
func (r *Record) BasePosition() int {
	return len(r.Header(r.BlockTable()))
}

// AppendString appends a 7-bit length prefixed string.
func AppendString(buf []byte, s string) []byte {
	n := uint64(len(s))
	for n >= 0x80 {
		buf = append(buf, byte(n)|0x80)
		n >>= 7
	}
	return append(append(buf, byte(n)), s...)
}

// Uniform returns n float32 sliders all set to v.
func Uniform(v float32, n int) []msgobj.Value {
	out := make([]msgobj.Value, n)
	for i := range out {
		out[i] = msgobj.Float32(v)
	}
	return out
}

// FaceObject returns a map holding the slider list, preceded by a name field
// the way the game writes the face object.
func FaceObject(sliders []msgobj.Value) msgobj.Value {
	return msgobj.Map(
		msgobj.P("version", msgobj.Str("0.0.1")),
		msgobj.P(FaceKey, msgobj.List(sliders...)),
		msgobj.P("headId", msgobj.Int(0)),
	)
}

// CustomPayload encodes objects back to back.
func CustomPayload(objects ...msgobj.Value) []byte {
	out, err := msgobj.MarshalAll(objects)
	if err != nil {
		panic(err)
	}
	return out
}

// StructuredRecord returns a record whose Custom block holds a body object,
// the face object with the given sliders, and a trailing hair object.
func StructuredRecord(sliders []msgobj.Value) *Record {
	body := msgobj.Map(msgobj.P("shapeValueBody", msgobj.List(Uniform(0.5, 4)...)))
	hair := msgobj.Map(msgobj.P("parts", msgobj.List(msgobj.Int(1), msgobj.Int(2))))
	return NewRecord().
		AddBlock("Custom", "0.0.0", CustomPayload(FaceObject(sliders), body, hair)).
		AddBlock("Coordinate", "0.0.0", []byte{0x90}).
		AddBlock("Parameter", "0.0.5", mustMarshal(msgobj.Map(msgobj.P("fullname", msgobj.Str("fixture")))))
}

// LegacyRecord returns bytes holding the face key, an array16 header for 59
// elements, and 59 five-byte fields each holding a 0xca code and a
// little-endian float32. prefix and suffix surround the table.
func LegacyRecord(values []float32, prefix, suffix []byte) []byte {
	out := append([]byte{}, prefix...)
	out = append(out, FaceKey...)
	out = append(out, 0xdc, 0x00, byte(len(values)))
	for _, v := range values {
		out = append(out, 0xca)
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return append(out, suffix...)
}

// PNG returns a small valid PNG image.
func PNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 200, G: 40, B: 90, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Card returns PNG() followed by record.
func Card(record []byte) []byte {
	return append(PNG(), record...)
}

func mustMarshal(v msgobj.Value) []byte {
	out, err := msgobj.Marshal(v)
	if err != nil {
		panic(err)
	}
	return out
}
