// Package format_ais implements the AIS character card record: the header,
// the block table, the face slider codecs (structured and legacy), the
// plugin extension block and a structural validator.
package format_ais

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
)

// Header field names, in wire order
const (
	FieldProductTag       = "productTag"
	FieldMarker           = "marker"
	FieldVersion          = "version"
	FieldLanguage         = "language"
	FieldUserID           = "userId"
	FieldDataID           = "dataId"
	FieldBlockTableLength = "blockTableLength"
	FieldBlockTable       = "blockTable"
	FieldReserved         = "reserved"
)

var (
	errCorruptLength = errors.New("corrupt 7-bit length prefix")
	errInvalidUTF8   = errors.New("string is not valid UTF-8")
	errNegativeCount = errors.New("negative byte count")
)

// RecordHeader is the fixed-order header at the start of a trailing record.
type RecordHeader struct {
	ProductTag int32
	Marker     string
	Version    string
	Language   int32
	UserID     string
	DataID     string
	BlockTable []byte
	Reserved   int64

	// BasePosition is the record offset right after Reserved. Block
	// positions are relative to it. Set by ParseHeader, ignored by Pack.
	BasePosition int
}

// Pack serializes the header. The block table length is taken from BlockTable.
func (h *RecordHeader) Pack() []byte {
	buf := make([]byte, 0, 64+len(h.BlockTable))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.ProductTag))
	buf = appendString(buf, h.Marker)
	buf = appendString(buf, h.Version)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.Language))
	buf = appendString(buf, h.UserID)
	buf = appendString(buf, h.DataID)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(h.BlockTable)))
	buf = append(buf, h.BlockTable...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(h.Reserved))
	return buf
}

// ParseHeader reads the header fields in order. The first field that cannot
// be read aborts parsing with a *errors.HeaderFieldError naming it. The
// returned BlockTable aliases record.
func ParseHeader(record []byte) (*RecordHeader, error) {
	r := &fieldReader{data: record}
	h := &RecordHeader{}
	var err error

	if h.ProductTag, err = r.int32(FieldProductTag); err != nil {
		return nil, err
	}
	if h.Marker, err = r.string(FieldMarker); err != nil {
		return nil, err
	}
	if h.Version, err = r.string(FieldVersion); err != nil {
		return nil, err
	}
	if h.Language, err = r.int32(FieldLanguage); err != nil {
		return nil, err
	}
	if h.UserID, err = r.string(FieldUserID); err != nil {
		return nil, err
	}
	if h.DataID, err = r.string(FieldDataID); err != nil {
		return nil, err
	}
	count, err := r.int32(FieldBlockTableLength)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, r.fail(FieldBlockTableLength, r.pos-4, errNegativeCount)
	}
	if h.BlockTable, err = r.bytes(FieldBlockTable, int(count)); err != nil {
		return nil, err
	}
	if h.Reserved, err = r.int64(FieldReserved); err != nil {
		return nil, err
	}
	h.BasePosition = r.pos
	return h, nil
}

// fieldReader walks header fields. Every failure names the field.
type fieldReader struct {
	data []byte
	pos  int
}

func (r *fieldReader) fail(field string, offset int, err error) error {
	return &cerrors.HeaderFieldError{Field: field, Offset: offset, Err: err}
}

func (r *fieldReader) remaining() int {
	return len(r.data) - r.pos
}

func (r *fieldReader) int32(field string) (int32, error) {
	if r.remaining() < 4 {
		return 0, r.fail(field, r.pos, io.ErrUnexpectedEOF)
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *fieldReader) int64(field string) (int64, error) {
	if r.remaining() < 8 {
		return 0, r.fail(field, r.pos, io.ErrUnexpectedEOF)
	}
	v := int64(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *fieldReader) bytes(field string, n int) ([]byte, error) {
	if n > r.remaining() {
		return nil, r.fail(field, r.pos, fmt.Errorf("need %d bytes, %d left: %w", n, r.remaining(), io.ErrUnexpectedEOF))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// string reads a 7-bit length prefixed UTF-8 string.
func (r *fieldReader) string(field string) (string, error) {
	start := r.pos
	n, width, err := readLength(r.data[r.pos:])
	if err != nil {
		return "", r.fail(field, start, err)
	}
	r.pos += width
	b, err := r.bytes(field, n)
	if err != nil {
		r.pos = start
		return "", err
	}
	if !utf8.Valid(b) {
		r.pos = start
		return "", r.fail(field, start, errInvalidUTF8)
	}
	return string(b), nil
}

// readLength decodes a little-endian base-128 length prefix and returns the
// length and the number of prefix bytes.
func readLength(data []byte) (int, int, error) {
	var length uint64
	shift := 0
	for i, b := range data {
		length |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			if length > uint64(len(data)) {
				return 0, 0, fmt.Errorf("length %d exceeds record: %w", length, io.ErrUnexpectedEOF)
			}
			return int(length), i + 1, nil
		}
		shift += 7
		if shift >= maxVarintShift {
			return 0, 0, errCorruptLength
		}
	}
	return 0, 0, io.ErrUnexpectedEOF
}

func appendString(buf []byte, s string) []byte {
	n := uint64(len(s))
	for n >= 0x80 {
		buf = append(buf, byte(n)|0x80)
		n >>= 7
	}
	buf = append(buf, byte(n))
	return append(buf, s...)
}
