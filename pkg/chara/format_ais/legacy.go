package format_ais

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
)

// LegacyField is one entry of the fixed offset table.
type LegacyField struct {
	Offset int    // from the legacy base, see legacyBase
	Name   string // canonical face field name
}

// LegacyFields is the fixed offset table, one entry per slider in index
// order. Fields sit 5 bytes apart although each holds a 4-byte float.
var LegacyFields = func() [FaceFieldCount]LegacyField {
	var t [FaceFieldCount]LegacyField
	for i, name := range FaceFieldNames {
		t[i] = LegacyField{Offset: legacyFirstFieldSkip + legacyFieldStride*i, Name: name}
	}
	return t
}()

var legacyMarker = []byte(FaceKey)

// legacyBase returns the offset one byte past the first marker occurrence.
func legacyBase(record []byte) (int, error) {
	idx := bytes.Index(record, legacyMarker)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q", cerrors.ErrMarkerNotFound, FaceKey)
	}
	return idx + len(legacyMarker) + 1, nil
}

// legacyWindow returns the record range of field i, or ErrFieldOutOfRange.
func legacyWindow(base, i, recordLen int) (int, error) {
	pos := base + LegacyFields[i].Offset
	if pos+legacyFieldSize > recordLen {
		return 0, fmt.Errorf("%w: %s at %d, record is %d bytes",
			cerrors.ErrFieldOutOfRange, LegacyFields[i].Name, pos, recordLen)
	}
	return pos, nil
}

// ReadLegacyFace reads the sliders as little-endian float32 at the fixed
// offsets after the marker.
func ReadLegacyFace(record []byte) (*FaceValues, error) {
	base, err := legacyBase(record)
	if err != nil {
		return nil, err
	}
	var out FaceValues
	for i := range LegacyFields {
		pos, err := legacyWindow(base, i, len(record))
		if err != nil {
			return nil, err
		}
		f := math.Float32frombits(binary.LittleEndian.Uint32(record[pos:]))
		out[i] = FromStored(float64(f))
	}
	return &out, nil
}

// WriteLegacyFace patches the requested sliders at the fixed offsets and
// returns a new record. Bytes outside the patched windows are unchanged. A
// window past the record end fails the whole write.
func WriteLegacyFace(record []byte, params FaceParameterSet) ([]byte, []FieldWrite, error) {
	writes, err := params.plan()
	if err != nil {
		return nil, nil, err
	}
	out, err := writeLegacyFace(record, writes)
	if err != nil {
		return nil, nil, err
	}
	return out, writes, nil
}

func writeLegacyFace(record []byte, writes []FieldWrite) ([]byte, error) {
	base, err := legacyBase(record)
	if err != nil {
		return nil, err
	}
	positions := make([]int, len(writes))
	for n, w := range writes {
		if positions[n], err = legacyWindow(base, w.Index, len(record)); err != nil {
			return nil, err
		}
	}

	out := make([]byte, len(record))
	copy(out, record)
	for n, w := range writes {
		binary.LittleEndian.PutUint32(out[positions[n]:], math.Float32bits(w.stored))
	}
	return out, nil
}
