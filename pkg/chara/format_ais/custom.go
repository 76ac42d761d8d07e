package format_ais

import (
	"fmt"

	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
	"github.com/photo2card/hs2card/pkg/chara/msgobj"
)

// customFace is the Custom block of one record, decoded far enough to reach
// the face slider array.
type customFace struct {
	block  BlockDescriptor
	start  int
	end    int
	stream msgobj.Stream
	obj    int          // index of the object holding the face key
	face   msgobj.Value // the slider list
}

// locateCustomFace walks header, block table and Custom block. It returns a
// HeaderFieldError, ErrCorruptBlockTable, BlockNotFoundError,
// ErrBlockOutOfRange or ErrKeyNotFound.
func locateCustomFace(record []byte) (*customFace, error) {
	header, err := ParseHeader(record)
	if err != nil {
		return nil, err
	}
	table, err := DecodeBlockTable(header.BlockTable)
	if err != nil {
		return nil, err
	}
	block, err := table.Find(BlockCustom)
	if err != nil {
		return nil, err
	}
	start, end, err := block.Span(header.BasePosition, len(record))
	if err != nil {
		return nil, err
	}

	cf := &customFace{block: block, start: start, end: end, obj: -1}
	cf.stream = msgobj.DecodeStream(record[start:end])

	// the first object carrying the key decides
	for i, obj := range cf.stream.Objects {
		face, ok := obj.Get(FaceKey)
		if !ok {
			continue
		}
		if face.Kind() != msgobj.KindList || face.Len() < FaceFieldCount {
			return nil, fmt.Errorf("%w: object %d holds %s of %d elements, need %d",
				cerrors.ErrKeyNotFound, i, face.Kind(), face.Len(), FaceFieldCount)
		}
		cf.obj = i
		cf.face = face
		return cf, nil
	}

	if cf.stream.Err != nil {
		return nil, fmt.Errorf("%w: in %d decoded objects (%v)", cerrors.ErrKeyNotFound, len(cf.stream.Objects), cf.stream.Err)
	}
	return nil, fmt.Errorf("%w: in %d decoded objects", cerrors.ErrKeyNotFound, len(cf.stream.Objects))
}

// values converts the slider list to game values.
func (cf *customFace) values() (*FaceValues, error) {
	var out FaceValues
	for i := 0; i < FaceFieldCount; i++ {
		item, _ := cf.face.Index(i)
		f, ok := item.AsNumber()
		if !ok {
			return nil, fmt.Errorf("%w: element %d (%s) is %s", cerrors.ErrKeyNotFound, i, FaceFieldNames[i], item.Kind())
		}
		out[i] = FromStored(f)
	}
	return &out, nil
}

// encode re-encodes every decoded object with the face list replaced. It
// fails with a SizePreservationError when the result does not fill the block
// exactly.
func (cf *customFace) encode(face msgobj.Value) ([]byte, error) {
	objects := make([]msgobj.Value, len(cf.stream.Objects))
	copy(objects, cf.stream.Objects)
	updated, ok := objects[cf.obj].With(FaceKey, face)
	if !ok {
		return nil, fmt.Errorf("%w: object %d lost its face key", cerrors.ErrKeyNotFound, cf.obj)
	}
	objects[cf.obj] = updated

	blob, err := msgobj.MarshalAll(objects)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrCorruptObject, err)
	}
	if size := cf.end - cf.start; len(blob) != size {
		return nil, &cerrors.SizePreservationError{Block: cf.block.Name, Original: size, Encoded: len(blob)}
	}
	return blob, nil
}

// ReadCustomFace reads the face sliders from the Custom block.
func ReadCustomFace(record []byte) (*FaceValues, error) {
	cf, err := locateCustomFace(record)
	if err != nil {
		return nil, err
	}
	return cf.values()
}

// WriteCustomFace applies params to the Custom block and returns a new
// record. The input record is never modified. Slider values are clamped to
// the game range and stored as float32.
func WriteCustomFace(record []byte, params FaceParameterSet) ([]byte, []FieldWrite, error) {
	writes, err := params.plan()
	if err != nil {
		return nil, nil, err
	}
	out, err := writeCustomFace(record, writes)
	if err != nil {
		return nil, nil, err
	}
	return out, writes, nil
}

func writeCustomFace(record []byte, writes []FieldWrite) ([]byte, error) {
	cf, err := locateCustomFace(record)
	if err != nil {
		return nil, err
	}

	items := make([]msgobj.Value, cf.face.Len())
	copy(items, cf.face.Items())
	for _, w := range writes {
		items[w.Index] = msgobj.Float32(w.stored)
	}

	blob, err := cf.encode(msgobj.List(items...))
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(record))
	copy(out, record)
	copy(out[cf.start:cf.end], blob)
	return out, nil
}

// CheckCustomRoundTrip re-encodes the Custom block without changes and
// reports whether it keeps its size. A card failing this cannot be written
// through the block table.
func CheckCustomRoundTrip(record []byte) error {
	cf, err := locateCustomFace(record)
	if err != nil {
		return err
	}
	_, err = cf.encode(cf.face)
	return err
}
