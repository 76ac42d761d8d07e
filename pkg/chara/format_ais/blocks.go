package format_ais

import (
	"fmt"

	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
	"github.com/photo2card/hs2card/pkg/chara/msgobj"
)

// BlockDescriptor locates one block in the payload area. Pos is relative to
// the header's BasePosition.
type BlockDescriptor struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Pos     uint64 `json:"pos"`
	Size    uint64 `json:"size"`
}

// Span returns the absolute record range [start, end) of the block. It fails
// with ErrBlockOutOfRange when the block does not fit in a record of
// recordLen bytes.
func (d BlockDescriptor) Span(base, recordLen int) (int, int, error) {
	start := uint64(base) + d.Pos
	end := start + d.Size
	if start < d.Pos || end < start || end > uint64(recordLen) {
		return 0, 0, fmt.Errorf("%w: %q at base %d pos %d size %d, record is %d bytes",
			cerrors.ErrBlockOutOfRange, d.Name, base, d.Pos, d.Size, recordLen)
	}
	return int(start), int(end), nil
}

// BlockTable is the ordered list of block descriptors.
type BlockTable struct {
	Blocks []BlockDescriptor `json:"blocks"`
}

// Find returns the first block with the given name.
func (t *BlockTable) Find(name string) (BlockDescriptor, error) {
	for _, b := range t.Blocks {
		if b.Name == name {
			return b, nil
		}
	}
	return BlockDescriptor{}, &cerrors.BlockNotFoundError{Name: name}
}

// Names lists block names in table order.
func (t *BlockTable) Names() []string {
	names := make([]string, 0, len(t.Blocks))
	for _, b := range t.Blocks {
		names = append(names, b.Name)
	}
	return names
}

// DecodeBlockTable decodes the block table bytes. The object is either a map
// holding the descriptor list under lstInfo (or lst_info), or the list itself.
// Descriptors are maps with name, version, pos and size, or arrays holding the
// same four values in that order.
func DecodeBlockTable(raw []byte) (*BlockTable, error) {
	root, _, err := msgobj.DecodeFirst(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrCorruptBlockTable, err)
	}

	list, ok := blockList(root)
	if !ok {
		return nil, fmt.Errorf("%w: no descriptor list in %s", cerrors.ErrCorruptBlockTable, root.Kind())
	}

	table := &BlockTable{Blocks: make([]BlockDescriptor, 0, list.Len())}
	for i, item := range list.Items() {
		desc, err := decodeDescriptor(item)
		if err != nil {
			return nil, fmt.Errorf("%w: descriptor %d: %v", cerrors.ErrCorruptBlockTable, i, err)
		}
		table.Blocks = append(table.Blocks, desc)
	}
	return table, nil
}

// EncodeBlockTable is the inverse of DecodeBlockTable, producing the map form
// the game writes.
func EncodeBlockTable(t *BlockTable) ([]byte, error) {
	items := make([]msgobj.Value, 0, len(t.Blocks))
	for _, b := range t.Blocks {
		items = append(items, msgobj.Map(
			msgobj.P("name", msgobj.Str(b.Name)),
			msgobj.P("version", msgobj.Str(b.Version)),
			msgobj.P("pos", msgobj.Uint(b.Pos)),
			msgobj.P("size", msgobj.Uint(b.Size)),
		))
	}
	return msgobj.Marshal(msgobj.Map(msgobj.P(blockListKeys[0], msgobj.List(items...))))
}

func blockList(root msgobj.Value) (msgobj.Value, bool) {
	switch root.Kind() {
	case msgobj.KindList:
		return root, true
	case msgobj.KindMap:
		for _, key := range blockListKeys {
			if v, ok := root.Get(key); ok && v.Kind() == msgobj.KindList {
				return v, true
			}
		}
	}
	return msgobj.Value{}, false
}

func decodeDescriptor(v msgobj.Value) (BlockDescriptor, error) {
	var name, version, pos, size msgobj.Value
	switch v.Kind() {
	case msgobj.KindMap:
		var ok bool
		if name, ok = v.Get("name"); !ok {
			return BlockDescriptor{}, fmt.Errorf("missing name")
		}
		version, _ = v.Get("version")
		if pos, ok = v.Get("pos"); !ok {
			return BlockDescriptor{}, fmt.Errorf("missing pos")
		}
		if size, ok = v.Get("size"); !ok {
			return BlockDescriptor{}, fmt.Errorf("missing size")
		}
	case msgobj.KindList:
		if v.Len() < 4 {
			return BlockDescriptor{}, fmt.Errorf("array descriptor has %d elements", v.Len())
		}
		items := v.Items()
		name, version, pos, size = items[0], items[1], items[2], items[3]
	default:
		return BlockDescriptor{}, fmt.Errorf("descriptor is %s", v.Kind())
	}

	var d BlockDescriptor
	var ok bool
	if d.Name, ok = name.AsString(); !ok {
		return BlockDescriptor{}, fmt.Errorf("name is %s", name.Kind())
	}
	if !version.IsNil() {
		if d.Version, ok = version.AsString(); !ok {
			return BlockDescriptor{}, fmt.Errorf("version of %q is %s", d.Name, version.Kind())
		}
	}
	var err error
	if d.Pos, err = nonNegative(pos); err != nil {
		return BlockDescriptor{}, fmt.Errorf("pos of %q: %v", d.Name, err)
	}
	if d.Size, err = nonNegative(size); err != nil {
		return BlockDescriptor{}, fmt.Errorf("size of %q: %v", d.Name, err)
	}
	return d, nil
}

func nonNegative(v msgobj.Value) (uint64, error) {
	switch v.Kind() {
	case msgobj.KindUint:
		n, ok := v.AsInt()
		if !ok {
			return 0, fmt.Errorf("value out of range")
		}
		return uint64(n), nil
	case msgobj.KindInt:
		n, _ := v.AsInt()
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("value is %s", v.Kind())
	}
}
