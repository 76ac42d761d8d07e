package format_ais

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
	"github.com/photo2card/hs2card/pkg/chara/msgobj"
)

// PluginData is one entry of the extension block.
type PluginData struct {
	GUID    string       `json:"guid"`
	Version int64        `json:"version"`
	Data    msgobj.Value `json:"-" yaml:"-"`
}

// Extensions is the decoded extension block, in wire order.
type Extensions struct {
	Plugins []PluginData `json:"plugins"`
}

// GUIDs lists plugin identifiers in wire order.
func (e *Extensions) GUIDs() []string {
	out := make([]string, 0, len(e.Plugins))
	for _, p := range e.Plugins {
		out = append(out, p.GUID)
	}
	return out
}

// Find returns the plugin entry with the given identifier.
func (e *Extensions) Find(guid string) (PluginData, bool) {
	for _, p := range e.Plugins {
		if p.GUID == guid {
			return p, true
		}
	}
	return PluginData{}, false
}

// ReadExtensions locates the extension block through the block table and
// decodes it.
func ReadExtensions(record []byte) (*Extensions, error) {
	header, err := ParseHeader(record)
	if err != nil {
		return nil, err
	}
	table, err := DecodeBlockTable(header.BlockTable)
	if err != nil {
		return nil, err
	}
	block, err := table.Find(BlockExtension)
	if err != nil {
		return nil, err
	}
	start, end, err := block.Span(header.BasePosition, len(record))
	if err != nil {
		return nil, err
	}
	return DecodeExtensions(record[start:end])
}

// DecodeExtensions decodes a map from plugin identifier to PluginData. Each
// value is [version, data], a map keyed 0 and 1, or a map keyed version and
// data.
func DecodeExtensions(blob []byte) (*Extensions, error) {
	root, _, err := msgobj.DecodeFirst(blob)
	if err != nil {
		return nil, err
	}
	if root.Kind() != msgobj.KindMap {
		return nil, fmt.Errorf("%w: extension block is %s, want map", cerrors.ErrCorruptObject, root.Kind())
	}

	ext := &Extensions{Plugins: make([]PluginData, 0, root.Len())}
	for _, p := range root.Pairs() {
		guid, ok := p.Key.AsString()
		if !ok {
			guid = p.Key.String()
		}
		pd := PluginData{GUID: guid}
		version, vok := field(p.Val, 0, "version")
		data, dok := field(p.Val, 1, "data")
		if !vok && !dok {
			// unknown shape, keep the raw value
			pd.Data = p.Val
		} else {
			pd.Version, _ = version.AsInt()
			pd.Data = data
		}
		ext.Plugins = append(ext.Plugins, pd)
	}
	return ext, nil
}

// Vector3 is a per-axis modifier.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// BoneModifierData is one coordinate modifier of a bone.
type BoneModifierData struct {
	Scale    Vector3 `json:"scale"`
	Length   float64 `json:"length"`
	Position Vector3 `json:"position"`
	Rotation Vector3 `json:"rotation"`
}

// BoneModifier is one bone entry of the bone modifier plugin.
type BoneModifier struct {
	Name      string             `json:"name"`
	Modifiers []BoneModifierData `json:"modifiers"`
	Location  int64              `json:"location"`
}

var faceBoneKeywords = []string{"face", "chin", "cheek", "nose", "mouth", "eye", "head", "brow", "lip", "jaw"}

// IsFaceBone reports whether the bone name belongs to the head.
func (b BoneModifier) IsFaceBone() bool {
	n := strings.ToLower(b.Name)
	for _, k := range faceBoneKeywords {
		if strings.Contains(n, k) {
			return true
		}
	}
	return false
}

// BoneModifiers decodes the bone list carried by a plugin entry. Data may be
// encoded bytes, the list itself, or a map whose boneData field (or first
// field that decodes) holds either.
func (p PluginData) BoneModifiers() ([]BoneModifier, error) {
	return boneList(p.Data, 0)
}

func boneList(v msgobj.Value, depth int) ([]BoneModifier, error) {
	if depth > 2 {
		return nil, fmt.Errorf("%w: bone data nested too deep", cerrors.ErrCorruptObject)
	}
	switch v.Kind() {
	case msgobj.KindBytes:
		raw, _ := v.AsBytes()
		inner, _, err := msgobj.DecodeFirst(raw)
		if err != nil {
			return nil, err
		}
		return boneList(inner, depth+1)
	case msgobj.KindList:
		return DecodeBoneModifiers(v)
	case msgobj.KindMap:
		if inner, ok := v.Get("boneData"); ok {
			return boneList(inner, depth+1)
		}
		for _, p := range v.Pairs() {
			if mods, err := boneList(p.Val, depth+1); err == nil {
				return mods, nil
			}
		}
		return nil, fmt.Errorf("%w: no bone list in plugin data map", cerrors.ErrCorruptObject)
	default:
		return nil, fmt.Errorf("%w: plugin data is %s", cerrors.ErrCorruptObject, v.Kind())
	}
}

// DecodeBoneModifiers decodes a list of [name, [modifier...], location]
// records. Modifiers are [scale, length, position, rotation]; vectors are
// [x, y, z] or maps keyed x, y and z.
func DecodeBoneModifiers(v msgobj.Value) ([]BoneModifier, error) {
	if v.Kind() != msgobj.KindList {
		return nil, fmt.Errorf("%w: bone list is %s", cerrors.ErrCorruptObject, v.Kind())
	}
	out := make([]BoneModifier, 0, v.Len())
	for i, item := range v.Items() {
		b, err := decodeBone(item)
		if err != nil {
			return nil, fmt.Errorf("%w: bone %d: %v", cerrors.ErrCorruptObject, i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func decodeBone(v msgobj.Value) (BoneModifier, error) {
	var b BoneModifier
	name, ok := field(v, 0, "name")
	if !ok {
		return b, fmt.Errorf("missing name")
	}
	if b.Name, ok = name.AsString(); !ok {
		return b, fmt.Errorf("name is %s", name.Kind())
	}
	if loc, ok := field(v, 2, "location"); ok {
		b.Location, _ = loc.AsInt()
	}
	coords, ok := field(v, 1, "modifiers")
	if !ok || coords.IsNil() {
		return b, nil
	}
	if coords.Kind() != msgobj.KindList {
		return b, fmt.Errorf("modifiers of %q are %s", b.Name, coords.Kind())
	}
	for j, c := range coords.Items() {
		d, err := decodeModifier(c)
		if err != nil {
			return b, fmt.Errorf("modifier %d of %q: %v", j, b.Name, err)
		}
		b.Modifiers = append(b.Modifiers, d)
	}
	return b, nil
}

func decodeModifier(v msgobj.Value) (BoneModifierData, error) {
	var d BoneModifierData
	var err error
	if s, ok := field(v, 0, "scale"); ok {
		if d.Scale, err = decodeVector(s); err != nil {
			return d, fmt.Errorf("scale: %v", err)
		}
	}
	if l, ok := field(v, 1, "length"); ok {
		d.Length, _ = l.AsNumber()
	}
	if p, ok := field(v, 2, "position"); ok {
		if d.Position, err = decodeVector(p); err != nil {
			return d, fmt.Errorf("position: %v", err)
		}
	}
	if r, ok := field(v, 3, "rotation"); ok {
		if d.Rotation, err = decodeVector(r); err != nil {
			return d, fmt.Errorf("rotation: %v", err)
		}
	}
	return d, nil
}

func decodeVector(v msgobj.Value) (Vector3, error) {
	var out Vector3
	axes := []*float64{&out.X, &out.Y, &out.Z}
	for i, name := range []string{"x", "y", "z"} {
		c, ok := field(v, i, name)
		if !ok {
			return out, fmt.Errorf("missing %s in %s", name, v.Kind())
		}
		f, ok := c.AsNumber()
		if !ok {
			return out, fmt.Errorf("%s is %s", name, c.Kind())
		}
		*axes[i] = f
	}
	return out, nil
}

// field reads element i of a list, or the entry keyed i, "i" or name of a map.
func field(v msgobj.Value, i int, name string) (msgobj.Value, bool) {
	switch v.Kind() {
	case msgobj.KindList:
		return v.Index(i)
	case msgobj.KindMap:
		if f, ok := v.GetInt(int64(i)); ok {
			return f, true
		}
		if f, ok := v.Get(strconv.Itoa(i)); ok {
			return f, true
		}
		return v.Get(name)
	}
	return msgobj.Value{}, false
}

// HeuristicMatch is a bone list found by scanning the raw record.
type HeuristicMatch struct {
	Offset    int            `json:"offset"`
	Length    int            `json:"length"`
	Method    string         `json:"method"`
	Modifiers []BoneModifier `json:"modifiers"`
}

// LocateBoneModifiersHeuristic scans the record for the bone modifier plugin
// identifier and tries to decode a bone list right after it, first behind a
// little-endian uint32 length at a few small skips, then at every position in
// a short window. It is independent of the block table and returns false when
// nothing decodes.
func LocateBoneModifiersHeuristic(record []byte) (*HeuristicMatch, bool) {
	idx := bytes.Index(record, []byte(BoneModifierGUID))
	if idx < 0 {
		return nil, false
	}
	after := idx + len(BoneModifierGUID)

	for _, skip := range heuristicPrefixSkips {
		pos := after + skip
		if pos+4 > len(record) {
			continue
		}
		n := int(binary.LittleEndian.Uint32(record[pos:]))
		if n <= 0 || n >= heuristicMaxPayload || pos+4+n > len(record) {
			continue
		}
		v, err := msgobj.Unmarshal(record[pos+4 : pos+4+n])
		if err != nil || v.Kind() != msgobj.KindList {
			continue
		}
		if mods, err := DecodeBoneModifiers(v); err == nil {
			return &HeuristicMatch{
				Offset:    pos + 4,
				Length:    n,
				Method:    fmt.Sprintf("length-prefix+%d", skip),
				Modifiers: mods,
			}, true
		}
	}

	limit := after + heuristicSearchSpan
	if limit > len(record)-4 {
		limit = len(record) - 4
	}
	for start := after; start < limit; start++ {
		v, n, err := msgobj.DecodeFirst(record[start:])
		if err != nil || v.Kind() != msgobj.KindList || v.Len() == 0 {
			continue
		}
		first, _ := v.Index(0)
		if !looksLikeBone(first) {
			continue
		}
		if mods, err := DecodeBoneModifiers(v); err == nil {
			return &HeuristicMatch{Offset: start, Length: n, Method: "positional", Modifiers: mods}, true
		}
	}
	return nil, false
}

func looksLikeBone(v msgobj.Value) bool {
	switch v.Kind() {
	case msgobj.KindList:
		return true
	case msgobj.KindMap:
		_, ok := field(v, 0, "name")
		return ok
	}
	return false
}
