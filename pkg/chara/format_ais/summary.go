package format_ais

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/photo2card/hs2card/pkg/chara/png"
)

// HeaderSummary is the JSON view of a RecordHeader.
type HeaderSummary struct {
	ProductTag       int32  `json:"product_tag"`
	Marker           string `json:"marker"`
	Version          string `json:"version"`
	Language         int32  `json:"language"`
	UserID           string `json:"user_id"`
	DataID           string `json:"data_id"`
	BlockTableLength int    `json:"block_table_length"`
	BasePosition     int    `json:"base_position"`
}

// CardSummary describes a card file without modifying it. Sections that
// fail to decode leave an error string instead of aborting the summary.
type CardSummary struct {
	FileSize       int         `json:"file_size"`
	TrailingOffset int         `json:"trailing_offset"`
	TrailingBytes  int         `json:"trailing_bytes"`
	FirstBytesHex  string      `json:"trailing_first_4_bytes_hex"`
	FirstUint32LE  *uint32     `json:"first_uint32_le,omitempty"`
	HexPreview     string      `json:"trailing_hex_preview,omitempty"`
	Chunks         []png.Chunk `json:"chunks,omitempty"`

	Header      *HeaderSummary `json:"header,omitempty"`
	HeaderError string         `json:"header_error,omitempty"`

	Blocks          []BlockDescriptor `json:"blocks,omitempty"`
	BlockTableError string            `json:"block_table_error,omitempty"`

	FaceLayout     string   `json:"face_layout,omitempty"`
	FaceError      string   `json:"face_error,omitempty"`
	ExtensionGUIDs []string `json:"extension_guids,omitempty"`
}

// SummaryOptions tunes Summarize.
type SummaryOptions struct {
	// HexPreview is the number of leading trailing-record bytes to dump.
	HexPreview int
	// Chunks lists the PNG chunks of the image part.
	Chunks bool
}

// Summarize splits the card and describes every part it can decode. Only a
// file that is not a complete PNG is an error.
func Summarize(file []byte, opts SummaryOptions) (*CardSummary, error) {
	card, err := png.Split(file)
	if err != nil {
		return nil, err
	}
	record := card.Trailing

	s := &CardSummary{
		FileSize:       len(file),
		TrailingOffset: card.TrailingOffset(),
		TrailingBytes:  len(record),
	}
	head := record
	if len(head) > 4 {
		head = head[:4]
	}
	s.FirstBytesHex = hex.EncodeToString(head)
	if len(record) >= 4 {
		v := binary.LittleEndian.Uint32(record)
		s.FirstUint32LE = &v
	}
	if opts.HexPreview > 0 {
		n := opts.HexPreview
		if n > len(record) {
			n = len(record)
		}
		s.HexPreview = hex.EncodeToString(record[:n])
	}
	if opts.Chunks {
		if s.Chunks, err = png.Chunks(file); err != nil {
			return nil, err
		}
	}

	if res, err := NewFaceCodec(nil).Read(record); err == nil {
		s.FaceLayout = res.Layout
	} else {
		s.FaceError = err.Error()
	}

	header, err := ParseHeader(record)
	if err != nil {
		s.HeaderError = err.Error()
		return s, nil
	}
	s.Header = &HeaderSummary{
		ProductTag:       header.ProductTag,
		Marker:           header.Marker,
		Version:          header.Version,
		Language:         header.Language,
		UserID:           header.UserID,
		DataID:           header.DataID,
		BlockTableLength: len(header.BlockTable),
		BasePosition:     header.BasePosition,
	}

	table, err := DecodeBlockTable(header.BlockTable)
	if err != nil {
		s.BlockTableError = err.Error()
		return s, nil
	}
	s.Blocks = table.Blocks

	if ext, err := ReadExtensions(record); err == nil {
		s.ExtensionGUIDs = ext.GUIDs()
	}
	return s, nil
}
