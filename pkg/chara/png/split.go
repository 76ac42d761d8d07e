// Package png splits a character card into its PNG image and the opaque
// record appended after the IEND chunk.
//
// Layout of the image part follows https://www.w3.org/TR/png/#5DataRep:
// an 8-byte signature, then chunks of
//
//	length (4, big-endian) | type (4) | data (length) | CRC (4)
//
// ending with IEND. Nothing here decodes or re-encodes image data.
package png

import (
	"bytes"
	"encoding/binary"
	"fmt"

	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
)

// Signature is the fixed 8-byte PNG file signature.
const Signature = "\x89PNG\r\n\x1a\n"

const (
	chunkHeaderSize = 8 // length + type
	chunkCRCSize    = 4
)

// Card is a card file split at the end of its IEND chunk. Image is never
// modified by this module; only Trailing is replaced on writes.
type Card struct {
	Image    []byte
	Trailing []byte
}

// Split locates the end of the IEND chunk and returns both parts. The
// returned slices alias data.
func Split(data []byte) (*Card, error) {
	end, err := FindImageEnd(data)
	if err != nil {
		return nil, err
	}
	return &Card{Image: data[:end], Trailing: data[end:]}, nil
}

// FindImageEnd returns the offset of the first byte after the IEND chunk's CRC.
func FindImageEnd(data []byte) (int, error) {
	var end int
	err := walkChunks(data, func(c Chunk) bool {
		if c.Type == "IEND" {
			end = c.Offset + chunkHeaderSize + int(c.Length) + chunkCRCSize
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if end == 0 {
		return 0, fmt.Errorf("%w: no IEND chunk", cerrors.ErrTruncatedPNG)
	}
	return end, nil
}

// Assemble returns a new buffer holding the unchanged image followed by
// trailing.
func (c *Card) Assemble(trailing []byte) []byte {
	out := make([]byte, 0, len(c.Image)+len(trailing))
	out = append(out, c.Image...)
	return append(out, trailing...)
}

// TrailingOffset is the file offset at which the trailing record starts.
func (c *Card) TrailingOffset() int {
	return len(c.Image)
}

// walkChunks calls fn for every chunk until fn returns false or IEND has been
// visited. It fails when a chunk claims more bytes than remain.
func walkChunks(data []byte, fn func(Chunk) bool) error {
	if len(data) < len(Signature) || !bytes.Equal(data[:len(Signature)], []byte(Signature)) {
		return cerrors.ErrNotPNG
	}

	pos := len(Signature)
	for {
		if pos+chunkHeaderSize > len(data) {
			return fmt.Errorf("%w: chunk header at offset %d", cerrors.ErrTruncatedPNG, pos)
		}
		length := binary.BigEndian.Uint32(data[pos : pos+4])
		ctype := string(data[pos+4 : pos+8])
		next := uint64(pos) + chunkHeaderSize + uint64(length) + chunkCRCSize
		if next > uint64(len(data)) {
			return fmt.Errorf("%w: %s chunk at offset %d claims %d bytes", cerrors.ErrTruncatedPNG, ctype, pos, length)
		}

		c := Chunk{Type: ctype, Offset: pos, Length: length}
		c.data = data[pos+chunkHeaderSize : pos+chunkHeaderSize+int(length)]
		if !fn(c) || ctype == "IEND" {
			return nil
		}
		pos = int(next)
	}
}
