package png

import (
	"bytes"
	"hash/crc32"
)

// Chunk describes one chunk of the image part.
type Chunk struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length uint32 `json:"length"`
	// Keyword is set for tEXt, zTXt and iTXt chunks.
	Keyword string `json:"keyword,omitempty"`
	// CRCValid reports whether the stored CRC matches type+data.
	CRCValid bool `json:"crc_valid"`

	data []byte
}

// Data returns the chunk payload. It aliases the card buffer.
func (c Chunk) Data() []byte {
	return c.data
}

// Chunks lists every chunk up to and including IEND.
func Chunks(data []byte) ([]Chunk, error) {
	var chunks []Chunk
	err := walkChunks(data, func(c Chunk) bool {
		switch c.Type {
		case "tEXt", "zTXt", "iTXt":
			if i := bytes.IndexByte(c.data, 0); i >= 0 {
				c.Keyword = string(c.data[:i])
			}
		}
		c.CRCValid = checkCRC(data, c)
		chunks = append(chunks, c)
		return true
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func checkCRC(data []byte, c Chunk) bool {
	start := c.Offset + 4
	end := c.Offset + chunkHeaderSize + int(c.Length)
	stored := uint32(data[end])<<24 | uint32(data[end+1])<<16 | uint32(data[end+2])<<8 | uint32(data[end+3])
	return crc32.ChecksumIEEE(data[start:end]) == stored
}
