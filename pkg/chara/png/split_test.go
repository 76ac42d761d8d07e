package png

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	stdpng "image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, stdpng.Encode(&buf, img))
	return buf.Bytes()
}

func chunk(ctype string, data []byte) []byte {
	out := make([]byte, 8, 12+len(data))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(data)))
	copy(out[4:8], ctype)
	out = append(out, data...)
	crc := crc32.ChecksumIEEE(out[4:])
	return binary.BigEndian.AppendUint32(out, crc)
}

func TestSplit(t *testing.T) {
	img := tinyPNG(t)
	trailing := []byte{0x64, 0, 0, 0, 0xAB, 0xCD}
	file := append(append([]byte{}, img...), trailing...)

	card, err := Split(file)
	require.NoError(t, err)
	assert.Equal(t, img, card.Image)
	assert.Equal(t, trailing, card.Trailing)
	assert.Equal(t, len(img), card.TrailingOffset())

	replaced := card.Assemble([]byte{1, 2, 3})
	assert.Equal(t, img, replaced[:len(img)])
	assert.Equal(t, []byte{1, 2, 3}, replaced[len(img):])
}

func TestSplitNoTrailing(t *testing.T) {
	card, err := Split(tinyPNG(t))
	require.NoError(t, err)
	assert.Empty(t, card.Trailing)
}

func TestSplitErrors(t *testing.T) {
	img := tinyPNG(t)

	testCases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, cerrors.ErrNotPNG},
		{"bad signature", append([]byte("GIF89a.."), img[8:]...), cerrors.ErrNotPNG},
		{"signature only", []byte(Signature), cerrors.ErrTruncatedPNG},
		{"cut mid chunk", img[:len(img)-6], cerrors.ErrTruncatedPNG},
		{"no IEND", img[:len(img)-12], cerrors.ErrTruncatedPNG},
		{
			"length overflows",
			append([]byte(Signature), 0xFF, 0xFF, 0xFF, 0xF0, 'I', 'D', 'A', 'T'),
			cerrors.ErrTruncatedPNG,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split(tc.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestChunks(t *testing.T) {
	img := tinyPNG(t)
	// insert a tEXt chunk right after IHDR (8 + 25 bytes)
	text := chunk("tEXt", []byte("Comment\x00hello"))
	withText := append(append(append([]byte{}, img[:33]...), text...), img[33:]...)

	chunks, err := Chunks(withText)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 4)

	assert.Equal(t, "IHDR", chunks[0].Type)
	assert.Equal(t, uint32(13), chunks[0].Length)
	assert.Equal(t, "tEXt", chunks[1].Type)
	assert.Equal(t, "Comment", chunks[1].Keyword)
	assert.Equal(t, "IEND", chunks[len(chunks)-1].Type)
	for _, c := range chunks {
		assert.True(t, c.CRCValid, c.Type)
	}

	end, err := FindImageEnd(withText)
	require.NoError(t, err)
	assert.Equal(t, len(withText), end)
}
