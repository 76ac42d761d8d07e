package format_ais

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo2card/hs2card/internal/cardfixture"
	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
	"github.com/photo2card/hs2card/pkg/chara/msgobj"
)

func writeCard(t *testing.T, record []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "card.png")
	require.NoError(t, os.WriteFile(path, cardfixture.Card(record), 0o600))
	return path
}

func TestReaderFaceRoundTrip(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{Name: "reader_test", Level: hclog.Trace})
	record := cardfixture.StructuredRecord(cardfixture.Uniform(0.5, FaceFieldCount)).Bytes()
	path := writeCard(t, record)

	r := NewReaderWithLogger(path, logger)
	header, table, err := r.BlockTable()
	require.NoError(t, err)
	assert.Equal(t, int32(ProductTag), header.ProductTag)
	assert.Equal(t, []string{"Custom", "Coordinate", "Parameter"}, table.Names())

	file, res, err := r.WriteFace(FaceParameterSet{"eyeVertical": 77})
	require.NoError(t, err)
	assert.Equal(t, LayoutStructured, res.Layout)

	original, err := r.File()
	require.NoError(t, err)
	require.Len(t, file, len(original))
	imageEnd := len(cardfixture.PNG())
	assert.Equal(t, original[:imageEnd], file[:imageEnd])

	out := filepath.Join(filepath.Dir(path), "out.png")
	require.NoError(t, WriteCardFile(out, file))

	read, err := NewReader(out).ReadFace()
	require.NoError(t, err)
	assert.Equal(t, 77, read.Values[19])

	rep, err := NewReader(out).Validate(true)
	require.NoError(t, err)
	assert.True(t, rep.OK)
}

func TestReaderErrors(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.png")).Record()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "not.png")
	require.NoError(t, os.WriteFile(path, []byte("GIF89a"), 0o600))
	_, err = NewReader(path).Record()
	assert.ErrorIs(t, err, cerrors.ErrNotPNG)

	// a failed write returns the attempts but no file
	record := cardfixture.NewRecord().AddBlock("Parameter", "0.0.5", []byte{0x80}).Bytes()
	file, res, err := NewReader(writeCard(t, record)).WriteFace(FaceParameterSet{"headWidth": 1})
	assert.ErrorIs(t, err, cerrors.ErrUnsupportedCardFormat)
	assert.Nil(t, file)
	require.NotNil(t, res)
	assert.Len(t, res.Attempts, 2)
}

func TestReaderExtensions(t *testing.T) {
	bones := boneListValue()
	raw, err := msgobj.Marshal(msgobj.Map(msgobj.P(BoneModifierGUID, msgobj.List(msgobj.Int(2), bones))))
	require.NoError(t, err)
	rec := cardfixture.StructuredRecord(cardfixture.Uniform(0.5, FaceFieldCount))
	rec.AddBlock(BlockExtension, "3", raw)

	r := NewReader(writeCard(t, rec.Bytes()))
	ext, err := r.Extensions()
	require.NoError(t, err)
	assert.Equal(t, []string{BoneModifierGUID}, ext.GUIDs())

	_, ok, err := r.LocateBoneModifiers()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSummarize(t *testing.T) {
	rec := cardfixture.StructuredRecord(cardfixture.Uniform(0.5, FaceFieldCount))
	record := rec.Bytes()
	path := writeCard(t, record)

	s, err := NewReader(path).Summarize(SummaryOptions{HexPreview: 8, Chunks: true})
	require.NoError(t, err)

	assert.Equal(t, len(cardfixture.PNG())+len(record), s.FileSize)
	assert.Equal(t, len(cardfixture.PNG()), s.TrailingOffset)
	assert.Equal(t, len(record), s.TrailingBytes)
	assert.Equal(t, "64000000", s.FirstBytesHex)
	require.NotNil(t, s.FirstUint32LE)
	assert.Equal(t, uint32(100), *s.FirstUint32LE)
	assert.Len(t, s.HexPreview, 16)
	assert.Equal(t, "IHDR", s.Chunks[0].Type)

	require.NotNil(t, s.Header)
	assert.Equal(t, "【AIS_Chara】", s.Header.Marker)
	assert.Equal(t, rec.BasePosition(), s.Header.BasePosition)
	assert.Len(t, s.Blocks, 3)
	assert.Equal(t, LayoutStructured, s.FaceLayout)
	assert.Empty(t, s.HeaderError)
	assert.Empty(t, s.ExtensionGUIDs)

	// a bare PNG still summarizes
	s, err = Summarize(cardfixture.PNG(), SummaryOptions{})
	require.NoError(t, err)
	assert.Zero(t, s.TrailingBytes)
	assert.Nil(t, s.FirstUint32LE)
	assert.NotEmpty(t, s.HeaderError)
	assert.NotEmpty(t, s.FaceError)

	_, err = Summarize([]byte("nope"), SummaryOptions{})
	assert.ErrorIs(t, err, cerrors.ErrNotPNG)
}

func TestWriteCardFileKeepsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not preserved on windows")
	}
	path := filepath.Join(t.TempDir(), "card.png")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))
	require.NoError(t, WriteCardFile(path, []byte("new contents")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new contents", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}
