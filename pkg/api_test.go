package pkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo2card/hs2card/internal/cardfixture"
	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
	"github.com/photo2card/hs2card/pkg/chara/format_ais"
)

// headerless starts like a record but carries a corrupt marker length.
var headerless = []byte{0x64, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 'x'}

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Name: "api_test", Level: hclog.Trace})
}

func writeCard(t *testing.T, record []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "card.png")
	require.NoError(t, os.WriteFile(path, cardfixture.Card(record), 0o600))
	return path
}

func structuredCard(t *testing.T) string {
	record := cardfixture.StructuredRecord(cardfixture.Uniform(0.5, cardfixture.FaceFieldCount)).Bytes()
	return writeCard(t, record)
}

func TestWriteThenReadFace(t *testing.T) {
	path := structuredCard(t)
	out := filepath.Join(filepath.Dir(path), "edited.png")

	res, err := WriteFaceWithLogger(path, out, format_ais.FaceParameterSet{"eyeVertical": 77, "noseHeight": -20}, "auto", testLogger())
	require.NoError(t, err)
	assert.Equal(t, format_ais.LayoutStructured, res.Layout)
	assert.Len(t, res.Writes, 2)

	read, err := ReadFaceWithLogger(out, "", testLogger())
	require.NoError(t, err)
	eye, ok := read.Values.Get("eyeVertical")
	require.True(t, ok)
	assert.Equal(t, 77, eye)
	nose, ok := read.Values.Get("noseHeight")
	require.True(t, ok)
	assert.Equal(t, -20, nose)

	before, err := os.Stat(path)
	require.NoError(t, err)
	after, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, before.Size(), after.Size())
}

func TestWriteFaceLegacyFallback(t *testing.T) {
	values := make([]float32, cardfixture.FaceFieldCount)
	path := writeCard(t, cardfixture.LegacyRecord(values, headerless, []byte("tail")))

	res, err := WriteFaceWithLogger(path, path, format_ais.FaceParameterSet{"headWidth": 150}, "structured|legacy", testLogger())
	require.NoError(t, err)
	assert.Equal(t, format_ais.LayoutLegacy, res.Layout)
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, format_ais.LayoutStructured, res.Attempts[0].Layout)

	read, err := ReadFace(path, "legacy")
	require.NoError(t, err)
	width, _ := read.Values.Get("headWidth")
	assert.Equal(t, 150, width)
}

func TestWriteFaceErrors(t *testing.T) {
	path := structuredCard(t)
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		output string
		params format_ais.FaceParameterSet
		chain  string
		want   error
	}{
		{"unknown field", path, format_ais.FaceParameterSet{"noSuchSlider": 1}, "auto", cerrors.ErrUnknownField},
		{"missing output", "", format_ais.FaceParameterSet{"eyeVertical": 1}, "auto", nil},
		{"bad chain", path, format_ais.FaceParameterSet{"eyeVertical": 1}, "bogus", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := WriteFaceWithLogger(path, tc.output, tc.params, tc.chain, testLogger())
			require.Error(t, err)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, original, after)
		})
	}
}

func TestValidateCard(t *testing.T) {
	report, err := ValidateCardWithLogger(structuredCard(t), true, testLogger())
	require.NoError(t, err)
	assert.True(t, report.OK)
	assert.Empty(t, report.Failed())

	values := make([]float32, cardfixture.FaceFieldCount)
	report, err = ValidateCardWithLogger(writeCard(t, cardfixture.LegacyRecord(values, headerless, nil)), false, testLogger())
	require.Error(t, err)
	require.NotNil(t, report)
	assert.False(t, report.OK)

	_, err = ValidateCardWithLogger(filepath.Join(t.TempDir(), "missing.png"), false, testLogger())
	assert.Error(t, err)
}

func TestInspectAndExtensions(t *testing.T) {
	path := structuredCard(t)

	summary, err := InspectCard(path, format_ais.SummaryOptions{HexPreview: 16, Chunks: true})
	require.NoError(t, err)
	assert.Equal(t, len(cardfixture.PNG()), summary.TrailingOffset)
	assert.Equal(t, format_ais.LayoutStructured, summary.FaceLayout)

	_, err = CardExtensions(path)
	var notFound *cerrors.BlockNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, format_ais.BlockExtension, notFound.Name)
}
