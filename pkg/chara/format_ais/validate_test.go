package format_ais

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo2card/hs2card/internal/cardfixture"
)

func failedFields(rep *ValidationReport) []string {
	var out []string
	for _, c := range rep.Failed() {
		out = append(out, c.Field)
	}
	return out
}

func TestValidateRecordPasses(t *testing.T) {
	rec := cardfixture.StructuredRecord(cardfixture.Uniform(0.5, FaceFieldCount))
	record := rec.Bytes()

	rep := ValidateRecord(record)
	assert.True(t, rep.OK, "failed: %v", failedFields(rep))
	assert.Empty(t, rep.Error)
	assert.Equal(t, rec.BasePosition(), rep.BasePosition)
	assert.Equal(t, len(record), rep.RecordLength)
	assert.Len(t, rep.Checks, 9)

	deep := ValidateRecordDeep(record)
	assert.True(t, deep.OK, "failed: %v", failedFields(deep))
	assert.Greater(t, len(deep.Checks), len(rep.Checks))
}

// TestValidateWrittenRecords checks that records produced by the writer stay valid
func TestValidateWrittenRecords(t *testing.T) {
	record := cardfixture.StructuredRecord(cardfixture.Uniform(0.5, FaceFieldCount)).Bytes()
	codec := NewFaceCodec(nil)

	for _, params := range []FaceParameterSet{
		{"headWidth": -100},
		{"eye_size": 200, "mouth_width": 0},
		{"lowEarShape": 37, "eyeVertical": 50, "noseTipSize": -12},
	} {
		res, err := codec.Write(record, params)
		require.NoError(t, err)
		rep := ValidateRecordDeep(res.Record)
		assert.True(t, rep.OK, "params %v failed: %v", params, failedFields(rep))
	}
}

func TestValidateRecordCollectsFailures(t *testing.T) {
	h := &RecordHeader{
		ProductTag: 99,
		Marker:     "KoiKatuChara",
		Version:    "100",
		BlockTable: []byte{},
	}
	rep := ValidateRecord(h.Pack())
	assert.False(t, rep.OK)
	assert.Empty(t, rep.Error, "walk must complete")
	assert.Equal(t, []string{FieldProductTag, FieldMarker, FieldVersion, FieldBlockTableLength}, failedFields(rep))

	h = &RecordHeader{ProductTag: ProductTag, Marker: "AIS_Chara", Version: "1.0.0.0.0.0.0.0.0", BlockTable: []byte{0x90}}
	rep = ValidateRecord(h.Pack())
	assert.Equal(t, []string{FieldVersion}, failedFields(rep))
}

func TestValidateRecordTruncated(t *testing.T) {
	record := cardfixture.NewRecord().Bytes()

	testCases := []struct {
		name   string
		cut    int
		checks int
	}{
		{"empty", 0, 0},
		{"after tag", 4, 1},
		{"in reserved", len(record) - 2, 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rep := ValidateRecord(record[:tc.cut])
			assert.False(t, rep.OK)
			assert.NotEmpty(t, rep.Error)
			assert.Len(t, rep.Checks, tc.checks)
			assert.Equal(t, -1, rep.BasePosition)
		})
	}
}

func TestValidateRecordDeepFailures(t *testing.T) {
	rec := cardfixture.StructuredRecord(cardfixture.Uniform(0.5, FaceFieldCount))
	rec.SizeDelta = 1
	rep := ValidateRecordDeep(rec.Bytes())
	assert.False(t, rep.OK)
	assert.Empty(t, rep.Error)
	// only the last block runs past the record end
	assert.Equal(t, []string{"block.Parameter"}, failedFields(rep))

	rec = cardfixture.NewRecord()
	rec.Blocks = nil
	raw := rec.Header([]byte{0xc1})
	rep = ValidateRecordDeep(raw)
	assert.False(t, rep.OK)
	assert.Equal(t, []string{"blockTable.decode"}, failedFields(rep))

	// bin32 header claiming 2 GiB in a 6-byte table
	raw = rec.Header([]byte{0xc6, 0x7f, 0xff, 0xff, 0xff, 0x00})
	rep = ValidateRecordDeep(raw)
	assert.False(t, rep.OK)
	assert.Equal(t, []string{"blockTable.decode"}, failedFields(rep))
}
