package format_ais

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParameters(t *testing.T) {
	list := make([]string, FaceFieldCount)
	for i := range list {
		list[i] = "50"
	}
	list[19] = "12.6"

	testCases := []struct {
		name string
		doc  string
		want FaceParameterSet
	}{
		{"flat yaml", "eyeVertical: 10\nhead_width: -20\n", FaceParameterSet{"eyeVertical": 10, "head_width": -20}},
		{"flat json", `{"eyeVertical": 10.4}`, FaceParameterSet{"eyeVertical": 10}},
		{
			"chareditor_read wrapper",
			`{"source": "card.png", "chareditor_read": {"headWidth": 1}, "mapped_params": {"eye_span": 2}}`,
			FaceParameterSet{"headWidth": 1},
		},
		{"mapped_params wrapper", "mapped_params:\n  eye_span: 2\nnote: text\n", FaceParameterSet{"eye_span": 2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseParameters([]byte(tc.doc))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("list", func(t *testing.T) {
		got, err := ParseParameters([]byte("[" + strings.Join(list, ", ") + "]"))
		require.NoError(t, err)
		assert.Len(t, got, FaceFieldCount)
		assert.Equal(t, 13, got["eyeVertical"])
		assert.Equal(t, 50, got["lowEarShape"])
	})
}

func TestParseParametersErrors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"scalar", "42"},
		{"short list", "[1, 2, 3]"},
		{"text value", "eyeVertical: high"},
		{"broken yaml", "eyeVertical: [1"},
		{"infinite", "eyeVertical: .inf"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseParameters([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadParameterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("eye_size: 40\n"), 0o644))

	got, err := LoadParameterFile(path)
	require.NoError(t, err)
	assert.Equal(t, FaceParameterSet{"eye_size": 40}, got)

	_, err = LoadParameterFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseAssignment(t *testing.T) {
	testCases := []struct {
		in    string
		name  string
		value int
		ok    bool
	}{
		{"eyeVertical=50", "eyeVertical", 50, true},
		{" head_width = -12.5 ", "head_width", -13, true},
		{"noseSize=1e2", "noseSize", 100, true},
		{"eyeVertical", "", 0, false},
		{"=5", "", 0, false},
		{"eyeVertical=big", "", 0, false},
		{"eyeVertical=NaN", "", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			name, value, err := ParseAssignment(tc.in)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.name, name)
			assert.Equal(t, tc.value, value)
		})
	}
}
