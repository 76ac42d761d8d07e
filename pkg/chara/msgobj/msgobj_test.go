package msgobj

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
)

// TestRoundTripBytes checks that compact input survives decode and encode
// byte for byte.
func TestRoundTripBytes(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{Name: "msgobj_test", Level: hclog.Trace})

	testCases := []struct {
		name string
		wire []byte
	}{
		{"fixint", []byte{0x07}},
		{"negative fixint", []byte{0xff}},
		{"int8", []byte{0xd0, 0x80}},
		{"int16", []byte{0xd1, 0xff, 0x00}},
		{"uint8", []byte{0xcc, 0xc8}},
		{"uint32", []byte{0xce, 0x00, 0x01, 0x00, 0x00}},
		{"nil and bools", []byte{0x93, 0xc0, 0xc2, 0xc3}},
		{"float32", []byte{0xca, 0x3f, 0x00, 0x00, 0x00}},
		{"float64", []byte{0xcb, 0x3f, 0xe0, 0, 0, 0, 0, 0, 0}},
		{"fixstr", []byte{0xa3, 'a', 'b', 'c'}},
		{"bin8", []byte{0xc4, 0x02, 0x01, 0x02}},
		{"empty bin", []byte{0xc4, 0x00}},
		{"fixext1", []byte{0xd4, 0x05, 0xaa}},
		{"ordered map", []byte{0x82, 0xa1, 'z', 0x01, 0xa1, 'a', 0x02}},
		{"nested", []byte{0x81, 0xa2, 'f', 'g', 0x92, 0xca, 0x3f, 0x80, 0, 0, 0x90}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Unmarshal(tc.wire)
			require.NoError(t, err)
			logger.Debug("🔍 Decoded", "value", v.String())

			out, err := Marshal(v)
			require.NoError(t, err)
			assert.Equal(t, tc.wire, out)
		})
	}
}

func TestFloatWidthKept(t *testing.T) {
	v, err := Unmarshal([]byte{0x92, 0xca, 0x3f, 0x00, 0x00, 0x00, 0xcb, 0x3f, 0xe0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)

	first, _ := v.Index(0)
	second, _ := v.Index(1)
	assert.False(t, first.IsWide())
	assert.True(t, second.IsWide())

	f, ok := first.AsNumber()
	require.True(t, ok)
	assert.Equal(t, 0.5, f)
}

func TestMapAccess(t *testing.T) {
	m := Map(P("name", Str("Custom")), P("pos", Int(12)))

	name, ok := m.Get("name")
	require.True(t, ok)
	s, _ := name.AsString()
	assert.Equal(t, "Custom", s)

	_, ok = m.Get("missing")
	assert.False(t, ok)

	updated, ok := m.With("pos", Int(99))
	require.True(t, ok)
	pos, _ := updated.Get("pos")
	n, _ := pos.AsInt()
	assert.Equal(t, int64(99), n)

	// original untouched
	pos, _ = m.Get("pos")
	n, _ = pos.AsInt()
	assert.Equal(t, int64(12), n)

	_, ok = m.With("missing", Nil())
	assert.False(t, ok)

	intKeyed := Map(Pair{Key: Int(1), Val: Str("data")})
	data, ok := intKeyed.GetInt(1)
	require.True(t, ok)
	assert.Equal(t, KindStr, data.Kind())
}

func TestBytesNeverNil(t *testing.T) {
	out, err := Marshal(Bytes(nil))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xc4, 0x00}, out)
}

func TestDecodeErrors(t *testing.T) {
	deep := bytes.Repeat([]byte{0x91}, MaxDepth+2)
	deep = append(deep, 0x01)

	testCases := []struct {
		name string
		wire []byte
	}{
		{"empty", nil},
		{"reserved code", []byte{0xc1}},
		{"array longer than input", []byte{0x92, 0x01}},
		{"huge map header", []byte{0xdf, 0xff, 0xff, 0xff, 0xff}},
		{"string cut short", []byte{0xa5, 'a', 'b'}},
		{"huge str32 header", []byte{0xdb, 0x7f, 0xff, 0xff, 0xff, 'a'}},
		{"huge bin32 header", []byte{0xc6, 0x7f, 0xff, 0xff, 0xff, 0x00}},
		{"bin8 cut short", []byte{0xc4, 0x03, 0x01}},
		{"too deep", deep},
		{"trailing bytes", []byte{0x01, 0x02}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unmarshal(tc.wire)
			require.Error(t, err)
			assert.ErrorIs(t, err, cerrors.ErrCorruptObject)
		})
	}
}

func TestDecodeStream(t *testing.T) {
	wire := []byte{
		0x81, 0xa1, 'a', 0x01, // {"a": 1}
		0x92, 0xc3, 0xc2, // [true, false]
		0xa2, 'h', 'i', // "hi"
	}

	s := DecodeStream(wire)
	require.NoError(t, s.Err)
	require.Len(t, s.Objects, 3)
	assert.Equal(t, []int{0, 4, 7}, s.Offsets)
	assert.Equal(t, len(wire), s.Consumed)

	all, err := MarshalAll(s.Objects)
	require.NoError(t, err)
	assert.Equal(t, wire, all)

	t.Run("stops at first failure", func(t *testing.T) {
		broken := append(append([]byte{}, wire...), 0xc1, 0x01)
		s := DecodeStream(broken)
		assert.Error(t, s.Err)
		assert.Len(t, s.Objects, 3)
		assert.Equal(t, len(wire), s.Consumed)
	})
}

func TestString(t *testing.T) {
	v := Map(P("k", List(Int(-1), Float32(0.25), Bytes([]byte{1}))))
	assert.Equal(t, `{"k": [-1, 0.25f, bin[1]]}`, v.String())
}
