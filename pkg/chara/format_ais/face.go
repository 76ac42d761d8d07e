package format_ais

import (
	"fmt"
	"math"
	"sort"

	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
)

// FaceFieldNames maps slider index to its canonical name.
var FaceFieldNames = [FaceFieldCount]string{
	"headWidth", "headUpperDepth", "headUpperHeight", "headLowerDepth", "headLowerWidth",
	"jawWidth", "jawHeight", "jawDepth", "jawAngle", "neckDroop",
	"chinSize", "chinHeight", "chinDepth",
	"cheekLowerHeight", "cheekLowerDepth", "cheekLowerWidth",
	"cheekUpperHeight", "cheekUpperDepth", "cheekUpperWidth",
	"eyeVertical", "eyeSpacing", "eyeDepth", "eyeWidth", "eyeHeight",
	"eyeAngleZ", "eyeAngleY", "eyeInnerDist", "eyeOuterDist", "eyeInnerHeight", "eyeOuterHeight",
	"eyelidShape1", "eyelidShape2",
	"noseHeight", "noseDepth", "noseAngle", "noseSize", "bridgeHeight", "bridgeWidth", "bridgeShape",
	"nostrilWidth", "nostrilHeight", "nostrilLength", "nostrilInnerWidth", "nostrilOuterWidth",
	"noseTipLength", "noseTipHeight", "noseTipSize",
	"mouthHeight", "mouthWidth", "lipThickness", "mouthDepth", "upperLipThick", "lowerLipThick", "mouthCorners",
	"earSize", "earAngle", "earRotation", "earUpShape", "lowEarShape",
}

// faceAliases are the snake_case names produced by the photo pipeline. An
// alias may drive more than one slider.
var faceAliases = map[string][]int{
	"head_width":         {0},
	"head_upper_depth":   {1},
	"head_upper_height":  {2},
	"head_lower_depth":   {3},
	"head_lower_width":   {4},
	"face_width_height":  {4},
	"jaw_width":          {5},
	"jaw_height":         {6},
	"jaw_depth":          {7},
	"jaw_angle":          {8},
	"neck_droop":         {9},
	"chin_size":          {10},
	"chin_height":        {11},
	"chin_depth":         {12},
	"cheek_lower_height": {13},
	"cheek_lower_depth":  {14},
	"cheek_lower_width":  {15},
	"cheek_upper_height": {16},
	"cheek_upper_depth":  {17},
	"cheek_upper_width":  {18},
	"eye_vertical":       {19},
	"eye_span":           {20},
	"eye_size":           {22, 23},
	"eye_angle_z":        {24},
	"nose_height":        {32},
	"bridge_height":      {36},
	"nose_width":         {39},
	"mouth_height":       {47},
	"mouth_width":        {48},
	"lip_thickness":      {49},
	"upper_lip_thick":    {51},
	"lower_lip_thick":    {52},
}

var faceIndex = func() map[string]int {
	m := make(map[string]int, FaceFieldCount)
	for i, name := range FaceFieldNames {
		m[name] = i
	}
	return m
}()

// ResolveFaceField returns the slider indices a canonical name or alias drives.
func ResolveFaceField(name string) ([]int, error) {
	if i, ok := faceIndex[name]; ok {
		return []int{i}, nil
	}
	if idx, ok := faceAliases[name]; ok {
		return idx, nil
	}
	return nil, &cerrors.UnknownFieldError{Name: name}
}

// FaceAliases returns a copy of the alias table.
func FaceAliases() map[string][]int {
	out := make(map[string][]int, len(faceAliases))
	for k, v := range faceAliases {
		out[k] = append([]int(nil), v...)
	}
	return out
}

// FaceParameterSet maps field names (canonical or alias) to game values.
type FaceParameterSet map[string]int

// FaceParameterSetFromList builds a set covering every slider from values in
// index order.
func FaceParameterSetFromList(values []int) (FaceParameterSet, error) {
	if len(values) != FaceFieldCount {
		return nil, fmt.Errorf("face list has %d values, want %d", len(values), FaceFieldCount)
	}
	set := make(FaceParameterSet, FaceFieldCount)
	for i, v := range values {
		set[FaceFieldNames[i]] = v
	}
	return set, nil
}

// FieldWrite records one slider written by a face update.
type FieldWrite struct {
	Field     string `json:"field"`
	Requested string `json:"requested"`
	Index     int    `json:"index"`
	// GameValue is the value stored after clamping, read back from the float.
	GameValue int `json:"game_value"`
	stored    float32
}

// plan resolves every name up front so an unknown name fails before any
// byte changes. Aliases apply first in name order, then canonical names,
// so an explicit canonical name wins over an alias for the same slider.
func (s FaceParameterSet) plan() ([]FieldWrite, error) {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Slice(names, func(a, b int) bool {
		_, ca := faceIndex[names[a]]
		_, cb := faceIndex[names[b]]
		if ca != cb {
			return cb
		}
		return names[a] < names[b]
	})

	byIndex := make(map[int]FieldWrite)
	for _, name := range names {
		indices, err := ResolveFaceField(name)
		if err != nil {
			return nil, err
		}
		stored := ToStored(s[name])
		for _, i := range indices {
			byIndex[i] = FieldWrite{
				Field:     FaceFieldNames[i],
				Requested: name,
				Index:     i,
				GameValue: FromStored(float64(stored)),
				stored:    stored,
			}
		}
	}

	writes := make([]FieldWrite, 0, len(byIndex))
	for _, w := range byIndex {
		writes = append(writes, w)
	}
	sort.Slice(writes, func(a, b int) bool { return writes[a].Index < writes[b].Index })
	return writes, nil
}

// ClampGameValue limits v to the slider range.
func ClampGameValue(v int) int {
	if v < MinGameValue {
		return MinGameValue
	}
	if v > MaxGameValue {
		return MaxGameValue
	}
	return v
}

// ToStored converts a game value to its on-disk float.
func ToStored(v int) float32 {
	return float32(float64(ClampGameValue(v)) / 100.0)
}

// FromStored converts an on-disk float to the nearest game value.
func FromStored(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f*100 >= math.MaxInt32:
		return math.MaxInt32
	case f*100 <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Round(f * 100))
}

// FaceValues holds game values for all sliders in index order.
type FaceValues [FaceFieldCount]int

// Get returns the value of a canonical field name.
func (v *FaceValues) Get(name string) (int, bool) {
	i, ok := faceIndex[name]
	if !ok {
		return 0, false
	}
	return v[i], true
}

// Map returns the values keyed by canonical name.
func (v *FaceValues) Map() map[string]int {
	m := make(map[string]int, FaceFieldCount)
	for i, name := range FaceFieldNames {
		m[name] = v[i]
	}
	return m
}

// SplitByRange separates values inside the slider range from those outside it.
func (v *FaceValues) SplitByRange() (inRange, outOfRange map[string]int) {
	inRange = make(map[string]int)
	outOfRange = make(map[string]int)
	for i, name := range FaceFieldNames {
		if v[i] < MinGameValue || v[i] > MaxGameValue {
			outOfRange[name] = v[i]
		} else {
			inRange[name] = v[i]
		}
	}
	return inRange, outOfRange
}
