package format_ais

// Core record constants that never change
// Tunable bounds live in defaults.go

const (
	// Header identification
	ProductTag       = 100         // first int32 of every trailing record
	MarkerSubstring  = "AIS_Chara" // expected inside the header marker string
	MaxVersionLength = 16          // version strings are short dotted tags

	// Block names in the block table
	BlockCustom    = "Custom"
	BlockExtension = "KKEx"

	// Key of the face slider array inside the Custom block
	FaceKey = "shapeValueFace"

	// Number of face sliders and the game value range
	FaceFieldCount = 59
	MinGameValue   = -100
	MaxGameValue   = 200

	// Plugin identifier of the bone modifier extension
	BoneModifierGUID = "KKABMPlugin.ABMData"
)

// Block table list field names. The first is what the game writes.
var blockListKeys = []string{"lstInfo", "lst_info"}
