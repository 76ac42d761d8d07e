package format_ais

// Bounds applied while walking untrusted records

const (
	// MaxBlockTableLength is the exclusive upper bound on the block table byte count.
	MaxBlockTableLength = 100000

	// maxVarintShift bounds the 7-bit length prefix of header strings (five bytes).
	maxVarintShift = 35

	// Heuristic bone modifier locator limits
	heuristicMaxPayload = 500000
	heuristicSearchSpan = 64

	// Legacy offset table geometry
	legacyFieldSize      = 4
	legacyFieldStride    = 5
	legacyFirstFieldSkip = 3
)

// heuristicPrefixSkips are the byte counts tried between the plugin GUID and a
// little-endian uint32 length prefix.
var heuristicPrefixSkips = []int{0, 1, 2, 4}
