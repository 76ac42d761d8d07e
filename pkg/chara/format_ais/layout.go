package format_ais

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	cerrors "github.com/photo2card/hs2card/pkg/chara/errors"
)

// Layout names
const (
	LayoutStructured = "structured"
	LayoutLegacy     = "legacy"
	LayoutAuto       = "auto"
)

// FaceLayout is one encoding of the face sliders inside a trailing record.
type FaceLayout interface {
	// Name returns the layout name used in logs, reports and CLI flags
	Name() string

	// ReadFace returns all slider values
	ReadFace(record []byte) (*FaceValues, error)

	// WriteFace returns a new record with the planned writes applied
	WriteFace(record []byte, writes []FieldWrite) ([]byte, error)
}

type structuredLayout struct{}

func (structuredLayout) Name() string { return LayoutStructured }

func (structuredLayout) ReadFace(record []byte) (*FaceValues, error) {
	return ReadCustomFace(record)
}

func (structuredLayout) WriteFace(record []byte, writes []FieldWrite) ([]byte, error) {
	return writeCustomFace(record, writes)
}

type legacyLayout struct{}

func (legacyLayout) Name() string { return LayoutLegacy }

func (legacyLayout) ReadFace(record []byte) (*FaceValues, error) {
	return ReadLegacyFace(record)
}

func (legacyLayout) WriteFace(record []byte, writes []FieldWrite) ([]byte, error) {
	return writeLegacyFace(record, writes)
}

// layoutRegistry maps layout names to implementations
var layoutRegistry = map[string]FaceLayout{
	LayoutStructured: structuredLayout{},
	LayoutLegacy:     legacyLayout{},
}

// defaultChain is the order layouts are tried in
var defaultChain = []string{LayoutStructured, LayoutLegacy}

// GetLayout retrieves a layout by name
func GetLayout(name string) (FaceLayout, error) {
	l, ok := layoutRegistry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown face layout: %q (known: %s)", name, strings.Join(LayoutNames(), ", "))
	}
	return l, nil
}

// LayoutNames lists registered layout names
func LayoutNames() []string {
	names := make([]string, 0, len(layoutRegistry))
	for name := range layoutRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseLayoutChain parses "auto", a single layout name, or a pipe-separated
// list such as "structured|legacy".
func ParseLayoutChain(spec string) ([]FaceLayout, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "" || spec == LayoutAuto {
		return DefaultLayouts(), nil
	}
	var chain []FaceLayout
	for _, part := range strings.Split(spec, "|") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		l, err := GetLayout(part)
		if err != nil {
			return nil, err
		}
		chain = append(chain, l)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("empty face layout chain: %q", spec)
	}
	return chain, nil
}

// DefaultLayouts returns the structured layout followed by the legacy one.
func DefaultLayouts() []FaceLayout {
	chain := make([]FaceLayout, 0, len(defaultChain))
	for _, name := range defaultChain {
		chain = append(chain, layoutRegistry[name])
	}
	return chain
}

// layoutAbsent reports whether err means the layout does not exist in the
// record, so the next layout may be tried. Corruption and size violations
// are not absence.
func layoutAbsent(err error) bool {
	return errors.Is(err, cerrors.ErrHeaderField) ||
		errors.Is(err, cerrors.ErrBlockNotFound) ||
		errors.Is(err, cerrors.ErrMarkerNotFound)
}

// FaceCodec reads and writes face sliders through a chain of layouts.
type FaceCodec struct {
	layouts []FaceLayout
	logger  hclog.Logger
}

// NewFaceCodec creates a codec over the given layouts, or the default chain
// when none are given.
func NewFaceCodec(logger hclog.Logger, layouts ...FaceLayout) *FaceCodec {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if len(layouts) == 0 {
		layouts = DefaultLayouts()
	}
	return &FaceCodec{layouts: layouts, logger: logger}
}

// ReadResult is the outcome of FaceCodec.Read.
type ReadResult struct {
	Layout   string
	Values   *FaceValues
	Attempts []cerrors.Attempt
}

// WriteResult is the outcome of FaceCodec.Write.
type WriteResult struct {
	// Record is a new buffer of the same length as the input.
	Record   []byte
	Layout   string
	Writes   []FieldWrite
	Attempts []cerrors.Attempt
}

// Read tries each layout in order and returns the first that applies.
func (c *FaceCodec) Read(record []byte) (*ReadResult, error) {
	res := &ReadResult{}
	for _, l := range c.layouts {
		c.logger.Debug("🧭 Trying face layout", "layout", l.Name(), "op", "read")
		values, err := l.ReadFace(record)
		if err == nil {
			res.Layout = l.Name()
			res.Values = values
			c.logger.Debug("✅ Face read", "layout", l.Name())
			return res, nil
		}
		res.Attempts = append(res.Attempts, cerrors.Attempt{Layout: l.Name(), Err: err})
		if !layoutAbsent(err) {
			c.logger.Error("❌ Face layout failed", "layout", l.Name(), "error", err)
			return res, err
		}
		c.logger.Debug("⏭️ Face layout not present", "layout", l.Name(), "reason", err)
	}
	return res, &cerrors.UnsupportedCardFormatError{Attempts: res.Attempts}
}

// Write resolves params and applies them through the first layout that
// applies. Unknown field names fail before any layout is tried. On failure
// the input record is untouched and no new record is returned.
func (c *FaceCodec) Write(record []byte, params FaceParameterSet) (*WriteResult, error) {
	writes, err := params.plan()
	if err != nil {
		return nil, err
	}

	res := &WriteResult{Writes: writes}
	for _, l := range c.layouts {
		c.logger.Debug("🧭 Trying face layout", "layout", l.Name(), "op", "write", "fields", len(writes))
		out, err := l.WriteFace(record, writes)
		if err == nil {
			if len(out) != len(record) {
				return nil, fmt.Errorf("%w: layout %s produced %d bytes from %d",
					cerrors.ErrSizePreservation, l.Name(), len(out), len(record))
			}
			res.Record = out
			res.Layout = l.Name()
			c.logger.Info("✅ Face written", "layout", l.Name(), "fields", len(writes))
			return res, nil
		}
		res.Attempts = append(res.Attempts, cerrors.Attempt{Layout: l.Name(), Err: err})
		if !layoutAbsent(err) {
			c.logger.Error("❌ Face layout failed", "layout", l.Name(), "error", err)
			return res, err
		}
		c.logger.Warn("⏭️ Face layout not present, falling back", "layout", l.Name(), "reason", err)
	}
	return res, &cerrors.UnsupportedCardFormatError{Attempts: res.Attempts}
}
