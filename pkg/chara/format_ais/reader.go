package format_ais

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/photo2card/hs2card/pkg/chara/png"
)

// Reader reads one card file from disk. The file is loaded once and every
// operation works on the in-memory copy.
type Reader struct {
	cardPath string
	data     []byte
	card     *png.Card
	logger   hclog.Logger
}

// NewReader creates a reader for a card file
func NewReader(cardPath string) *Reader {
	return NewReaderWithLogger(cardPath, hclog.NewNullLogger())
}

// NewReaderWithLogger creates a reader with a custom logger
func NewReaderWithLogger(cardPath string, logger hclog.Logger) *Reader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Reader{cardPath: cardPath, logger: logger}
}

// Path returns the card file path
func (r *Reader) Path() string {
	return r.cardPath
}

// Open loads and splits the card file
func (r *Reader) Open() error {
	if r.card != nil {
		return nil
	}
	data, err := os.ReadFile(r.cardPath)
	if err != nil {
		return err
	}
	card, err := png.Split(data)
	if err != nil {
		return fmt.Errorf("%s: %w", r.cardPath, err)
	}
	r.data = data
	r.card = card
	r.logger.Debug("📂 Loaded card", "path", r.cardPath, "size", len(data),
		"trailing_offset", card.TrailingOffset(), "trailing_bytes", len(card.Trailing))
	return nil
}

// File returns the raw file bytes
func (r *Reader) File() ([]byte, error) {
	if err := r.Open(); err != nil {
		return nil, err
	}
	return r.data, nil
}

// Record returns the trailing record
func (r *Reader) Record() ([]byte, error) {
	if err := r.Open(); err != nil {
		return nil, err
	}
	return r.card.Trailing, nil
}

// Header parses the record header
func (r *Reader) Header() (*RecordHeader, error) {
	record, err := r.Record()
	if err != nil {
		return nil, err
	}
	return ParseHeader(record)
}

// BlockTable decodes the block table
func (r *Reader) BlockTable() (*RecordHeader, *BlockTable, error) {
	header, err := r.Header()
	if err != nil {
		return nil, nil, err
	}
	table, err := DecodeBlockTable(header.BlockTable)
	if err != nil {
		return header, nil, err
	}
	r.logger.Debug("🗂️ Block table", "blocks", table.Names(), "base", header.BasePosition)
	return header, table, nil
}

// Validate checks the record header, and with deep set the blocks as well
func (r *Reader) Validate(deep bool) (*ValidationReport, error) {
	record, err := r.Record()
	if err != nil {
		return nil, err
	}
	if deep {
		return ValidateRecordDeep(record), nil
	}
	return ValidateRecord(record), nil
}

// ReadFace reads the face sliders through the given layouts (default chain if none)
func (r *Reader) ReadFace(layouts ...FaceLayout) (*ReadResult, error) {
	record, err := r.Record()
	if err != nil {
		return nil, err
	}
	return NewFaceCodec(r.logger.Named("face"), layouts...).Read(record)
}

// WriteFace applies params and returns the full new card file. The loaded
// card is not modified.
func (r *Reader) WriteFace(params FaceParameterSet, layouts ...FaceLayout) ([]byte, *WriteResult, error) {
	record, err := r.Record()
	if err != nil {
		return nil, nil, err
	}
	res, err := NewFaceCodec(r.logger.Named("face"), layouts...).Write(record, params)
	if err != nil {
		return nil, res, err
	}
	return r.card.Assemble(res.Record), res, nil
}

// Extensions decodes the plugin extension block
func (r *Reader) Extensions() (*Extensions, error) {
	record, err := r.Record()
	if err != nil {
		return nil, err
	}
	return ReadExtensions(record)
}

// LocateBoneModifiers runs the heuristic bone list scan on the record
func (r *Reader) LocateBoneModifiers() (*HeuristicMatch, bool, error) {
	record, err := r.Record()
	if err != nil {
		return nil, false, err
	}
	m, ok := LocateBoneModifiersHeuristic(record)
	return m, ok, nil
}

// Summarize describes the card
func (r *Reader) Summarize(opts SummaryOptions) (*CardSummary, error) {
	data, err := r.File()
	if err != nil {
		return nil, err
	}
	return Summarize(data, opts)
}

// WriteCardFile writes data to path through a temporary file in the same
// directory, so a failed write never leaves a truncated card behind.
func WriteCardFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".hs2card-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
