// Package errors holds the error taxonomy shared by the card codec packages.
//
// Sentinels are matched with errors.Is. The struct types carry the failing
// field or block and match their sentinel as well, so callers may use either
// errors.Is or errors.As.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Container errors 🖼️
	ErrNotPNG       = errors.New("❌ not a PNG file")
	ErrTruncatedPNG = errors.New("❌ truncated PNG chunk stream")

	// Record errors 📇
	ErrHeaderField       = errors.New("❌ invalid record header field")
	ErrCorruptBlockTable = errors.New("❌ corrupt block table")
	ErrBlockOutOfRange   = fmt.Errorf("%w: block extends past record end", ErrCorruptBlockTable)
	ErrCorruptObject     = errors.New("❌ corrupt self-describing object")

	// Layout errors 🧭
	ErrBlockNotFound         = errors.New("❌ block not found")
	ErrKeyNotFound           = errors.New("❌ shapeValueFace not found")
	ErrSizePreservation      = errors.New("❌ re-encoded block changes size")
	ErrMarkerNotFound        = errors.New("❌ legacy marker not found")
	ErrFieldOutOfRange       = errors.New("❌ field window past record end")
	ErrUnsupportedCardFormat = errors.New("❌ unsupported card format")

	// Parameter errors 🎚️
	ErrUnknownField = errors.New("❌ unknown face field")
)

// HeaderFieldError names the header field that failed to parse.
type HeaderFieldError struct {
	Field  string
	Offset int
	Err    error
}

func (e *HeaderFieldError) Error() string {
	return fmt.Sprintf("header field %q at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *HeaderFieldError) Unwrap() error { return e.Err }

func (e *HeaderFieldError) Is(target error) bool { return target == ErrHeaderField }

// BlockNotFoundError reports a block name missing from the block table.
type BlockNotFoundError struct {
	Name string
}

func (e *BlockNotFoundError) Error() string {
	return fmt.Sprintf("block %q not found", e.Name)
}

func (e *BlockNotFoundError) Is(target error) bool { return target == ErrBlockNotFound }

// SizePreservationError reports a re-encoded block whose length differs from
// the length recorded in the block table.
type SizePreservationError struct {
	Block    string
	Original int
	Encoded  int
}

func (e *SizePreservationError) Error() string {
	return fmt.Sprintf("block %q re-encodes to %d bytes, table records %d", e.Block, e.Encoded, e.Original)
}

func (e *SizePreservationError) Is(target error) bool { return target == ErrSizePreservation }

// UnknownFieldError reports a parameter name that resolves to no slider index.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown face field %q", e.Name)
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }

// Attempt records one layout that was tried and why it did not apply.
type Attempt struct {
	Layout string
	Err    error
}

// UnsupportedCardFormatError is returned when no layout could serve a request.
type UnsupportedCardFormatError struct {
	Attempts []Attempt
}

func (e *UnsupportedCardFormatError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Layout, a.Err))
	}
	return fmt.Sprintf("unsupported card format (%s)", strings.Join(parts, "; "))
}

func (e *UnsupportedCardFormatError) Is(target error) bool {
	return target == ErrUnsupportedCardFormat
}

func (e *UnsupportedCardFormatError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}
