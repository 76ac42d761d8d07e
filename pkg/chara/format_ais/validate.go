package format_ais

import (
	"fmt"
	"strings"
)

// Check is one assertion of a validation report.
type Check struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Expect string `json:"expect"`
	Passed bool   `json:"passed"`
}

// ValidationReport collects every check made on a record.
type ValidationReport struct {
	OK     bool    `json:"ok"`
	Checks []Check `json:"checks"`
	// Error is set when the header walk could not continue.
	Error        string `json:"error,omitempty"`
	BasePosition int    `json:"base_position"`
	RecordLength int    `json:"record_length"`
}

// Failed returns the checks that did not pass.
func (r *ValidationReport) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

func (r *ValidationReport) add(field string, value interface{}, expect string, passed bool) {
	r.Checks = append(r.Checks, Check{Field: field, Value: fmt.Sprint(value), Expect: expect, Passed: passed})
}

func (r *ValidationReport) abort(err error) *ValidationReport {
	r.Error = err.Error()
	r.OK = false
	return r
}

func (r *ValidationReport) finish() *ValidationReport {
	r.OK = r.Error == ""
	for _, c := range r.Checks {
		if !c.Passed {
			r.OK = false
		}
	}
	return r
}

// ValidateRecord walks the header and checks the shape of each field. All
// checks are collected; the walk stops early only when a field cannot be
// read, in which case Error is set.
func ValidateRecord(record []byte) *ValidationReport {
	rep := &ValidationReport{BasePosition: -1, RecordLength: len(record)}
	r := &fieldReader{data: record}

	tag, err := r.int32(FieldProductTag)
	if err != nil {
		return rep.abort(err)
	}
	rep.add(FieldProductTag, tag, fmt.Sprintf("== %d", ProductTag), tag == ProductTag)

	marker, err := r.string(FieldMarker)
	if err != nil {
		return rep.abort(err)
	}
	rep.add(FieldMarker, marker, "contains "+MarkerSubstring, strings.Contains(marker, MarkerSubstring))

	version, err := r.string(FieldVersion)
	if err != nil {
		return rep.abort(err)
	}
	rep.add(FieldVersion, version, "dotted, at most 16 bytes",
		strings.Contains(version, ".") && len(version) <= MaxVersionLength)

	lang, err := r.int32(FieldLanguage)
	if err != nil {
		return rep.abort(err)
	}
	rep.add(FieldLanguage, lang, "int32", true)

	userID, err := r.string(FieldUserID)
	if err != nil {
		return rep.abort(err)
	}
	rep.add(FieldUserID, shorten(userID), "string", true)

	dataID, err := r.string(FieldDataID)
	if err != nil {
		return rep.abort(err)
	}
	rep.add(FieldDataID, shorten(dataID), "string", true)

	count, err := r.int32(FieldBlockTableLength)
	if err != nil {
		return rep.abort(err)
	}
	rep.add(FieldBlockTableLength, count, fmt.Sprintf("> 0 and < %d", MaxBlockTableLength),
		count > 0 && count < MaxBlockTableLength)
	if count < 0 {
		return rep.abort(r.fail(FieldBlockTableLength, r.pos-4, errNegativeCount))
	}

	if _, err := r.bytes(FieldBlockTable, int(count)); err != nil {
		return rep.abort(err)
	}
	rep.add(FieldBlockTable, count, "present", true)

	if _, err := r.int64(FieldReserved); err != nil {
		return rep.abort(err)
	}
	rep.BasePosition = r.pos
	rep.add(FieldReserved, r.pos, "base position within record", r.pos <= len(record))

	return rep.finish()
}

// ValidateRecordDeep runs ValidateRecord and, when the header walk
// completes, also checks that the block table decodes, that every block fits
// in the record and that the Custom block re-encodes to its recorded size.
func ValidateRecordDeep(record []byte) *ValidationReport {
	rep := ValidateRecord(record)
	if rep.Error != "" {
		return rep
	}

	header, err := ParseHeader(record)
	if err != nil {
		return rep.abort(err)
	}
	table, err := DecodeBlockTable(header.BlockTable)
	rep.add("blockTable.decode", errString(err), "decodes", err == nil)
	if err != nil {
		return rep.finish()
	}
	for _, b := range table.Blocks {
		_, _, err := b.Span(header.BasePosition, len(record))
		rep.add("block."+b.Name, fmt.Sprintf("pos %d size %d", b.Pos, b.Size), "within record", err == nil)
	}

	if _, err := table.Find(BlockCustom); err == nil {
		err := CheckCustomRoundTrip(record)
		rep.add("block."+BlockCustom+".roundTrip", errString(err), "re-encodes to recorded size", err == nil)
	}
	return rep.finish()
}

func shorten(s string) string {
	r := []rune(s)
	if len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return s
}

func errString(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}
