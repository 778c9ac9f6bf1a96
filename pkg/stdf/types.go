// Package stdf reads and writes the subset of STDF V4 needed to recover
// parametric results and part coordinates: FAR, PTR and PRR records.
// Every other record type is framed and skipped.
package stdf

import "errors"

// Record type/subtype pairs.
const (
	TypFAR, SubFAR = 0, 10
	TypPTR, SubPTR = 15, 10
	TypPRR, SubPRR = 5, 20
)

// CPU_TYPE values that select byte order.
const (
	CPUBigEndian    = 1
	CPULittleEndian = 2
)

// MissingCoord is the STDF value for an unknown die coordinate.
const MissingCoord = -32768

// Test flag bit marking RESULT as not valid.
const testFlagResultInvalid = 0x02

var (
	// ErrNoFAR is returned when a stream does not begin with a FAR record.
	ErrNoFAR = errors.New("stdf: stream does not start with a FAR record")

	// ErrShortRecord is returned when a record ends before its required fields.
	ErrShortRecord = errors.New("stdf: record shorter than its required fields")
)

// Record is one framed record with its raw payload.
type Record struct {
	Type uint8
	Sub  uint8
	Data []byte
}

// Is reports whether r has the given type and subtype.
func (r Record) Is(typ, sub uint8) bool {
	return r.Type == typ && r.Sub == sub
}

// PTR is a decoded Parametric Test Record.
type PTR struct {
	TestNum   uint32
	Head      uint8
	Site      uint8
	TestFlags uint8
	ParmFlags uint8
	Result    float32
	HasResult bool // RESULT present and not flagged invalid
	Text      string
}

// PRR is a decoded Part Results Record.
type PRR struct {
	Head     uint8
	Site     uint8
	PartFlag uint8
	NumTest  uint16
	HardBin  uint16
	SoftBin  uint16
	X        int16
	Y        int16
	PartID   string
}
