package stdf

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/dkoosis/ptrmux/pkg/demux"
)

// Reader frames STDF records from an underlying stream.
type Reader struct {
	r     *bufio.Reader
	order binary.ByteOrder
	count int
}

// NewReader returns a Reader over r. The first record must be a FAR.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 64*1024)}
}

// ByteOrder returns the order chosen from the FAR, or nil before the first
// record is read.
func (rd *Reader) ByteOrder() binary.ByteOrder {
	return rd.order
}

// Next returns the next record. It returns io.EOF at a clean end of stream
// and a wrapped io.ErrUnexpectedEOF when a record is cut short.
func (rd *Reader) Next() (Record, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(rd.r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			if rd.count == 0 {
				return Record{}, ErrNoFAR
			}
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("reading record %d header: %w", rd.count, io.ErrUnexpectedEOF)
	}

	if rd.order == nil {
		if hdr[2] != TypFAR || hdr[3] != SubFAR {
			return Record{}, ErrNoFAR
		}
		// FAR is two bytes long, so its length reveals the byte order.
		rd.order = binary.LittleEndian
		if hdr[0] == 0 && hdr[1] != 0 {
			rd.order = binary.BigEndian
		}
	}

	n := rd.order.Uint16(hdr[:2])
	rec := Record{Type: hdr[2], Sub: hdr[3], Data: make([]byte, n)}
	if _, err := io.ReadFull(rd.r, rec.Data); err != nil {
		return Record{}, fmt.Errorf("reading record %d (%d,%d) payload: %w",
			rd.count, rec.Type, rec.Sub, io.ErrUnexpectedEOF)
	}

	if rd.count == 0 && len(rec.Data) > 0 {
		switch rec.Data[0] {
		case CPUBigEndian:
			rd.order = binary.BigEndian
		case 0, CPULittleEndian:
			rd.order = binary.LittleEndian
		}
	}
	rd.count++
	return rec, nil
}

// DecodePTR decodes a PTR payload.
func DecodePTR(data []byte, order binary.ByteOrder) (PTR, error) {
	d := fieldDecoder{b: data, order: order}
	var p PTR
	var ok bool
	if p.TestNum, ok = d.u4(); !ok {
		return PTR{}, fmt.Errorf("PTR TEST_NUM: %w", ErrShortRecord)
	}
	if p.Head, ok = d.u1(); !ok {
		return PTR{}, fmt.Errorf("PTR HEAD_NUM: %w", ErrShortRecord)
	}
	if p.Site, ok = d.u1(); !ok {
		return PTR{}, fmt.Errorf("PTR SITE_NUM: %w", ErrShortRecord)
	}
	if p.TestFlags, ok = d.u1(); !ok {
		return PTR{}, fmt.Errorf("PTR TEST_FLG: %w", ErrShortRecord)
	}
	if p.ParmFlags, ok = d.u1(); !ok {
		return PTR{}, fmt.Errorf("PTR PARM_FLG: %w", ErrShortRecord)
	}
	if p.Result, ok = d.r4(); ok {
		p.HasResult = p.TestFlags&testFlagResultInvalid == 0
	}
	p.Text, _ = d.cn()
	return p, nil
}

// DecodePRR decodes a PRR payload. Absent coordinates read as MissingCoord.
func DecodePRR(data []byte, order binary.ByteOrder) (PRR, error) {
	d := fieldDecoder{b: data, order: order}
	p := PRR{X: MissingCoord, Y: MissingCoord}
	var ok bool
	if p.Head, ok = d.u1(); !ok {
		return PRR{}, fmt.Errorf("PRR HEAD_NUM: %w", ErrShortRecord)
	}
	if p.Site, ok = d.u1(); !ok {
		return PRR{}, fmt.Errorf("PRR SITE_NUM: %w", ErrShortRecord)
	}
	if p.PartFlag, ok = d.u1(); !ok {
		return PRR{}, fmt.Errorf("PRR PART_FLG: %w", ErrShortRecord)
	}
	p.NumTest, _ = d.u2()
	p.HardBin, _ = d.u2()
	p.SoftBin, _ = d.u2()
	if x, ok := d.u2(); ok {
		p.X = int16(x)
	}
	if y, ok := d.u2(); ok {
		p.Y = int16(y)
	}
	_, _ = d.u4() // TEST_T
	p.PartID, _ = d.cn()
	return p, nil
}

// ReadEvents decodes a whole STDF stream into the two event sequences the
// demultiplexer consumes. Position is the record ordinal in the file.
func ReadEvents(r io.Reader) (demux.Events, error) {
	rd := NewReader(r)
	var ev demux.Events
	for pos := 0; ; pos++ {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return ev, nil
		}
		if err != nil {
			return ev, err
		}
		switch {
		case rec.Is(TypPTR, SubPTR):
			p, err := DecodePTR(rec.Data, rd.ByteOrder())
			if err != nil {
				return ev, fmt.Errorf("record %d: %w", pos, err)
			}
			ev.Parametric = append(ev.Parametric, demux.ParametricEvent{
				Position:  pos,
				Label:     p.Text,
				Result:    float64(p.Result),
				HasResult: p.HasResult,
			})
		case rec.Is(TypPRR, SubPRR):
			p, err := DecodePRR(rec.Data, rd.ByteOrder())
			if err != nil {
				return ev, fmt.Errorf("record %d: %w", pos, err)
			}
			ev.Completions = append(ev.Completions, demux.CompletionEvent{
				Position: pos,
				X:        int(p.X),
				Y:        int(p.Y),
			})
		}
	}
}

// fieldDecoder walks a payload. Each accessor returns false once the payload
// is exhausted, which STDF uses to omit trailing fields.
type fieldDecoder struct {
	b     []byte
	off   int
	order binary.ByteOrder
}

func (d *fieldDecoder) take(n int) ([]byte, bool) {
	if d.off+n > len(d.b) {
		d.off = len(d.b)
		return nil, false
	}
	s := d.b[d.off : d.off+n]
	d.off += n
	return s, true
}

func (d *fieldDecoder) u1() (uint8, bool) {
	s, ok := d.take(1)
	if !ok {
		return 0, false
	}
	return s[0], true
}

func (d *fieldDecoder) u2() (uint16, bool) {
	s, ok := d.take(2)
	if !ok {
		return 0, false
	}
	return d.order.Uint16(s), true
}

func (d *fieldDecoder) u4() (uint32, bool) {
	s, ok := d.take(4)
	if !ok {
		return 0, false
	}
	return d.order.Uint32(s), true
}

func (d *fieldDecoder) r4() (float32, bool) {
	v, ok := d.u4()
	if !ok {
		return 0, false
	}
	return math.Float32frombits(v), true
}

func (d *fieldDecoder) cn() (string, bool) {
	n, ok := d.u1()
	if !ok {
		return "", false
	}
	s, ok := d.take(int(n))
	if !ok {
		return "", false
	}
	return string(s), true
}
