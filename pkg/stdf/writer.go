package stdf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dkoosis/ptrmux/pkg/demux"
)

// stdfVersion is the STDF_VER written into the FAR.
const stdfVersion = 4

// Writer encodes little-endian STDF V4 records. The FAR is written before
// the first record.
type Writer struct {
	w       *bufio.Writer
	started bool
	buf     []byte
}

// NewWriter returns a Writer on w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WritePTR writes one PTR.
func (w *Writer) WritePTR(p PTR) error {
	w.buf = w.buf[:0]
	w.buf = binary.LittleEndian.AppendUint32(w.buf, p.TestNum)
	flags := p.TestFlags
	if !p.HasResult {
		flags |= testFlagResultInvalid
	}
	w.buf = append(w.buf, p.Head, p.Site, flags, p.ParmFlags)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(p.Result))
	w.buf = appendCn(w.buf, p.Text)
	return w.record(TypPTR, SubPTR, w.buf)
}

// WritePRR writes one PRR.
func (w *Writer) WritePRR(p PRR) error {
	w.buf = w.buf[:0]
	w.buf = append(w.buf, p.Head, p.Site, p.PartFlag)
	w.buf = binary.LittleEndian.AppendUint16(w.buf, p.NumTest)
	w.buf = binary.LittleEndian.AppendUint16(w.buf, p.HardBin)
	w.buf = binary.LittleEndian.AppendUint16(w.buf, p.SoftBin)
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(p.X))
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(p.Y))
	w.buf = binary.LittleEndian.AppendUint32(w.buf, 0) // TEST_T
	w.buf = appendCn(w.buf, p.PartID)
	return w.record(TypPRR, SubPRR, w.buf)
}

// WriteRaw writes an arbitrary record, useful for padding streams with
// record types the reader skips.
func (w *Writer) WriteRaw(typ, sub uint8, data []byte) error {
	return w.record(typ, sub, data)
}

// Flush writes the FAR if nothing was written yet and flushes buffered data.
func (w *Writer) Flush() error {
	if err := w.start(); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) start() error {
	if w.started {
		return nil
	}
	w.started = true
	return w.frame(TypFAR, SubFAR, []byte{CPULittleEndian, stdfVersion})
}

func (w *Writer) record(typ, sub uint8, data []byte) error {
	if err := w.start(); err != nil {
		return err
	}
	return w.frame(typ, sub, data)
}

func (w *Writer) frame(typ, sub uint8, data []byte) error {
	if len(data) > math.MaxUint16 {
		return fmt.Errorf("stdf: record (%d,%d) payload of %d bytes exceeds REC_LEN", typ, sub, len(data))
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint16(hdr[:2], uint16(len(data)))
	hdr[2], hdr[3] = typ, sub
	if _, err := w.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("writing record header: %w", err)
	}
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("writing record payload: %w", err)
	}
	return nil
}

func appendCn(b []byte, s string) []byte {
	if len(s) > math.MaxUint8 {
		s = s[:math.MaxUint8]
	}
	b = append(b, byte(len(s)))
	return append(b, s...)
}

// WriteEvents encodes ev as an STDF stream, interleaving the two sequences
// by Position. On equal positions the PTR goes first.
func WriteEvents(out io.Writer, ev demux.Events) error {
	type item struct {
		pos int
		ptr *demux.ParametricEvent
		prr *demux.CompletionEvent
	}
	items := make([]item, 0, len(ev.Parametric)+len(ev.Completions))
	for i := range ev.Parametric {
		items = append(items, item{pos: ev.Parametric[i].Position, ptr: &ev.Parametric[i]})
	}
	for i := range ev.Completions {
		items = append(items, item{pos: ev.Completions[i].Position, prr: &ev.Completions[i]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].pos != items[j].pos {
			return items[i].pos < items[j].pos
		}
		return items[i].ptr != nil && items[j].ptr == nil
	})

	w := NewWriter(out)
	for _, it := range items {
		var err error
		if it.ptr != nil {
			err = w.WritePTR(PTR{
				TestNum:   labelTestNum(it.ptr.Label),
				Result:    float32(it.ptr.Result),
				HasResult: it.ptr.HasResult,
				Text:      it.ptr.Label,
			})
		} else {
			err = w.WritePRR(PRR{
				NumTest: 0,
				HardBin: 1,
				SoftBin: 1,
				X:       int16(it.prr.X),
				Y:       int16(it.prr.Y),
			})
		}
		if err != nil {
			return err
		}
	}
	return w.Flush()
}

// labelTestNum takes a leading numeric token, as in "123 T1".
func labelTestNum(label string) uint32 {
	fields := strings.Fields(label)
	if len(fields) < 2 {
		return 0
	}
	n, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
