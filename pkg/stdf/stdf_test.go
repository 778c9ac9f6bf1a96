package stdf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/ptrmux/pkg/demux"
)

func TestWriteEvents_RoundTrip(t *testing.T) {
	in := demux.Events{
		Parametric: []demux.ParametricEvent{
			{Position: 0, Label: "100 VDD", Result: 1.25, HasResult: true},
			{Position: 1, Label: "101 IDD", Result: -0.5, HasResult: true},
			{Position: 3, Label: "100 VDD"},
		},
		Completions: []demux.CompletionEvent{
			{Position: 2, X: 3, Y: -4},
			{Position: 4, X: MissingCoord, Y: 12},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEvents(&buf, in))

	got, err := ReadEvents(&buf)
	require.NoError(t, err)

	// Positions are record ordinals; the FAR takes ordinal 0.
	want := demux.Events{
		Parametric: []demux.ParametricEvent{
			{Position: 1, Label: "100 VDD", Result: 1.25, HasResult: true},
			{Position: 2, Label: "101 IDD", Result: -0.5, HasResult: true},
			{Position: 4, Label: "100 VDD"},
		},
		Completions: []demux.CompletionEvent{
			{Position: 3, X: 3, Y: -4},
			{Position: 5, X: MissingCoord, Y: 12},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReader_SkipsOtherRecords(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRaw(1, 10, []byte{0, 0, 0, 0})) // MIR-ish padding
	require.NoError(t, w.WritePTR(PTR{TestNum: 7, Result: 2, HasResult: true, Text: "7 T7"}))
	require.NoError(t, w.WriteRaw(50, 30, nil))
	require.NoError(t, w.WritePRR(PRR{X: 1, Y: 2}))
	require.NoError(t, w.Flush())

	ev, err := ReadEvents(&buf)
	require.NoError(t, err)
	require.Len(t, ev.Parametric, 1)
	require.Len(t, ev.Completions, 1)
	assert.Equal(t, "7 T7", ev.Parametric[0].Label)
	assert.Equal(t, demux.Coord{X: 1, Y: 2}, ev.Completions[0].Coord())
}

// bigEndianStream hand-assembles a big-endian FAR, PTR and PRR.
func bigEndianStream() []byte {
	be := binary.BigEndian
	var b []byte
	frame := func(typ, sub uint8, data []byte) {
		b = be.AppendUint16(b, uint16(len(data)))
		b = append(b, typ, sub)
		b = append(b, data...)
	}
	frame(TypFAR, SubFAR, []byte{CPUBigEndian, 4})

	var ptr []byte
	ptr = be.AppendUint32(ptr, 42)
	ptr = append(ptr, 1, 2, 0, 0)
	ptr = be.AppendUint32(ptr, math.Float32bits(3.5))
	ptr = append(ptr, 5)
	ptr = append(ptr, "42 TX"...)
	frame(TypPTR, SubPTR, ptr)

	prr := []byte{1, 2, 0}
	prr = be.AppendUint16(prr, 1)
	prr = be.AppendUint16(prr, 1)
	prr = be.AppendUint16(prr, 1)
	prr = be.AppendUint16(prr, uint16(0xFFFF)) // X = -1
	prr = be.AppendUint16(prr, 258)
	frame(TypPRR, SubPRR, prr)
	return b
}

func TestReadEvents_BigEndian(t *testing.T) {
	rd := NewReader(bytes.NewReader(bigEndianStream()))
	_, err := rd.Next()
	require.NoError(t, err)
	assert.Equal(t, binary.BigEndian, rd.ByteOrder())

	ev, err := ReadEvents(bytes.NewReader(bigEndianStream()))
	require.NoError(t, err)
	require.Len(t, ev.Parametric, 1)
	assert.Equal(t, "42 TX", ev.Parametric[0].Label)
	assert.Equal(t, 3.5, ev.Parametric[0].Result)
	require.Len(t, ev.Completions, 1)
	assert.Equal(t, demux.Coord{X: -1, Y: 258}, ev.Completions[0].Coord())
}

func TestDecodePTR_InvalidFlagAndMissingResult(t *testing.T) {
	le := binary.LittleEndian
	base := le.AppendUint32(nil, 9)

	flagged := append(append([]byte{}, base...), 1, 1, testFlagResultInvalid, 0)
	flagged = le.AppendUint32(flagged, math.Float32bits(8))
	p, err := DecodePTR(flagged, le)
	require.NoError(t, err)
	assert.False(t, p.HasResult)

	truncated := append(append([]byte{}, base...), 1, 1, 0, 0)
	p, err = DecodePTR(truncated, le)
	require.NoError(t, err)
	assert.False(t, p.HasResult)
	assert.Empty(t, p.Text)

	_, err = DecodePTR(base[:3], le)
	assert.ErrorIs(t, err, ErrShortRecord)
}

func TestDecodePRR_MissingCoordinates(t *testing.T) {
	p, err := DecodePRR([]byte{1, 1, 0}, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, int16(MissingCoord), p.X)
	assert.Equal(t, int16(MissingCoord), p.Y)

	_, err = DecodePRR([]byte{1}, binary.LittleEndian)
	assert.ErrorIs(t, err, ErrShortRecord)
}

func TestReader_Errors(t *testing.T) {
	t.Run("empty stream", func(t *testing.T) {
		_, err := ReadEvents(bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrNoFAR)
	})

	t.Run("first record not FAR", func(t *testing.T) {
		_, err := ReadEvents(bytes.NewReader([]byte{0, 0, TypPTR, SubPTR}))
		assert.ErrorIs(t, err, ErrNoFAR)
	})

	t.Run("truncated payload", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		require.NoError(t, w.WritePTR(PTR{Text: "1 T1", HasResult: true}))
		require.NoError(t, w.Flush())
		cut := buf.Bytes()[:buf.Len()-3]

		_, err := ReadEvents(bytes.NewReader(cut))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("truncated header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewWriter(&buf).Flush())
		buf.Write([]byte{5, 0})

		_, err := ReadEvents(&buf)
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), "got %v", err)
	})
}

func TestWriter_EmptyStreamIsJustFAR(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Flush())
	assert.Equal(t, []byte{2, 0, TypFAR, SubFAR, CPULittleEndian, 4}, buf.Bytes())

	ev, err := ReadEvents(&buf)
	require.NoError(t, err)
	assert.True(t, ev.Empty())
}

func TestLabelTestNum(t *testing.T) {
	assert.Equal(t, uint32(123), labelTestNum("123 T1"))
	assert.Equal(t, uint32(0), labelTestNum("T1"))
	assert.Equal(t, uint32(0), labelTestNum("abc T1"))
}
