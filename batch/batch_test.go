package batch

import (
	"context"
	"testing"

	"github.com/zsiec/avcparse/h264"
)

// bitWriter is a minimal MSB-first bit writer used only to synthesize SPS,
// PPS, and slice payloads for this package's tests.
type bitWriter struct {
	buf     []byte
	curBits int
}

func newBitWriter() *bitWriter { return &bitWriter{} }

func (w *bitWriter) writeBit(b uint32) {
	if w.curBits == 0 {
		w.buf = append(w.buf, 0)
	}
	if b != 0 {
		w.buf[len(w.buf)-1] |= 1 << uint(7-w.curBits)
	}
	w.curBits++
	if w.curBits == 8 {
		w.curBits = 0
	}
}

func (w *bitWriter) writeBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.writeBit((v >> uint(i)) & 1)
	}
}

func (w *bitWriter) writeByte(b byte) { w.writeBits(uint32(b), 8) }

func (w *bitWriter) writeUE(v uint32) {
	v++
	nbits := 0
	for t := v; t > 0; t >>= 1 {
		nbits++
	}
	w.writeBits(0, nbits-1)
	w.writeBits(v, nbits)
}

func (w *bitWriter) bytes() []byte { return w.buf }

func buildSPS() []byte {
	bw := newBitWriter()
	bw.writeByte(66)
	bw.writeByte(0)
	bw.writeByte(30)
	bw.writeUE(0) // seq_parameter_set_id
	bw.writeUE(0) // log2_max_frame_num_minus4 -> FrameBits = 4
	bw.writeUE(0) // pic_order_cnt_type = 0
	bw.writeUE(0) // log2_max_pic_order_cnt_lsb_minus4 -> POCLSBBits = 4
	bw.writeUE(0)
	bw.writeBit(0)
	bw.writeUE(4)
	bw.writeUE(4)
	bw.writeBit(1)
	bw.writeBit(0)
	bw.writeBit(0)
	return append([]byte{0x67}, bw.bytes()...)
}

func buildSlice(idr bool, frameNum, pocLSB uint32) []byte {
	bw := newBitWriter()
	bw.writeUE(0)
	bw.writeUE(7)
	bw.writeUE(0)
	bw.writeBits(frameNum, 4)
	if idr {
		bw.writeUE(0)
	}
	bw.writeBits(pocLSB, 4)
	header := byte(1) // non-IDR slice
	if idr {
		header = 5
	}
	header |= 0x20
	return append([]byte{header}, bw.bytes()...)
}

func buildAvcC(t *testing.T, spsPayload []byte) h264.AvcC {
	t.Helper()
	buf := []byte{1, 0x42, 0x00, 0x1e, 0xFF, 0xE1}
	buf = append(buf, byte(len(spsPayload)>>8), byte(len(spsPayload)))
	buf = append(buf, spsPayload...)
	buf = append(buf, 0) // numPPS = 0

	avc, err := h264.ParseAvcC(buf)
	if err != nil {
		t.Fatalf("ParseAvcC: %v", err)
	}
	return avc
}

func annexB(units ...[]byte) []byte {
	var buf []byte
	for _, u := range units {
		buf = append(buf, 0x00, 0x00, 0x01)
		buf = append(buf, u...)
	}
	return buf
}

func TestProcessAllReturnsPOCsPerStream(t *testing.T) {
	t.Parallel()
	sps := buildSPS()
	avc := buildAvcC(t, sps)

	streams := []Stream{
		{
			Key:  "a",
			AvcC: avc,
			Data: annexB(buildSlice(true, 0, 0), buildSlice(false, 1, 2)),
		},
		{
			Key:  "b",
			AvcC: avc,
			Data: annexB(buildSlice(true, 0, 0), buildSlice(false, 1, 4)),
		},
	}

	results, err := ProcessAll(context.Background(), streams, 1)
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Key != "a" || results[1].Key != "b" {
		t.Fatalf("results out of order: %+v", results)
	}
	if got := results[0].POCs; len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("stream a POCs = %v, want [0 2]", got)
	}
	if got := results[1].POCs; len(got) != 2 || got[0] != 0 || got[1] != 4 {
		t.Errorf("stream b POCs = %v, want [0 4]", got)
	}
}

func TestProcessAllCarriesPerStreamError(t *testing.T) {
	t.Parallel()
	good := buildAvcC(t, buildSPS())

	streams := []Stream{
		{Key: "bad", AvcC: h264.AvcC{}, Data: nil},
		{Key: "good", AvcC: good, Data: annexB(buildSlice(true, 0, 0))},
	}

	results, err := ProcessAll(context.Background(), streams, 0)
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if results[0].Err == nil {
		t.Error("expected stream with no SPS to report an error")
	}
	if results[1].Err != nil {
		t.Errorf("stream good: unexpected error %v", results[1].Err)
	}
	if len(results[1].POCs) != 1 || results[1].POCs[0] != 0 {
		t.Errorf("stream good POCs = %v, want [0]", results[1].POCs)
	}
}

func TestProcessAllEmpty(t *testing.T) {
	t.Parallel()
	results, err := ProcessAll(context.Background(), nil, 4)
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}
