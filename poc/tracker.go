package poc

import (
	"fmt"

	"github.com/zsiec/avcparse/h264"
	"github.com/zsiec/avcparse/nalu"
)

// Tracker reconstructs the 32-bit Picture Order Count of each slice it is
// given, using the SPS/PPS pair established by SetHeader. A Tracker holds
// state across calls to GetPOC (the previous picture's POC low/high bits)
// and is not safe for concurrent use. Create one Tracker per elementary
// stream, not per group-of-pictures: state is reset only on an IDR slice,
// never by the Tracker itself.
type Tracker struct {
	sps  h264.SPS
	pps  h264.PPS
	have bool

	prevLSB int
	prevMSB int

	lastFrameNum int
	lastLSB      int
}

// NewTracker returns a Tracker with no SPS/PPS configured yet; call
// SetHeader before the first GetPOC.
func NewTracker() *Tracker {
	return &Tracker{}
}

// SetHeader parses the SPS and PPS carried in an avcC configuration
// record and resets the tracker's running POC state to zero. It must be
// called again whenever the stream's active parameter sets change.
func (t *Tracker) SetHeader(avc h264.AvcC) error {
	if !avc.HasSPS {
		return fmt.Errorf("poc: avcC has no SPS")
	}
	sps, err := h264.ParseSPS(avc.SPS)
	if err != nil {
		return fmt.Errorf("poc: parsing SPS: %w", err)
	}

	var pps h264.PPS
	if avc.HasPPS {
		pps, err = h264.ParsePPS(avc.PPS)
		if err != nil {
			return fmt.Errorf("poc: parsing PPS: %w", err)
		}
	}

	t.sps = sps
	t.pps = pps
	t.have = true
	t.prevLSB = 0
	t.prevMSB = 0
	return nil
}

// SetParams configures the tracker directly from an already-parsed SPS
// and PPS, resetting running POC state to zero. It serves callers (such
// as package ingest) that parse Annex B SPS/PPS NAL units as they arrive
// rather than through an avcC configuration record.
func (t *Tracker) SetParams(sps h264.SPS, pps h264.PPS) {
	t.sps = sps
	t.pps = pps
	t.have = true
	t.prevLSB = 0
	t.prevMSB = 0
}

// GetPOC parses nal as a slice header and reconstructs its Picture Order
// Count. ok is false if nal is not a slice NAL type (1, 2, or 5) or if
// SetHeader has not been called; in either case poc is 0 and tracker
// state is unchanged.
//
// On an IDR slice, the tracker's running low/high-order state is reset to
// zero and the slice's POC is its own pic_order_cnt_lsb.
// Tracker state (prevLSB/prevMSB) is updated only when nal is a reference
// picture (nal_ref_idc != 0); a non-reference slice's POC is still
// returned but never becomes the basis for a later slice's MSB
// computation.
func (t *Tracker) GetPOC(nal nalu.Unit) (poc int, ok bool) {
	if !t.have {
		return 0, false
	}
	if t.sps.POCType != 0 {
		return 0, false
	}

	slice, err := h264.ParseSliceHeader(nal, t.sps, t.pps)
	if err != nil {
		return 0, false
	}

	t.lastFrameNum = slice.FrameNum

	maxLSB := 1 << uint(t.sps.POCLSBBits)

	prevLSB := t.prevLSB
	prevMSB := t.prevMSB
	if nal.Type() == nalu.TypeIDR {
		prevLSB = 0
		prevMSB = 0
	}

	lsb := slice.PicOrderCntLSB
	msb := prevMSB
	switch {
	case nal.Type() == nalu.TypeIDR:
		// An IDR picture's POC is its own pic_order_cnt_lsb: no wrap correction.
	case lsb < prevLSB && (prevLSB-lsb) >= maxLSB/2:
		msb = prevMSB + maxLSB
	case lsb > prevLSB && (lsb-prevLSB) > maxLSB/2:
		msb = prevMSB - maxLSB
	}

	if nal.IsReference() {
		t.prevLSB = lsb
		t.prevMSB = msb
	}

	t.lastLSB = lsb
	return msb + lsb, true
}

// FrameNum returns the frame_num of the most recently parsed slice.
func (t *Tracker) FrameNum() int {
	return t.lastFrameNum
}

// LastLSB returns the pic_order_cnt_lsb of the most recently parsed
// slice.
func (t *Tracker) LastLSB() int {
	return t.lastLSB
}
