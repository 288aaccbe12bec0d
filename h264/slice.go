package h264

import (
	"fmt"

	"github.com/zsiec/avcparse/nalu"
)

// SliceHeader holds the slice header fields needed to reconstruct Picture
// Order Count. It is consumed immediately by package poc and is not
// retained past a single GetPOC call.
type SliceHeader struct {
	FrameNum int

	FieldPic bool // only meaningful when the SPS is interlaced
	Bottom   bool // only meaningful when FieldPic is true

	PicOrderCntLSB         int // only meaningful when sps.POCType == 0
	DeltaPicOrderCntBottom int // only read when the PPS signals it present and the slice is not a field
}

// ParseSliceHeader decodes the portion of a slice header needed for POC
// reconstruction. It accepts only NAL types 1 (non-IDR slice), 2
// (partition A), and 5 (IDR slice); any other NAL type is rejected.
func ParseSliceHeader(u nalu.Unit, sps SPS, pps PPS) (SliceHeader, error) {
	switch u.Type() {
	case nalu.TypeSlice, nalu.TypePartA, nalu.TypeIDR:
	default:
		return SliceHeader{}, fmt.Errorf("%w: got %d, want slice (1), partition A (2), or IDR (5)", ErrWrongNALType, u.Type())
	}

	r := u.Reader()
	r.Skip(8) // NAL header byte
	r.GetUE() // first_mb_in_slice
	r.GetUE() // slice_type
	r.GetUE() // pic_parameter_set_id

	var h SliceHeader
	h.FrameNum = int(r.GetWord(sps.FrameBits))

	if sps.Interlaced {
		h.FieldPic = r.GetBit() == 1
		if h.FieldPic {
			h.Bottom = r.GetBit() == 1
		}
	}

	if u.Type() == nalu.TypeIDR {
		r.GetUE() // idr_pic_id
	}

	if sps.POCType == 0 {
		h.PicOrderCntLSB = int(r.GetWord(sps.POCLSBBits))
		if pps.BottomFieldPicOrderPresent && !h.FieldPic {
			h.DeltaPicOrderCntBottom = int(r.GetSE())
		}
	}

	return h, nil
}
