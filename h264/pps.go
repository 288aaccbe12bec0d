package h264

import (
	"fmt"

	"github.com/zsiec/avcparse/nalu"
)

// PPS holds the minimal Picture Parameter Set fields needed by this
// package: just the flag that tells a slice header whether
// delta_pic_order_cnt_bottom is present. Everything else in the PPS
// (entropy coding mode, reference index counts, deblocking parameters,
// quantization offsets) is outside this package's scope.
type PPS struct {
	BottomFieldPicOrderPresent bool
}

// ParsePPS decodes the one field this package needs from a PPS NAL unit
// and stops: pps_id, sps_id, and entropy_coding_mode_flag are read (to
// advance past them) and discarded.
func ParsePPS(u nalu.Unit) (PPS, error) {
	if u.Type() != nalu.TypePPS {
		return PPS{}, fmt.Errorf("%w: got %d, want PPS (8)", ErrWrongNALType, u.Type())
	}

	r := u.Reader()
	r.Skip(8) // NAL header byte
	r.GetUE() // pic_parameter_set_id
	r.GetUE() // seq_parameter_set_id
	r.Skip(1) // entropy_coding_mode_flag

	return PPS{BottomFieldPicOrderPresent: r.GetBit() == 1}, nil
}
