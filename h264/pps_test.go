package h264

import (
	"errors"
	"testing"

	"github.com/zsiec/avcparse/nalu"
)

func buildPPS(t *testing.T, bottomFieldPresent bool) []byte {
	t.Helper()
	bw := newBitWriter()
	bw.writeUE(0)  // pic_parameter_set_id
	bw.writeUE(0)  // seq_parameter_set_id
	bw.writeBit(0) // entropy_coding_mode_flag
	if bottomFieldPresent {
		bw.writeBit(1)
	} else {
		bw.writeBit(0)
	}
	return append([]byte{0x68}, bw.bytes()...)
}

func TestParsePPSBottomFieldFlag(t *testing.T) {
	t.Parallel()

	for _, present := range []bool{true, false} {
		u := nalu.Unit{Data: buildPPS(t, present)}
		pps, err := ParsePPS(u)
		if err != nil {
			t.Fatalf("ParsePPS: %v", err)
		}
		if pps.BottomFieldPicOrderPresent != present {
			t.Errorf("BottomFieldPicOrderPresent = %v, want %v", pps.BottomFieldPicOrderPresent, present)
		}
	}
}

func TestParsePPSWrongNALType(t *testing.T) {
	t.Parallel()
	u := nalu.Unit{Data: []byte{0x67, 0x00}} // SPS, not PPS
	_, err := ParsePPS(u)
	if !errors.Is(err, ErrWrongNALType) {
		t.Fatalf("got %v, want ErrWrongNALType", err)
	}
}
