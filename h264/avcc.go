package h264

import (
	"errors"
	"fmt"

	"github.com/zsiec/avcparse/nalu"
)

// ErrAvcCTooShort is returned by ParseAvcC when the record is shorter
// than the fixed header it must contain.
var ErrAvcCTooShort = errors.New("h264: avcC record too short")

// AvcC holds the fields decoded from an MP4 avcC configuration record:
// the NAL length-prefix size used throughout the stream's AVCC framing,
// and non-owning views of the first SPS and first PPS the record carries.
// Later SPS/PPS entries (a stream may carry more than one of each) are
// ignored, matching this package's single-active-parameter-set scope.
type AvcC struct {
	LengthSize int
	SPS        nalu.Unit
	PPS        nalu.Unit
	HasSPS     bool
	HasPPS     bool
}

// ParseAvcC decodes an avcC configuration record. header is borrowed: the
// returned AvcC's SPS and PPS units alias header's backing array.
//
// Layout: byte 0 configurationVersion, 1 AVCProfileIndication, 2
// profile_compatibility, 3 AVCLevelIndication, byte 4 low 2 bits
// (lengthSizeMinusOne), byte 5 low 5 bits (numSPS), then for each SPS a
// 2-byte big-endian length followed by that many bytes, then 1 byte
// numPPS, then for each PPS a 2-byte length followed by bytes.
//
// A bounds failure partway through leaves the fields decoded so far
// intact (e.g. LengthSize) while leaving SPS/PPS unset; it is not treated
// as a fatal error so the caller can still act on LengthSize.
func ParseAvcC(header []byte) (AvcC, error) {
	if len(header) < 8 {
		return AvcC{}, fmt.Errorf("%w: %d bytes", ErrAvcCTooShort, len(header))
	}

	avc := AvcC{LengthSize: int(header[4]&0x3) + 1}

	numSPS := int(header[5] & 0x1f)
	off := 6
	for i := 0; i < numSPS; i++ {
		if off+2 > len(header) {
			return avc, nil
		}
		length := int(header[off])<<8 | int(header[off+1])
		off += 2
		if off+length > len(header) {
			return avc, nil
		}
		if i == 0 {
			avc.SPS = nalu.Unit{Data: header[off : off+length]}
			avc.HasSPS = true
		}
		off += length
	}

	if off+1 > len(header) {
		return avc, nil
	}
	numPPS := int(header[off])
	off++
	if numPPS > 0 {
		if off+2 > len(header) {
			return avc, nil
		}
		length := int(header[off])<<8 | int(header[off+1])
		off += 2
		if off+length > len(header) {
			return avc, nil
		}
		avc.PPS = nalu.Unit{Data: header[off : off+length]}
		avc.HasPPS = true
	}

	return avc, nil
}
