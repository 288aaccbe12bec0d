package h264

import (
	"fmt"

	"github.com/zsiec/avcparse/nalu"
)

// SEI message payload types relevant to caller-side caption extraction
// (see package ingest). The rest of Annex D is not interpreted here.
const (
	SEITypeUserDataRegisteredITUTT35 = 4
)

// SEIMessage is a non-owning view of a single SEI message's header: its
// type and length (each the sum of any leading 0xff extension bytes plus
// the terminating byte, per Annex D.1) and a pointer to its payload bytes
// inside the originating NAL. A SEIMessage is valid only as long as the
// underlying NAL's bytes remain alive. Only the first message in a NAL is
// exposed: a NAL containing multiple concatenated SEI messages is not
// split by this package.
type SEIMessage struct {
	Type    int
	Length  int
	Payload []byte
}

// ParseSEI decodes the header of the first SEI message in an SEI NAL
// unit, returning a view onto its payload bytes.
func ParseSEI(u nalu.Unit) (SEIMessage, error) {
	if u.Type() != nalu.TypeSEI {
		return SEIMessage{}, fmt.Errorf("%w: got %d, want SEI (6)", ErrWrongNALType, u.Type())
	}
	if len(u.Data) < 2 {
		return SEIMessage{}, fmt.Errorf("h264: SEI NAL too short (%d bytes)", len(u.Data))
	}

	data := u.Data
	i := 1 // skip the NAL header byte

	msgType := 0
	for i < len(data) && data[i] == 0xff {
		msgType += 255
		i++
	}
	if i >= len(data) {
		return SEIMessage{}, fmt.Errorf("h264: SEI NAL truncated while reading payloadType")
	}
	msgType += int(data[i])
	i++

	length := 0
	for i < len(data) && data[i] == 0xff {
		length += 255
		i++
	}
	if i >= len(data) {
		return SEIMessage{}, fmt.Errorf("h264: SEI NAL truncated while reading payloadSize")
	}
	length += int(data[i])
	i++

	return SEIMessage{Type: msgType, Length: length, Payload: data[i:]}, nil
}
