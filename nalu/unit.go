package nalu

import "github.com/zsiec/avcparse/bitio"

// NAL unit types recognized by this package (ITU-T H.264 Table 7-1).
const (
	TypeSlice     = 1
	TypePartA     = 2
	TypePartB     = 3
	TypePartC     = 4
	TypeIDR       = 5
	TypeSEI       = 6
	TypeSPS       = 7
	TypePPS       = 8
	TypeAUD       = 9
)

// Unit is a non-owning view of one NAL unit's payload: its RBSP bytes
// (including the one-byte NAL header, excluding any length prefix or
// start code) plus, when the unit was found via Annex B scanning, the
// bytes of the start code that preceded it. Unit is cheap to copy — the
// copy aliases the same backing array — and carries no mutable state; a
// fresh [bitio.Reader] is created per parse pass via [Unit.Reader].
type Unit struct {
	Data      []byte
	StartCode []byte
}

// Type returns the nal_unit_type (low 5 bits of the header byte). It is 0
// for a zero-value Unit.
func (u Unit) Type() byte {
	if len(u.Data) == 0 {
		return 0
	}
	return u.Data[0] & 0x1F
}

// RefIdc returns the two-bit nal_ref_idc field from the header byte.
func (u Unit) RefIdc() byte {
	if len(u.Data) == 0 {
		return 0
	}
	return (u.Data[0] >> 5) & 0x3
}

// IsReference reports whether this NAL belongs to a reference picture
// (nal_ref_idc != 0).
func (u Unit) IsReference() bool {
	return len(u.Data) > 0 && u.Data[0]&0x60 != 0
}

// Reader returns a fresh bit-granular cursor over the unit's payload,
// starting at bit 0 (the first bit of the NAL header byte). Syntax
// parsers normally Skip(8) past the header before decoding structured
// fields.
func (u Unit) Reader() *bitio.Reader {
	return bitio.NewReader(u.Data)
}
