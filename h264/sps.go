package h264

import (
	"errors"
	"fmt"

	"github.com/zsiec/avcparse/bitio"
	"github.com/zsiec/avcparse/nalu"
)

// ErrWrongNALType is returned when a parser is handed a NAL unit of a type
// it does not decode.
var ErrWrongNALType = errors.New("h264: wrong NAL unit type")

// ErrUnsupportedPOCType is returned by ParseSPS when pic_order_cnt_type is
// neither 0, 1, nor 2.
var ErrUnsupportedPOCType = errors.New("h264: unsupported pic_order_cnt_type")

// ErrDimensionsTooLarge is returned by ParseSPS when the decoded frame
// width or height exceeds the 2000-pixel smoke-test bound.
var ErrDimensionsTooLarge = errors.New("h264: frame dimensions exceed bound")

// maxSmokeTestDimension is the width/height bound past which ParseSPS
// rejects an SPS outright, matching the reference parser's "smoke test".
const maxSmokeTestDimension = 2000

// profiles for which chroma_format_idc and the scaling-list block are
// present in the SPS, per Annex A of the H.264 specification.
var profilesWithChromaInfo = map[byte]bool{
	44: true, 83: true, 86: true, 100: true, 110: true,
	118: true, 122: true, 128: true, 244: true,
}

// CropRect is a cropping rectangle in pixels, relative to the encoded
// frame: (Left, Top) inclusive, (Right, Bottom) exclusive.
type CropRect struct {
	Left, Top, Right, Bottom int
}

// SPS holds the Sequence Parameter Set fields needed to decode slice
// headers and reconstruct Picture Order Count. It is a plain value type:
// parsing an SPS never retains a reference to the source NAL's bytes.
type SPS struct {
	ProfileIDC      byte
	ConstraintFlags byte
	LevelIDC        byte

	FrameBits int // log2_max_frame_num

	Width, Height int // encoded luma dimensions, in pixels

	Interlaced bool // !frame_mbs_only_flag

	POCType    int
	POCLSBBits int // log2_max_pic_order_cnt_lsb; meaningful only when POCType == 0

	HasCrop bool
	Crop    CropRect
}

// CroppedWidth returns the cropped frame width, or Width if no cropping
// rectangle is present.
func (s SPS) CroppedWidth() int {
	if !s.HasCrop {
		return s.Width
	}
	return s.Crop.Right - s.Crop.Left
}

// CroppedHeight returns the cropped frame height, or Height if no
// cropping rectangle is present.
func (s SPS) CroppedHeight() int {
	if !s.HasCrop {
		return s.Height
	}
	return s.Crop.Bottom - s.Crop.Top
}

// ParseSPS decodes a Sequence Parameter Set NAL unit. It decodes only the
// fields needed for resolution, cropping, and Picture Order Count
// reconstruction; VUI/HRD timing parameters and the rest of the SPS are
// not decoded.
func ParseSPS(u nalu.Unit) (SPS, error) {
	if u.Type() != nalu.TypeSPS {
		return SPS{}, fmt.Errorf("%w: got %d, want SPS (7)", ErrWrongNALType, u.Type())
	}

	r := u.Reader()
	r.Skip(8) // NAL header byte

	var s SPS
	s.ProfileIDC = byte(r.GetWord(8))
	s.ConstraintFlags = byte(r.GetWord(8))
	s.LevelIDC = byte(r.GetWord(8))
	r.GetUE() // seq_parameter_set_id

	if profilesWithChromaInfo[s.ProfileIDC] {
		chromaFormatIDC := r.GetUE()
		if chromaFormatIDC == 3 {
			r.Skip(1) // separate_colour_plane_flag
		}
		r.GetUE() // bit_depth_luma_minus8
		r.GetUE() // bit_depth_chroma_minus8
		r.Skip(1) // qpprime_y_zero_transform_bypass_flag

		if r.GetBit() == 1 { // seq_scaling_matrix_present_flag
			limit := 8
			if chromaFormatIDC == 3 {
				limit = 12
			}
			for i := 0; i < limit; i++ {
				if r.GetBit() == 1 {
					size := 16
					if i >= 6 {
						size = 64
					}
					skipScalingList(r, size)
				}
			}
		}
	}

	s.FrameBits = int(r.GetUE()) + 4
	s.POCType = int(r.GetUE())

	switch s.POCType {
	case 0:
		s.POCLSBBits = int(r.GetUE()) + 4
	case 1:
		r.Skip(1) // delta_pic_order_always_zero_flag
		r.GetSE() // offset_for_non_ref_pic
		r.GetSE() // offset_for_top_to_bottom_field
		numRefInCycle := r.GetUE()
		for i := uint32(0); i < numRefInCycle; i++ {
			r.GetSE() // offset_for_ref_frame[i]
		}
	case 2:
		// no additional data in the stream for POC type 2.
	default:
		return SPS{}, fmt.Errorf("%w: %d", ErrUnsupportedPOCType, s.POCType)
	}

	r.GetUE() // max_num_ref_frames
	r.GetBit() // gaps_in_frame_num_value_allowed_flag

	mbsWidth := r.GetUE()
	mbsHeight := r.GetUE()
	s.Width = int(mbsWidth+1) * 16
	s.Height = int(mbsHeight+1) * 16

	if s.Width > maxSmokeTestDimension || s.Height > maxSmokeTestDimension {
		return SPS{}, fmt.Errorf("%w: %dx%d", ErrDimensionsTooLarge, s.Width, s.Height)
	}

	frameMbsOnly := r.GetBit()
	s.Interlaced = frameMbsOnly == 0
	if frameMbsOnly == 0 {
		r.Skip(1) // mb_adaptive_frame_field_flag
	}
	r.Skip(1) // direct_8x8_inference_flag

	if r.GetBit() == 1 { // frame_cropping_flag
		left := int(r.GetUE()) * 2
		right := int(r.GetUE()) * 2
		top := int(r.GetUE()) * 2
		bottom := int(r.GetUE()) * 2

		s.HasCrop = true
		s.Crop = CropRect{
			Left:   left,
			Right:  s.Width - right,
			Top:    top,
			Bottom: s.Height - bottom,
		}
	}

	if s.Interlaced {
		s.Height *= 2
		if s.HasCrop {
			s.Crop.Top *= 2
			s.Crop.Bottom *= 2
		}
	}

	return s, nil
}

func skipScalingList(r *bitio.Reader, size int) {
	lastScale, nextScale := 8, 8
	for j := 0; j < size; j++ {
		if nextScale != 0 {
			delta := int(r.GetSE())
			nextScale = (lastScale + delta + 256) % 256
		}
		if nextScale != 0 {
			lastScale = nextScale
		}
	}
}
