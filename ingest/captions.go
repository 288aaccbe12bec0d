package ingest

import (
	"github.com/zsiec/ccx"

	"github.com/zsiec/avcparse/h264"
)

// Caption is one decoded line of closed-caption text. PictureIndex is a
// decode-order count: the number of slices on the connection with a
// reconstructed POC before the carrying SEI message arrived. It is not a
// presentation-order index (package ingest has no MPEG-TS PTS of its own
// to offer; callers that need wall-clock timestamps must pair this with
// their own demux).
type Caption struct {
	PictureIndex int64
	Channel      int
	Text         string
}

// CaptionExtractor decodes CEA-608 pairs and CEA-708 DTVCC blocks carried
// in SEI messages of type h264.SEITypeUserDataRegisteredITUTT35, the way
// prism's MPEG-TS demux decodes them inline during demux. One
// CaptionExtractor holds per-channel decoder state across an entire
// connection and must not be shared between streams.
type CaptionExtractor struct {
	cea608 map[int]*ccx.CEA608Decoder
	cea708 map[int]*ccx.CEA708Service
	dtvcc  []byte
}

// NewCaptionExtractor returns a CaptionExtractor with decoders primed for
// CEA-608 channels 1-4 and CEA-708 services 1-6.
func NewCaptionExtractor() *CaptionExtractor {
	e := &CaptionExtractor{
		cea608: make(map[int]*ccx.CEA608Decoder, 4),
		cea708: make(map[int]*ccx.CEA708Service, 6),
	}
	for ch := 1; ch <= 4; ch++ {
		e.cea608[ch] = ccx.NewCEA608Decoder()
	}
	for svc := 1; svc <= 6; svc++ {
		e.cea708[svc] = ccx.NewCEA708Service()
	}
	return e
}

// Extract decodes the CEA-608 pairs and CEA-708 DTVCC data carried by a
// single SEI message; DTVCC packets are decoded once a following packet
// start arrives. It
// returns nil if sei is not a user-data SEI or carries no caption data.
func (e *CaptionExtractor) Extract(sei h264.SEIMessage, pictureIndex int64) []Caption {
	if sei.Type != h264.SEITypeUserDataRegisteredITUTT35 {
		return nil
	}
	cd := ccx.ExtractCaptions(sei.Payload)
	if cd == nil {
		return nil
	}

	var out []Caption
	for _, pair := range cd.CC608Pairs {
		dec := e.cea608[pair.Channel]
		if dec == nil {
			continue
		}
		text := dec.Decode(pair.Data[0], pair.Data[1])
		if text != "" {
			out = append(out, Caption{PictureIndex: pictureIndex, Channel: pair.Channel, Text: text})
		}
	}

	for _, t := range cd.DTVCC {
		if t.Start {
			out = append(out, e.drainDTVCC(pictureIndex)...)
			e.dtvcc = e.dtvcc[:0]
		}
		e.dtvcc = append(e.dtvcc, t.Data[0], t.Data[1])
	}
	return out
}

func (e *CaptionExtractor) drainDTVCC(pictureIndex int64) []Caption {
	var out []Caption
	for len(e.dtvcc) > 0 {
		size := ccx.DTVCCPacketSize(e.dtvcc[0])
		if size == 0 || len(e.dtvcc) < size {
			break
		}
		for _, block := range ccx.ParseDTVCCPacket(e.dtvcc[:size]) {
			svc := e.cea708[block.ServiceNum]
			if svc == nil {
				continue
			}
			if svc.ProcessBlock(block.Data) {
				if text := svc.DisplayText(); text != "" {
					out = append(out, Caption{
						PictureIndex: pictureIndex,
						Channel:      block.ServiceNum + 6,
						Text:         text,
					})
				}
			}
		}
		e.dtvcc = e.dtvcc[size:]
	}
	return out
}
