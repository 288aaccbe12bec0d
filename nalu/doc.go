// Package nalu locates H.264 Network Abstraction Layer units within an
// encoded byte stream. It supports Annex B framing (start-code delimited)
// and AVCC framing (length-prefixed, as used inside MP4/avcC streams).
//
// [Unit] is a non-owning view into caller-supplied memory: locating a NAL
// never copies payload bytes. The caller must keep the backing buffer
// alive and unmodified for as long as any Unit derived from it is in use.
package nalu
