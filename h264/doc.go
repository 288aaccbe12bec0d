// Package h264 decodes H.264 high-level syntax: Sequence Parameter Sets,
// a minimal Picture Parameter Set, slice headers, SEI message framing, and
// the MP4 avcC configuration record. It decodes just enough of each to
// support Picture Order Count reconstruction (see package poc); it does
// not implement macroblock-level syntax, entropy decoding beyond
// Exp-Golomb, or pixel reconstruction.
package h264
