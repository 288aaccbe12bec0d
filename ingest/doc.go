// Package ingest wires the core bitio/nalu/h264/poc parser to a live SRT
// publish connection, in the manner of prism's ingest/srt package: it
// accepts connections, feeds their byte stream through the Annex B
// locator, and reports reconstructed picture order counts and decoded
// closed captions to a caller-supplied Handler. It is ambient surface
// built to exercise the core parser end to end, not part of it: unlike
// bitio/nalu/h264/poc, it does I/O and depends on srtgo and ccx.
package ingest
