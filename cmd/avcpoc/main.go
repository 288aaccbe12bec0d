// Command avcpoc reads an Annex B H.264 elementary stream from disk and
// prints the reconstructed Picture Order Count of every slice it finds,
// exercising the bitio/nalu/h264/poc pipeline end to end the way
// prism's cmd/prism entrypoint wires its demux pipeline to a runnable
// binary.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/zsiec/avcparse/h264"
	"github.com/zsiec/avcparse/nalu"
	"github.com/zsiec/avcparse/poc"
)

func main() {
	var path string
	flag.StringVar(&path, "in", "", "path to an Annex B H.264 elementary stream")
	flag.Parse()

	log := slog.Default()

	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: avcpoc -in stream.h264")
		os.Exit(2)
	}

	if err := run(path, log); err != nil {
		log.Error("avcpoc failed", "error", err)
		os.Exit(1)
	}
}

func run(path string, log *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	units := nalu.LocateAll(data, 0)

	tracker := poc.NewTracker()
	var sps h264.SPS
	var pps h264.PPS
	havePPS := false
	configured := false

	for _, unit := range units {
		switch unit.Type() {
		case nalu.TypeSPS:
			parsed, err := h264.ParseSPS(unit)
			if err != nil {
				log.Warn("SPS parse error", "error", err)
				continue
			}
			sps = parsed
		case nalu.TypePPS:
			parsed, err := h264.ParsePPS(unit)
			if err != nil {
				log.Warn("PPS parse error", "error", err)
				continue
			}
			pps = parsed
			havePPS = true
		}
		if havePPS && !configured {
			tracker.SetParams(sps, pps)
			configured = true
		}
	}

	if !configured {
		return fmt.Errorf("no SPS/PPS found in %s", path)
	}

	for _, unit := range units {
		switch unit.Type() {
		case nalu.TypeSlice, nalu.TypePartA, nalu.TypeIDR:
			p, ok := tracker.GetPOC(unit)
			if !ok {
				continue
			}
			fmt.Printf("frame_num=%d poc=%d\n", tracker.FrameNum(), p)
		case nalu.TypeSEI:
			sei, err := h264.ParseSEI(unit)
			if err != nil {
				log.Debug("SEI parse error", "error", err)
				continue
			}
			if sei.Type == h264.SEITypeUserDataRegisteredITUTT35 {
				log.Debug("caption SEI payload", "bytes", len(sei.Payload))
			}
		}
	}

	return nil
}
