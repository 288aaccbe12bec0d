package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	srtgo "github.com/zsiec/srtgo"

	"github.com/zsiec/avcparse/h264"
	"github.com/zsiec/avcparse/nalu"
	"github.com/zsiec/avcparse/poc"
)

// srtReadBufferSize is the read buffer for SRT socket reads, matching
// prism's ingest/srt server (1316 bytes is the standard SRT payload
// size; 10x gives headroom for a few MPEG-TS-sized bursts).
const srtReadBufferSize = 1316 * 10

// srtLatencyNs is the SRT latency setting in nanoseconds (120ms).
const srtLatencyNs = 120_000_000

// Handler receives the results of parsing one SRT connection's
// elementary stream: each reconstructed picture (by POC) and any
// captions decoded from its SEI messages.
type Handler interface {
	OnPicture(streamKey string, frameNum, poc int)
	OnCaption(streamKey string, c Caption)
}

// SRTSource accepts SRT publish connections carrying a raw Annex B H.264
// elementary stream (no MPEG-TS framing) and feeds each into the core
// parser. It mirrors prism's ingest/srt.Server accept/dispatch shape but
// replaces its MPEG-TS registry hand-off with a direct
// nalu.Locate/h264/poc pipeline.
type SRTSource struct {
	log     *slog.Logger
	addr    string
	handler Handler
}

// NewSRTSource creates a source listening on addr. If log is nil,
// slog.Default() is used.
func NewSRTSource(addr string, handler Handler, log *slog.Logger) *SRTSource {
	if log == nil {
		log = slog.Default()
	}
	return &SRTSource{
		log:     log.With("component", "srt-source"),
		addr:    addr,
		handler: handler,
	}
}

// Start begins accepting SRT publish connections. It blocks until ctx is
// cancelled.
func (s *SRTSource) Start(ctx context.Context) error {
	cfg := srtgo.DefaultConfig()
	cfg.Latency = srtLatencyNs

	l, err := srtgo.Listen(s.addr, cfg)
	if err != nil {
		return fmt.Errorf("SRT listen on %s: %w", s.addr, err)
	}
	s.log.Info("listening", "addr", s.addr)

	l.SetAcceptRejectFunc(func(req srtgo.ConnRequest) srtgo.RejectReason {
		if req.StreamID == "" {
			return srtgo.RejPeer
		}
		return 0
	})

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn("accept error", "error", err)
			continue
		}

		streamKey := conn.StreamID()
		s.log.Info("publish", "stream_key", streamKey, "remote", conn.RemoteAddr())
		go s.handleConnection(ctx, conn, streamKey)
	}
}

// connState tracks the per-connection parser state needed to turn a
// running byte stream into POCs and captions: the active SPS/PPS pair,
// the tracker built from them, and the caption decoder's carry-over
// state across SEI messages.
type connState struct {
	tracker    *poc.Tracker
	captions   *CaptionExtractor
	sps        h264.SPS
	pps        h264.PPS
	havePPS    bool
	configured bool
	pictureIdx int64
}

func (s *SRTSource) handleConnection(ctx context.Context, conn *srtgo.Conn, streamKey string) {
	defer conn.Close()

	st := &connState{
		tracker:  poc.NewTracker(),
		captions: NewCaptionExtractor(),
	}

	read := make([]byte, srtReadBufferSize)
	var buf []byte

	for {
		if ctx.Err() != nil {
			break
		}
		n, err := conn.Read(read)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Debug("read error", "stream_key", streamKey, "error", err)
			}
			break
		}
		buf = append(buf, read[:n]...)
		buf = s.drain(streamKey, st, buf)
	}

	s.log.Info("connection closed", "stream_key", streamKey)
}

// drain locates and processes every complete Annex B NAL unit currently
// in buf, returning the unconsumed remainder (a partial unit awaiting
// more bytes).
func (s *SRTSource) drain(streamKey string, st *connState, buf []byte) []byte {
	consumed := 0
	for {
		unit, next, status := nalu.Locate(buf[consumed:], 0, false)
		if status == nalu.StatusNeedMore {
			break
		}
		consumed += next
		s.processUnit(streamKey, st, unit)
	}

	remainder := make([]byte, len(buf)-consumed)
	copy(remainder, buf[consumed:])
	return remainder
}

func (s *SRTSource) processUnit(streamKey string, st *connState, unit nalu.Unit) {
	switch unit.Type() {
	case nalu.TypeSPS:
		parsed, err := h264.ParseSPS(unit)
		if err != nil {
			s.log.Debug("SPS parse error", "stream_key", streamKey, "error", err)
			return
		}
		st.sps = parsed
		if st.havePPS {
			st.tracker.SetParams(st.sps, st.pps)
			st.configured = true
		}

	case nalu.TypePPS:
		parsed, err := h264.ParsePPS(unit)
		if err != nil {
			s.log.Debug("PPS parse error", "stream_key", streamKey, "error", err)
			return
		}
		st.pps = parsed
		st.havePPS = true
		st.tracker.SetParams(st.sps, st.pps)
		st.configured = true

	case nalu.TypeSlice, nalu.TypePartA, nalu.TypeIDR:
		if !st.configured {
			return
		}
		p, ok := st.tracker.GetPOC(unit)
		if !ok {
			return
		}
		st.pictureIdx++
		if s.handler != nil {
			s.handler.OnPicture(streamKey, st.tracker.FrameNum(), p)
		}

	case nalu.TypeSEI:
		sei, err := h264.ParseSEI(unit)
		if err != nil {
			s.log.Debug("SEI parse error", "stream_key", streamKey, "error", err)
			return
		}
		for _, c := range st.captions.Extract(sei, st.pictureIdx) {
			if s.handler != nil {
				s.handler.OnCaption(streamKey, c)
			}
		}
	}
}
