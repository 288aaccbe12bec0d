package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/zsiec/avcparse/h264"
	"github.com/zsiec/avcparse/nalu"
	"github.com/zsiec/avcparse/poc"
)

// Stream is one elementary stream to process: the avcC configuration
// record describing its active SPS/PPS, and the complete Annex B byte
// buffer holding its NAL units.
type Stream struct {
	Key  string
	AvcC h264.AvcC
	Data []byte
}

// Result holds one Stream's reconstructed POC sequence, in NAL order, or
// the error that stopped processing it. A per-stream error never aborts
// the batch: it is reported here rather than through ProcessAll's own
// error return.
type Result struct {
	Key  string
	POCs []int
	Err  error
}

// ProcessAll runs one poc.Tracker per Stream across a worker pool bounded
// to at most limit concurrent goroutines (limit <= 0 means unbounded),
// returning one Result per input Stream in the same order. ProcessAll
// itself only returns a non-nil error if ctx is cancelled before all
// streams finish; individual parse failures are carried in each Result.
func ProcessAll(ctx context.Context, streams []Stream, limit int) ([]Result, error) {
	results := make([]Result, len(streams))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, st := range streams {
		i, st := i, st
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pocs, err := processStream(st)
			results[i] = Result{Key: st.Key, POCs: pocs, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func processStream(st Stream) ([]int, error) {
	tr := poc.NewTracker()
	if err := tr.SetHeader(st.AvcC); err != nil {
		return nil, fmt.Errorf("batch: stream %q: %w", st.Key, err)
	}

	var pocs []int
	consumed := 0
	for consumed < len(st.Data) {
		unit, next, status := nalu.Locate(st.Data[consumed:], 0, true)
		if status == nalu.StatusNeedMore {
			break
		}
		consumed += next

		switch unit.Type() {
		case nalu.TypeSlice, nalu.TypePartA, nalu.TypeIDR:
			if p, ok := tr.GetPOC(unit); ok {
				pocs = append(pocs, p)
			}
		}
	}
	return pocs, nil
}
