package source

import (
	"context"
	"errors"
	"io"

	"github.com/rotisserie/eris"

	"github.com/flab03/ymatch-analysis/internal/matcher"
)

const (
	// progressEvery is how many records pass between progress callbacks.
	progressEvery = 100_000
	// cancelCheckEvery is how many records pass between context checks.
	cancelCheckEvery = 1_000
)

// Progress describes how far a Load has got.
type Progress struct {
	Records int64
	Bytes   int64
	Size    int64 // 0 when unknown
	Done    bool
}

// Load reads every record from r into agg. The first invalid record aborts
// the load; agg must then be discarded.
func Load(ctx context.Context, r *Reader, agg *matcher.Aggregator, onProgress func(Progress)) error {
	var records int64
	report := func(done bool) {
		if onProgress != nil {
			onProgress(Progress{Records: records, Bytes: r.BytesRead(), Size: r.Size(), Done: done})
		}
	}

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := agg.Add(rec); err != nil {
			if errors.Is(err, matcher.ErrInvalidRecord) {
				return &RecordError{Line: r.Line(), Err: err}
			}
			return err
		}

		records++
		if records%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "source: load cancelled")
			}
		}
		if records%progressEvery == 0 {
			report(false)
		}
	}

	report(true)
	return nil
}

// LoadTable opens the corpus, aggregates it and returns the finished table.
func LoadTable(ctx context.Context, opts Options, onProgress func(Progress)) (*matcher.ReviewTable, error) {
	r, err := Open(ctx, opts)
	if err != nil {
		return nil, err
	}

	agg := matcher.NewAggregator()
	if err := Load(ctx, r, agg, onProgress); err != nil {
		r.Close()
		return nil, err
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	return agg.Finalize(), nil
}
