package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flab03/ymatch-analysis/internal/matcher"
)

func TestLoadTable(t *testing.T) {
	path := writeFile(t, "review.json.gz", gzipBytes(t, corpus))

	var last Progress
	table, err := LoadTable(context.Background(), Options{Path: path}, func(p Progress) {
		last = p
	})
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 4, table.RecordCount())

	u1, ok := table.Get(matcher.ReviewKey{BusinessID: "B1", UserID: "U1"})
	require.True(t, ok)
	assert.InDelta(t, 4.5, u1.AverageStars, 1e-9)
	assert.Equal(t, 2, u1.Count)

	assert.True(t, last.Done)
	assert.Equal(t, int64(4), last.Records)
	assert.Greater(t, last.Size, int64(0))
	assert.LessOrEqual(t, last.Bytes, last.Size)
	assert.Greater(t, last.Bytes, int64(0))
}

func TestLoadTable_AbortsOnInvalidRecord(t *testing.T) {
	data := corpus + `{"type":"tip","business_id":"B1","user_id":"U1","stars":5}` + "\n"
	path := writeFile(t, "review.json", []byte(data))

	table, err := LoadTable(context.Background(), Options{Path: path}, nil)
	require.Error(t, err)
	assert.Nil(t, table)
	assert.True(t, errors.Is(err, matcher.ErrInvalidRecord))

	var recErr *RecordError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, 6, recErr.Line)
}

func TestLoad_Cancelled(t *testing.T) {
	var sb []byte
	for i := 0; i < cancelCheckEvery+1; i++ {
		sb = append(sb, `{"type":"review","business_id":"B1","user_id":"U1","stars":5}`+"\n"...)
	}
	path := writeFile(t, "review.json", sb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := Open(context.Background(), Options{Path: path})
	require.NoError(t, err)
	defer r.Close()

	err = Load(ctx, r, matcher.NewAggregator(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoad_CancelledBetweenProgressReports(t *testing.T) {
	var sb []byte
	for i := 0; i < cancelCheckEvery*3; i++ {
		sb = append(sb, `{"type":"review","business_id":"B1","user_id":"U1","stars":5}`+"\n"...)
	}
	path := writeFile(t, "review.json", sb)

	r, err := Open(context.Background(), Options{Path: path})
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := matcher.NewAggregator()
	err = Load(ctx, r, agg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, cancelCheckEvery, r.Line())
}

func TestLoad_FinalizedAggregatorIsNotARecordError(t *testing.T) {
	path := writeFile(t, "review.json", []byte(corpus))
	r, err := Open(context.Background(), Options{Path: path})
	require.NoError(t, err)
	defer r.Close()

	agg := matcher.NewAggregator()
	agg.Finalize()

	err = Load(context.Background(), r, agg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, matcher.ErrInvariant))
	assert.False(t, errors.Is(err, matcher.ErrInvalidRecord))

	var recErr *RecordError
	assert.False(t, errors.As(err, &recErr))
}
