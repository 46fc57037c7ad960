package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflowhq/frontdesk/internal/model"
)

type countingFeed struct {
	snapshot model.QueueSnapshot
	err      error
	calls    int
}

func (f *countingFeed) Fetch(_ context.Context, departmentID string) (model.QueueSnapshot, error) {
	f.calls++
	if f.err != nil {
		return model.QueueSnapshot{}, f.err
	}
	snapshot := f.snapshot
	snapshot.DepartmentID = departmentID
	snapshot.CurrentOccupancy = f.calls
	return snapshot, nil
}

func TestFetchCachesSnapshots(t *testing.T) {
	upstream := &countingFeed{}
	cached := NewCachedFeed(upstream, HistoryConfig{SnapshotTTL: time.Minute})
	ctx := context.Background()

	first, err := cached.Fetch(ctx, "cardiology")
	require.NoError(t, err)
	second, err := cached.Fetch(ctx, "cardiology")
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, first, second)

	// Another department is a separate cache entry.
	_, err = cached.Fetch(ctx, "pediatrics")
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.calls)
}

func TestFetchPropagatesUpstreamError(t *testing.T) {
	upstream := &countingFeed{err: errors.New("feed down")}
	cached := NewCachedFeed(upstream, HistoryConfig{})

	_, err := cached.Fetch(context.Background(), "cardiology")
	assert.Error(t, err)

	// Errors are not cached; the next fetch retries.
	_, _ = cached.Fetch(context.Background(), "cardiology")
	assert.Equal(t, 2, upstream.calls)
}

func TestRecordConcurrentSamples(t *testing.T) {
	cached := NewCachedFeed(&countingFeed{}, HistoryConfig{Depth: 16})

	const samples = 8
	var wg sync.WaitGroup
	for i := 0; i < samples; i++ {
		wg.Add(1)
		go func(occupancy int) {
			defer wg.Done()
			cached.record("cardiology", model.QueueSnapshot{
				DepartmentID:     "cardiology",
				CurrentOccupancy: occupancy,
			})
		}(i)
	}
	wg.Wait()

	// No sample is lost to a racing read-append-write.
	assert.Len(t, cached.History("cardiology"), samples)
}

func TestHistoryWindow(t *testing.T) {
	upstream := &countingFeed{}
	cached := NewCachedFeed(upstream, HistoryConfig{
		SnapshotTTL: time.Nanosecond,
		Depth:       3,
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := cached.Fetch(ctx, "cardiology")
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	history := cached.History("cardiology")
	require.Len(t, history, 3)

	// Oldest first, bounded at depth: occupancies 3, 4, 5 survive.
	assert.Equal(t, 3, history[0].CurrentOccupancy)
	assert.Equal(t, 5, history[2].CurrentOccupancy)

	assert.Empty(t, cached.History("pediatrics"))
}
