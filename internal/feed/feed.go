package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/careflowhq/frontdesk/internal/model"
)

// QueueFeed supplies per-department queue snapshots. Implementations wrap
// whatever telemetry transport delivers them; failures surface as
// pkg/errors.Unavailable.
type QueueFeed interface {
	Fetch(ctx context.Context, departmentID string) (model.QueueSnapshot, error)
}

// HistoryConfig bounds the rolling history kept per department.
type HistoryConfig struct {
	SnapshotTTL time.Duration
	HistoryTTL  time.Duration
	Depth       int
}

// CachedFeed decorates a QueueFeed with a short-lived snapshot cache and a
// rolling per-department history used for trend confirmation. Superseded
// snapshots age out of the cache; only the recent window is retained.
type CachedFeed struct {
	upstream  QueueFeed
	snapshots *gocache.Cache
	history   *gocache.Cache
	depth     int

	// historyMu makes the read-append-write on a history window atomic;
	// concurrent first fetches of one department must not drop samples.
	historyMu sync.Mutex
}

func NewCachedFeed(upstream QueueFeed, cfg HistoryConfig) *CachedFeed {
	if cfg.Depth <= 0 {
		cfg.Depth = 5
	}
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = 10 * time.Second
	}
	if cfg.HistoryTTL <= 0 {
		cfg.HistoryTTL = 15 * time.Minute
	}
	return &CachedFeed{
		upstream:  upstream,
		snapshots: gocache.New(cfg.SnapshotTTL, 2*cfg.SnapshotTTL),
		history:   gocache.New(cfg.HistoryTTL, 2*cfg.HistoryTTL),
		depth:     cfg.Depth,
	}
}

func (f *CachedFeed) Fetch(ctx context.Context, departmentID string) (model.QueueSnapshot, error) {
	if cached, ok := f.snapshots.Get(departmentID); ok {
		return cached.(model.QueueSnapshot), nil
	}

	snapshot, err := f.upstream.Fetch(ctx, departmentID)
	if err != nil {
		return model.QueueSnapshot{}, fmt.Errorf("fetch snapshot for %s: %w", departmentID, err)
	}

	f.snapshots.SetDefault(departmentID, snapshot)
	f.record(departmentID, snapshot)
	return snapshot, nil
}

// History returns the retained recent snapshots for a department, oldest
// first. Empty when the department has not been observed recently.
func (f *CachedFeed) History(departmentID string) []model.QueueSnapshot {
	if cached, ok := f.history.Get(departmentID); ok {
		return cached.([]model.QueueSnapshot)
	}
	return nil
}

func (f *CachedFeed) record(departmentID string, snapshot model.QueueSnapshot) {
	f.historyMu.Lock()
	defer f.historyMu.Unlock()

	var window []model.QueueSnapshot
	if cached, ok := f.history.Get(departmentID); ok {
		window = cached.([]model.QueueSnapshot)
	}
	window = append(window, snapshot)
	if len(window) > f.depth {
		window = window[len(window)-f.depth:]
	}
	f.history.SetDefault(departmentID, window)
}
