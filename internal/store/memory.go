package store

import (
	"context"
	"sync"
	"time"

	"github.com/vgetd/vgetd/internal/data"
)

// Memory is an in-process SnapshotStore. Snapshots are stored by value so
// readers can never observe a partial write.
//
// Entries are kept until process restart by default, so late pollers can
// still read the outcome of a finished job. An optional TTL evicts
// terminal snapshots once they have been stale for longer than the TTL;
// in-flight jobs are never evicted.
type Memory struct {
	mu      sync.RWMutex
	snaps   map[string]entry
	ttl     time.Duration
	stop    chan struct{}
	stopped sync.Once
}

type entry struct {
	snap    data.Snapshot
	written time.Time
}

// NewMemory returns a store with no eviction.
func NewMemory() *Memory {
	return &Memory{snaps: make(map[string]entry), stop: make(chan struct{})}
}

// NewMemoryWithTTL returns a store whose terminal snapshots are evicted
// after ttl. A ttl of 0 disables eviction.
func NewMemoryWithTTL(ttl time.Duration) *Memory {
	m := &Memory{snaps: make(map[string]entry), ttl: ttl, stop: make(chan struct{})}
	if ttl > 0 {
		go m.janitor()
	}
	return m
}

func (m *Memory) Put(ctx context.Context, id string, snap data.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[id] = entry{snap: snap, written: time.Now()}
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (data.Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.snaps[id]
	if !ok {
		return data.Snapshot{}, false, nil
	}
	return e.snap, true, nil
}

// Close stops the eviction janitor, if one is running.
func (m *Memory) Close() {
	m.stopped.Do(func() { close(m.stop) })
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictStale()
		}
	}
}

func (m *Memory) evictStale() {
	cutoff := time.Now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.snaps {
		if e.snap.Status.Terminal() && e.written.Before(cutoff) {
			delete(m.snaps, id)
		}
	}
}
