// Package service contains the download orchestrator: it owns job
// creation, drives the engine, and funnels every snapshot for a job
// through that job's single owning task.
package service

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/vgetd/vgetd/internal/data"
	"github.com/vgetd/vgetd/internal/engine"
	"github.com/vgetd/vgetd/internal/format"
	"github.com/vgetd/vgetd/internal/metrics"
	"github.com/vgetd/vgetd/internal/outpath"
	"github.com/vgetd/vgetd/internal/progress"
	"github.com/vgetd/vgetd/internal/store"
)

// engineRetries bounds the engine's own retry count per download.
const engineRetries = 3

// Downloads is the surface the transport layer consumes.
type Downloads interface {
	// Start mints one job per request, spawns its task, and returns the
	// ordered job ids immediately.
	Start(ctx context.Context, reqs []data.DownloadRequest) []string
	// Snapshot returns the last stored snapshot for id, or the unknown
	// sentinel when the id has never been seen.
	Snapshot(ctx context.Context, id string) data.Snapshot
	// Queue lists currently active jobs merged with their last progress.
	Queue(ctx context.Context) []data.QueueEntry
	// Subscribe attaches the single live progress channel for id.
	Subscribe(id string) (<-chan data.Snapshot, func())
	// Info fetches metadata for a URL without downloading.
	Info(ctx context.Context, url string) (*engine.Metadata, error)
}

type Orchestrator struct {
	log      *slog.Logger
	store    store.SnapshotStore
	registry *store.Registry
	hub      *progress.Hub
	eng      engine.Engine
	baseDir  string

	// sem bounds concurrent engine invocations when non-nil. Off by
	// default; the stock behavior is one unbounded task per request.
	sem *semaphore.Weighted
}

var _ Downloads = (*Orchestrator)(nil)

func NewOrchestrator(log *slog.Logger, st store.SnapshotStore, reg *store.Registry, hub *progress.Hub, eng engine.Engine, baseDir string, maxActive int64) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	o := &Orchestrator{
		log:      log,
		store:    st,
		registry: reg,
		hub:      hub,
		eng:      eng,
		baseDir:  baseDir,
	}
	if maxActive > 0 {
		o.sem = semaphore.NewWeighted(maxActive)
	}
	return o
}

func (o *Orchestrator) Start(ctx context.Context, reqs []data.DownloadRequest) []string {
	ids := make([]string, 0, len(reqs))
	for _, req := range reqs {
		id := uuid.NewString()
		ids = append(ids, id)
		o.registry.Add(data.Job{
			ID:        id,
			URL:       req.URL,
			Platform:  req.Platform,
			StartedAt: time.Now(),
		})
		metrics.JobsStarted.Inc()
		go o.run(id, req)
	}
	return ids
}

// run executes one job to completion. Failures are captured here and
// surfaced as a terminal error snapshot; nothing propagates to the caller
// of Start or to sibling tasks.
func (o *Orchestrator) run(id string, req data.DownloadRequest) {
	// Registry removal is the very last action on every exit path, so a
	// finished job can never be observed in the queue.
	defer o.registry.Remove(id)
	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()

	t := &task{o: o, id: id}

	sel := format.Build(req.Mode, req.Quality, req.AudioFormat, req.VideoFormat)
	opts := engine.Options{
		OutputTemplate: outpath.Template(o.baseDir, req.Platform, req.IsPlaylist),
		Format:         sel.Expr,
		NoPlaylist:     !req.IsPlaylist,
		Retries:        engineRetries,
		Continue:       true,
		ExtractAudio:   sel.ExtractAudio,
		AudioFormat:    sel.AudioFormat,
		RemuxFormat:    sel.RemuxFormat,
		OnEvent:        t.handleEvent,
	}
	if req.Platform == outpath.PlatformInstagram || req.Platform == outpath.PlatformFacebook {
		opts.CookiesFromBrowser = req.Browser
	}

	t.publish(data.Snapshot{
		Status:   data.StatusStarting,
		Progress: 0,
		Message:  "Starting download...",
	})

	if o.sem != nil {
		if err := o.sem.Acquire(context.Background(), 1); err != nil {
			t.publish(data.Snapshot{Status: data.StatusError, Message: err.Error()})
			return
		}
		defer o.sem.Release(1)
	}

	o.log.Info("download started", "id", id, "url", req.URL, "platform", req.Platform, "mode", req.Mode, "playlist", req.IsPlaylist)

	if err := o.eng.Download(context.Background(), req.URL, opts); err != nil {
		o.log.Error("download failed", "id", id, "err", err)
		t.publish(data.Snapshot{Status: data.StatusError, Progress: 0, Message: err.Error()})
		return
	}

	t.publish(data.Snapshot{
		Status:   data.StatusCompleted,
		Progress: 100,
		Message:  "Download completed successfully!",
		Folder:   o.baseDir,
	})
	o.log.Info("download completed", "id", id)
}

func (o *Orchestrator) Snapshot(ctx context.Context, id string) data.Snapshot {
	snap, ok, err := o.store.Get(ctx, id)
	if err != nil {
		o.log.Error("snapshot get", "id", id, "err", err)
	}
	if !ok {
		return data.UnknownSnapshot()
	}
	return snap
}

func (o *Orchestrator) Queue(ctx context.Context) []data.QueueEntry {
	jobs := o.registry.List()
	entries := make([]data.QueueEntry, 0, len(jobs))
	for _, j := range jobs {
		snap, ok, err := o.store.Get(ctx, j.ID)
		if err != nil {
			o.log.Error("queue snapshot get", "id", j.ID, "err", err)
		}
		if !ok {
			snap = data.Snapshot{Status: data.StatusUnknown}
		}
		entries = append(entries, data.QueueEntry{
			ID:        j.ID,
			URL:       j.URL,
			Platform:  j.Platform,
			Progress:  snap.Progress,
			Status:    snap.Status,
			StartedAt: j.StartedAt,
		})
	}
	return entries
}

func (o *Orchestrator) Subscribe(id string) (<-chan data.Snapshot, func()) {
	return o.hub.Subscribe(id)
}

func (o *Orchestrator) Info(ctx context.Context, url string) (*engine.Metadata, error) {
	return o.eng.Extract(ctx, url)
}

// task carries the per-job publish state. Once a terminal snapshot is
// written the task goes silent: a job's state never regresses from
// completed or error, even if the engine calls back afterwards.
type task struct {
	o    *Orchestrator
	id   string
	done atomic.Bool
}

func (t *task) publish(snap data.Snapshot) {
	if t.done.Load() {
		return
	}
	if snap.Status.Terminal() {
		t.done.Store(true)
	}
	if err := t.o.store.Put(context.Background(), t.id, snap); err != nil {
		t.o.log.Error("snapshot put", "id", t.id, "err", err)
	}
	t.o.hub.Publish(t.id, snap)
	metrics.SnapshotsPublished.WithLabelValues(string(snap.Status)).Inc()
}

// handleEvent normalizes one raw engine event into a snapshot.
func (t *task) handleEvent(ev engine.Event) {
	switch ev.Kind {
	case engine.EventDownloading:
		t.publish(data.Snapshot{
			Status:     data.StatusDownloading,
			Progress:   Percent(ev.Downloaded, ev.Total),
			Speed:      round2(ev.SpeedBPS / (1024 * 1024)),
			ETA:        ev.ETASeconds,
			Downloaded: ev.Downloaded,
			Total:      ev.Total,
		})
	case engine.EventFinished:
		t.publish(data.Snapshot{
			Status:   data.StatusFinished,
			Progress: 100,
			Message:  "Download completed successfully!",
		})
	case engine.EventError:
		msg := ev.Message
		if msg == "" {
			msg = "Error during download"
		}
		t.publish(data.Snapshot{Status: data.StatusError, Message: msg})
	}
}

// Percent computes downloaded/total as a percentage rounded to two
// decimals. Unknown or zero totals yield 0 rather than a division fault.
func Percent(downloaded, total int64) float64 {
	if total <= 0 || downloaded <= 0 {
		return 0
	}
	return round2(float64(downloaded) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
