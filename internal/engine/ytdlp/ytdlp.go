// Package ytdlp adapts the go-ytdlp wrapper to the engine contract.
package ytdlp

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	ytdlplib "github.com/lrstanley/go-ytdlp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vgetd/vgetd/internal/engine"
	"github.com/vgetd/vgetd/internal/format"
	"github.com/vgetd/vgetd/internal/metrics"
)

// progressInterval paces the wrapper's progress callback. The normalized
// events downstream are cheap, so half a second keeps streams lively
// without flooding subscribers.
const progressInterval = 500 * time.Millisecond

type Engine struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log}
}

var _ engine.Engine = (*Engine)(nil)

// Install resolves or downloads the yt-dlp binary so later invocations
// do not depend on a preinstalled copy.
func Install(ctx context.Context) error {
	_, err := ytdlplib.Install(ctx, nil)
	return err
}

// Download drives one full download, translating wrapper progress updates
// into engine events on the calling goroutine's callback.
func (e *Engine) Download(ctx context.Context, url string, opts engine.Options) error {
	cmd := ytdlplib.New().
		Output(opts.OutputTemplate).
		NoWarnings().
		IgnoreErrors()

	if opts.Format != "" {
		cmd = cmd.Format(opts.Format)
	}
	if opts.Continue {
		cmd = cmd.Continue()
	}
	if opts.Retries > 0 {
		cmd = cmd.Retries(strconv.Itoa(opts.Retries))
	}
	if opts.NoPlaylist {
		cmd = cmd.NoPlaylist()
	} else {
		cmd = cmd.YesPlaylist()
	}
	if opts.CookiesFromBrowser != "" {
		cmd = cmd.CookiesFromBrowser(opts.CookiesFromBrowser)
	}
	if opts.ExtractAudio {
		cmd = cmd.ExtractAudio().AudioFormat(opts.AudioFormat).AudioQuality(format.AudioQuality)
	} else if opts.RemuxFormat != "" {
		cmd = cmd.RecodeVideo(opts.RemuxFormat)
	}

	if opts.OnEvent != nil {
		cmd = cmd.ProgressFunc(progressInterval, func(update ytdlplib.ProgressUpdate) {
			if ev, ok := toEvent(update); ok {
				opts.OnEvent(ev)
			}
		})
	}

	timer := prometheus.NewTimer(metrics.EngineLatency.WithLabelValues("download"))
	defer timer.ObserveDuration()
	_, err := cmd.Run(ctx, url)
	if err != nil {
		metrics.EngineErrors.Inc()
		return fmt.Errorf("yt-dlp: %w", err)
	}
	return nil
}

// toEvent maps a wrapper progress update onto the raw event taxonomy.
// Updates outside that taxonomy (pre-processing etc.) are dropped.
func toEvent(u ytdlplib.ProgressUpdate) (engine.Event, bool) {
	switch u.Status {
	case ytdlplib.ProgressStatusDownloading, ytdlplib.ProgressStatusPostProcessing:
		ev := engine.Event{
			Kind:       engine.EventDownloading,
			Downloaded: int64(u.DownloadedBytes),
			Total:      int64(u.TotalBytes),
			ETASeconds: etaSeconds(u),
		}
		// The wrapper does not report an instantaneous rate; derive the
		// average over the transfer so far.
		if !u.Started.IsZero() {
			if elapsed := time.Since(u.Started).Seconds(); elapsed > 0 {
				ev.SpeedBPS = float64(u.DownloadedBytes) / elapsed
			}
		}
		return ev, true
	case ytdlplib.ProgressStatusFinished:
		return engine.Event{Kind: engine.EventFinished}, true
	case ytdlplib.ProgressStatusError:
		return engine.Event{Kind: engine.EventError, Message: "Error during download"}, true
	default:
		return engine.Event{}, false
	}
}

func etaSeconds(u ytdlplib.ProgressUpdate) int {
	if eta := u.ETA(); eta > 0 {
		return int(eta.Seconds())
	}
	return 0
}

// Extract fetches metadata without downloading, using flat playlist
// extraction so large playlists stay cheap.
func (e *Engine) Extract(ctx context.Context, url string) (*engine.Metadata, error) {
	timer := prometheus.NewTimer(metrics.EngineLatency.WithLabelValues("extract"))
	defer timer.ObserveDuration()

	res, err := ytdlplib.New().
		DumpSingleJSON().
		FlatPlaylist().
		SkipDownload().
		NoWarnings().
		Run(ctx, url)
	if err != nil {
		metrics.EngineErrors.Inc()
		return nil, fmt.Errorf("yt-dlp extract: %w", err)
	}
	md, err := parseMetadata([]byte(res.Stdout))
	if err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return md, nil
}
