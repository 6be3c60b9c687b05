// Package engine defines the contract with the external media extraction
// and download engine. The orchestrator only ever sees this surface; the
// engine is driven with a declarative options object and reports raw
// events through a synchronous callback on the invoking goroutine.
package engine

import "context"

// Engine is the external extraction/download collaborator.
type Engine interface {
	// Download runs a full download of url. It blocks for the lifetime of
	// the transfer, invoking opts.OnEvent zero or more times from the
	// calling goroutine, and returns only once the engine has finished or
	// failed.
	Download(ctx context.Context, url string, opts Options) error

	// Extract fetches metadata for url without downloading.
	Extract(ctx context.Context, url string) (*Metadata, error)
}

// Options is the declarative option set for one download invocation.
type Options struct {
	// OutputTemplate is the engine-native output path template.
	OutputTemplate string
	// Format is the format-selection expression.
	Format string
	// NoPlaylist suppresses the engine's own playlist expansion.
	NoPlaylist bool
	// Retries bounds the engine-level retry count.
	Retries int
	// Continue resumes partial downloads.
	Continue bool
	// CookiesFromBrowser names a browser to read cookies from, when the
	// platform requires an authenticated session.
	CookiesFromBrowser string
	// ExtractAudio requests an audio-only post-processing transcode into
	// AudioFormat at a fixed 192K-equivalent target quality.
	ExtractAudio bool
	AudioFormat  string
	// RemuxFormat requests a container conversion after download. Empty
	// means keep the engine's native container.
	RemuxFormat string
	// OnEvent receives raw progress events. May be nil.
	OnEvent func(Event)
}

// EventKind is the raw event taxonomy emitted by the engine.
type EventKind string

const (
	EventDownloading EventKind = "downloading"
	EventFinished    EventKind = "finished"
	EventError       EventKind = "error"
)

// Event is one raw callback observation from the engine.
type Event struct {
	Kind       EventKind
	Downloaded int64
	Total      int64
	// SpeedBPS is the transfer rate in bytes per second, 0 when unknown.
	SpeedBPS float64
	// ETASeconds is the estimated remaining time, 0 when unknown.
	ETASeconds int
	Message    string
}

// Metadata describes a single item or playlist as reported by Extract.
type Metadata struct {
	IsPlaylist  bool
	Title       string
	Uploader    string
	Channel     string
	Duration    float64
	Thumbnail   string
	Views       int64
	Formats     int
	Description string
	UploadDate  string
	Entries     []Entry
}

// Entry is one playlist member in flat extraction.
type Entry struct {
	ID        string
	Title     string
	Thumbnail string
}
