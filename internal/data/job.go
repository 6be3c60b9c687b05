package data

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a download job. A job moves
// starting -> downloading* -> (completed | error). The engine's own
// per-file "finished" marker is reported but is not terminal; only
// completed and error end a job.
type Status string

const (
	StatusUnknown     Status = "unknown"
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	StatusFinished    Status = "finished"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
)

// Terminal reports whether no further transitions follow this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Snapshot is an immutable point-in-time observation of a job's progress.
// Field names mirror the wire format consumed by the UI.
type Snapshot struct {
	Status     Status  `json:"status"`
	Progress   float64 `json:"progress"`
	Speed      float64 `json:"speed,omitempty"`
	ETA        int     `json:"eta,omitempty"`
	Message    string  `json:"message,omitempty"`
	Folder     string  `json:"folder,omitempty"`
	Downloaded int64   `json:"downloaded,omitempty"`
	Total      int64   `json:"total,omitempty"`
}

// UnknownSnapshot is the sentinel returned when a job id has no stored
// snapshot. Polling an unknown id is not an HTTP error.
func UnknownSnapshot() Snapshot {
	return Snapshot{
		Status:   StatusUnknown,
		Progress: 0,
		Message:  "Download not found",
	}
}

// Job is the registry entry for a running download task. It exists only
// while the task is running; the task removes it on every exit path.
type Job struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Platform  string    `json:"platform"`
	StartedAt time.Time `json:"started_at"`
}

// Jobs is a point-in-time copy of the active job registry.
type Jobs []Job

// QueueEntry is one active job as listed by the queue endpoint: registry
// metadata merged with the job's last-known progress.
type QueueEntry struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Platform  string    `json:"platform"`
	Progress  float64   `json:"progress"`
	Status    Status    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// DownloadRequest carries the parameters for one download job.
type DownloadRequest struct {
	URL         string
	Quality     string
	Mode        string
	AudioFormat string
	VideoFormat string
	Platform    string
	Browser     string
	IsPlaylist  bool
}

var (
	ErrMissingURL = errors.New("URL is required")
)
