// Package format derives the engine's format-selection expression from
// the requested mode, quality and container.
package format

import (
	"fmt"
	"strconv"
)

const (
	ModeAudio = "audio"
	ModeVideo = "video"
	ModeBoth  = "both"

	QualityBest  = "best"
	QualityWorst = "worst"

	// AudioQuality is the fixed target for audio-only transcodes.
	AudioQuality = "192"

	defaultVideoContainer = "mp4"
)

// Selection is the derived format expression plus post-processing flags.
type Selection struct {
	Expr string
	// ExtractAudio requests the audio transcode step (audio mode only).
	ExtractAudio bool
	AudioFormat  string
	// RemuxFormat is non-empty when the requested container differs from
	// the engine's native default and a conversion step is needed.
	RemuxFormat string
}

// Build maps (mode × quality × container) onto a selector expression,
// preferring exact-container matches and falling back progressively to
// best-available. Quality is "best", "worst", or a numeric height
// ceiling; anything unparsable is treated as "best".
func Build(mode, quality, audioFormat, videoFormat string) Selection {
	if videoFormat == "" {
		videoFormat = defaultVideoContainer
	}
	height, numeric := heightOf(quality)

	switch mode {
	case ModeAudio:
		return Selection{
			Expr:         "bestaudio/best",
			ExtractAudio: true,
			AudioFormat:  audioFormat,
		}
	case ModeVideo:
		sel := Selection{RemuxFormat: remuxFor(videoFormat)}
		switch {
		case quality == QualityWorst:
			sel.Expr = fmt.Sprintf("worstvideo[ext=%s]/worstvideo", videoFormat)
		case numeric:
			sel.Expr = fmt.Sprintf("bestvideo[height<=%d][ext=%s]/bestvideo[height<=%d]/bestvideo/best", height, videoFormat, height)
		default:
			sel.Expr = fmt.Sprintf("bestvideo[ext=%s]/bestvideo/best", videoFormat)
		}
		return sel
	default: // both
		sel := Selection{RemuxFormat: remuxFor(videoFormat)}
		switch {
		case quality == QualityWorst:
			sel.Expr = fmt.Sprintf("worst[ext=%s]/worstvideo+worstaudio/worst", videoFormat)
		case numeric:
			sel.Expr = fmt.Sprintf("best[height<=%d][ext=%s]/bestvideo[height<=%d]+bestaudio/best[height<=%d]/best", height, videoFormat, height, height)
		default:
			sel.Expr = fmt.Sprintf("best[ext=%s]/bestvideo[ext=%s]+bestaudio/bestvideo+bestaudio/best", videoFormat, videoFormat)
		}
		return sel
	}
}

// remuxFor returns the conversion target, or empty when the requested
// container is already the engine's native default.
func remuxFor(videoFormat string) string {
	if videoFormat == defaultVideoContainer {
		return ""
	}
	return videoFormat
}

func heightOf(quality string) (int, bool) {
	h, err := strconv.Atoi(quality)
	if err != nil || h <= 0 {
		return 0, false
	}
	return h, true
}
