// Package outpath resolves engine output path templates per platform.
package outpath

import (
	"os"
	"path/filepath"
)

const (
	PlatformYouTube   = "youtube"
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"

	subdir = "vgetd"
)

// Template returns the engine-native output template for a job. Playlist
// jobs nest output under a per-playlist directory with index-prefixed
// filenames; non-playlist jobs prefix with the uploader name. Instagram
// and Facebook items get a flat platform-tagged name instead.
func Template(baseDir, platform string, isPlaylist bool) string {
	switch platform {
	case PlatformInstagram:
		return filepath.Join(baseDir, "Instagram - %(title)s [%(id)s].%(ext)s")
	case PlatformFacebook:
		return filepath.Join(baseDir, "Facebook - %(title)s [%(id)s].%(ext)s")
	}
	if isPlaylist {
		return filepath.Join(baseDir, "%(playlist)s", "%(playlist_index)s - %(title)s [%(id)s].%(ext)s")
	}
	return filepath.Join(baseDir, "%(uploader)s - %(title)s [%(id)s].%(ext)s")
}

// DefaultDir returns the download folder: the Downloads directory under
// the user's home when it exists, else a folder directly under home.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return subdir
	}
	dl := filepath.Join(home, "Downloads")
	if info, err := os.Stat(dl); err == nil && info.IsDir() {
		return filepath.Join(dl, subdir)
	}
	return filepath.Join(home, subdir)
}
