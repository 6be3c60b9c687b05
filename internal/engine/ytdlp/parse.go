package ytdlp

import (
	"encoding/json"

	"github.com/vgetd/vgetd/internal/engine"
)

// rawInfo is a partial view of the yt-dlp single-JSON dump. A playlist is
// recognized by the presence of an entries key; everything else is a
// single item.
type rawInfo struct {
	Title       string     `json:"title"`
	Uploader    string     `json:"uploader"`
	Channel     string     `json:"channel"`
	Duration    float64    `json:"duration"`
	Thumbnail   string     `json:"thumbnail"`
	ViewCount   int64      `json:"view_count"`
	Description string     `json:"description"`
	UploadDate  string     `json:"upload_date"`
	Formats     []struct{} `json:"formats"`
	Entries     []rawEntry `json:"entries"`
}

type rawEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

func parseMetadata(b []byte) (*engine.Metadata, error) {
	// Probe for the entries key first; it distinguishes a playlist from a
	// single item even when the playlist is empty.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, err
	}
	_, isPlaylist := probe["entries"]

	var raw rawInfo
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	md := &engine.Metadata{
		IsPlaylist:  isPlaylist,
		Title:       raw.Title,
		Uploader:    raw.Uploader,
		Channel:     raw.Channel,
		Duration:    raw.Duration,
		Thumbnail:   raw.Thumbnail,
		Views:       raw.ViewCount,
		Formats:     len(raw.Formats),
		Description: raw.Description,
		UploadDate:  raw.UploadDate,
	}
	if md.Channel == "" {
		md.Channel = raw.Uploader
	}
	for _, e := range raw.Entries {
		md.Entries = append(md.Entries, engine.Entry{ID: e.ID, Title: e.Title, Thumbnail: e.Thumbnail})
	}
	// Flat playlist dumps often omit a top-level thumbnail; fall back to
	// the first entry's.
	if isPlaylist && md.Thumbnail == "" && len(md.Entries) > 0 {
		md.Thumbnail = md.Entries[0].Thumbnail
	}
	return md, nil
}
