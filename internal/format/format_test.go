package format

import "testing"

func TestBuildAudio(t *testing.T) {
	sel := Build(ModeAudio, "best", "mp3", "mp4")
	if sel.Expr != "bestaudio/best" {
		t.Fatalf("expected bestaudio/best got %q", sel.Expr)
	}
	if !sel.ExtractAudio || sel.AudioFormat != "mp3" {
		t.Fatalf("expected audio extraction to mp3, got %#v", sel)
	}
	if sel.RemuxFormat != "" {
		t.Fatalf("audio mode must not request a remux, got %q", sel.RemuxFormat)
	}
}

func TestBuildVideo(t *testing.T) {
	cases := []struct {
		name    string
		quality string
		vformat string
		want    string
		remux   string
	}{
		{"best mp4", "best", "mp4", "bestvideo[ext=mp4]/bestvideo/best", ""},
		{"best webm remuxes", "best", "webm", "bestvideo[ext=webm]/bestvideo/best", "webm"},
		{"worst", "worst", "mp4", "worstvideo[ext=mp4]/worstvideo", ""},
		{"height ceiling", "720", "mp4", "bestvideo[height<=720][ext=mp4]/bestvideo[height<=720]/bestvideo/best", ""},
		{"garbage quality falls back to best", "ultra", "mp4", "bestvideo[ext=mp4]/bestvideo/best", ""},
		{"empty container defaults to mp4", "best", "", "bestvideo[ext=mp4]/bestvideo/best", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sel := Build(ModeVideo, tc.quality, "mp3", tc.vformat)
			if sel.Expr != tc.want {
				t.Fatalf("expected %q got %q", tc.want, sel.Expr)
			}
			if sel.RemuxFormat != tc.remux {
				t.Fatalf("expected remux %q got %q", tc.remux, sel.RemuxFormat)
			}
			if sel.ExtractAudio {
				t.Fatalf("video mode must not extract audio")
			}
		})
	}
}

func TestBuildBoth(t *testing.T) {
	cases := []struct {
		name    string
		quality string
		vformat string
		want    string
	}{
		{"best", "best", "mp4", "best[ext=mp4]/bestvideo[ext=mp4]+bestaudio/bestvideo+bestaudio/best"},
		{"worst", "worst", "mp4", "worst[ext=mp4]/worstvideo+worstaudio/worst"},
		{"height ceiling", "480", "mp4", "best[height<=480][ext=mp4]/bestvideo[height<=480]+bestaudio/best[height<=480]/best"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sel := Build(ModeBoth, tc.quality, "mp3", tc.vformat)
			if sel.Expr != tc.want {
				t.Fatalf("expected %q got %q", tc.want, sel.Expr)
			}
		})
	}
}

func TestBuildUnknownModeActsAsBoth(t *testing.T) {
	sel := Build("", "best", "mp3", "mkv")
	if sel.Expr != "best[ext=mkv]/bestvideo[ext=mkv]+bestaudio/bestvideo+bestaudio/best" {
		t.Fatalf("unexpected expr %q", sel.Expr)
	}
	if sel.RemuxFormat != "mkv" {
		t.Fatalf("expected mkv remux got %q", sel.RemuxFormat)
	}
}
