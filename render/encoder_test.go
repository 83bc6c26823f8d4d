package render

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestRepeatCount(t *testing.T) {
	tests := []struct {
		seconds int
		fps     int
		want    int
	}{
		{5, 24, 120},
		{1, 24, 24},
		{0, 24, 0},
		{-5, 24, 0},
	}
	for _, tt := range tests {
		if got := RepeatCount(tt.seconds, tt.fps); got != tt.want {
			t.Errorf("RepeatCount(%d, %d) = %d; want %d", tt.seconds, tt.fps, got, tt.want)
		}
	}
}

func TestTotalFrames(t *testing.T) {
	if got := TotalFrames([]int{5, 5, 5}, 24); got != 360 {
		t.Errorf("TotalFrames = %d; want 360", got)
	}
	// Negative durations contribute nothing instead of subtracting.
	if got := TotalFrames([]int{5, -3, 2}, 24); got != 168 {
		t.Errorf("TotalFrames with negative duration = %d; want 168", got)
	}
}

func TestEncodeRejectsZeroFrames(t *testing.T) {
	e := NewFFmpegEncoder()

	err := e.Encode(context.Background(), nil, nil, "out.mp4")
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("empty input err = %v; want ErrNoFrames", err)
	}

	// All-zero durations hit the same guard before ffmpeg is touched.
	frames := []image.Image{image.NewRGBA(image.Rect(0, 0, 4, 4))}
	err = e.Encode(context.Background(), frames, []int{0}, "out.mp4")
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("zero-duration err = %v; want ErrNoFrames", err)
	}
}

func TestEncodeRejectsMismatchedLengths(t *testing.T) {
	e := NewFFmpegEncoder()
	frames := []image.Image{image.NewRGBA(image.Rect(0, 0, 4, 4))}

	if err := e.Encode(context.Background(), frames, []int{5, 5}, "out.mp4"); err == nil {
		t.Error("mismatched frames/durations accepted; want error")
	}
}

func TestMuxRequiresAudio(t *testing.T) {
	e := NewFFmpegEncoder()
	if err := e.Mux(context.Background(), "v.mp4", "", "", "out.mp4"); err == nil {
		t.Error("mux with no audio accepted; want error")
	}
}

func TestEncodeFailureReleasesFrameWriter(t *testing.T) {
	e := NewFFmpegEncoder()
	frames := []image.Image{image.NewRGBA(image.Rect(0, 0, 4, 4))}
	outPath := filepath.Join(t.TempDir(), "missing", "out.mp4")

	before := runtime.NumGoroutine()
	if err := e.Encode(context.Background(), frames, []int{1}, outPath); err == nil {
		t.Fatal("encode into a nonexistent directory succeeded; want error")
	}

	// The frame-writer goroutine must not stay parked in a pipe write
	// after the encode fails.
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before {
		if time.Now().After(deadline) {
			t.Fatalf("goroutines before=%d after=%d: frame writer still running", before, runtime.NumGoroutine())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func muxArgs(t *testing.T, videoPath, narrationPath, musicPath string) string {
	t.Helper()
	out, err := muxGraph(videoPath, narrationPath, musicPath, "out.mp4")
	if err != nil {
		t.Fatalf("muxGraph: %v", err)
	}
	return strings.Join(out.GetArgs(), " ")
}

func TestMuxGraphPadsNarrationToVideoLength(t *testing.T) {
	args := muxArgs(t, "v.mp4", "n.mp3", "")

	// Narration is padded with silence so -shortest cuts at the video's
	// end instead of truncating the video to the narration.
	if !strings.Contains(args, "apad") {
		t.Errorf("args missing apad: %s", args)
	}
	if !strings.Contains(args, "-shortest") {
		t.Errorf("args missing -shortest: %s", args)
	}
}

func TestMuxGraphMixesPaddedNarrationWithLoopedMusic(t *testing.T) {
	args := muxArgs(t, "v.mp4", "n.mp3", "m.mp3")

	for _, want := range []string{"apad", "amix", "-stream_loop", "-shortest"} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
}

func TestMuxGraphLoopsMusicOnly(t *testing.T) {
	args := muxArgs(t, "v.mp4", "", "m.mp3")

	if !strings.Contains(args, "-stream_loop") || !strings.Contains(args, "-shortest") {
		t.Errorf("music-only args = %s", args)
	}
	if strings.Contains(args, "apad") {
		t.Errorf("music-only graph should not pad: %s", args)
	}
}

func TestRawRGBAPassesConformingFramesThrough(t *testing.T) {
	e := NewFFmpegEncoder()
	frame := image.NewRGBA(image.Rect(0, 0, e.width, e.height))
	frame.Pix[0] = 0xAB

	pix := e.rawRGBA(frame)
	if len(pix) != 4*e.width*e.height {
		t.Fatalf("pix length = %d; want %d", len(pix), 4*e.width*e.height)
	}
	if pix[0] != 0xAB {
		t.Error("conforming frame was copied instead of passed through")
	}
}

func TestRawRGBAScalesForeignFrames(t *testing.T) {
	e := NewFFmpegEncoder()
	small := image.NewRGBA(image.Rect(0, 0, 8, 8))

	pix := e.rawRGBA(small)
	if len(pix) != 4*e.width*e.height {
		t.Errorf("pix length = %d; want %d", len(pix), 4*e.width*e.height)
	}
}
