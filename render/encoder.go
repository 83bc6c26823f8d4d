package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/image/draw"

	"adforge/config"
)

// ErrNoFrames is returned when encoding is attempted with zero frames
// across all scenes.
var ErrNoFrames = errors.New("no frames to encode")

// Encoder writes scene frames to a video container and muxes audio in.
type Encoder interface {
	// Encode writes frames[i] repeated for durations[i] seconds into a
	// silent video at outPath.
	Encode(ctx context.Context, frames []image.Image, durations []int, outPath string) error

	// Mux combines the silent video with narration and/or background
	// audio into outPath. Either audio path may be empty.
	Mux(ctx context.Context, videoPath, narrationPath, musicPath, outPath string) error
}

// FFmpegEncoder implements Encoder by piping raw RGBA frames into ffmpeg.
type FFmpegEncoder struct {
	width  int
	height int
	fps    int
}

// NewFFmpegEncoder creates an encoder with the fixed canvas parameters.
func NewFFmpegEncoder() *FFmpegEncoder {
	return &FFmpegEncoder{
		width:  config.CanvasWidth,
		height: config.CanvasHeight,
		fps:    config.FrameRate,
	}
}

// RepeatCount returns how many times a scene's frame is written for the
// given duration. Non-positive durations contribute zero frames, which is
// how malformed non-monotonic scripts surface at encode time.
func RepeatCount(seconds, fps int) int {
	n := int(math.Round(float64(seconds) * float64(fps)))
	if n < 0 {
		return 0
	}
	return n
}

// TotalFrames is the number of frames the encoded stream will contain.
func TotalFrames(durations []int, fps int) int {
	total := 0
	for _, d := range durations {
		total += RepeatCount(d, fps)
	}
	return total
}

// Encode streams each frame, repeated per its scene duration, into an
// H.264 video with no audio track.
func (e *FFmpegEncoder) Encode(ctx context.Context, frames []image.Image, durations []int, outPath string) error {
	if len(frames) != len(durations) {
		return fmt.Errorf("got %d frames but %d durations", len(frames), len(durations))
	}
	if TotalFrames(durations, e.fps) == 0 {
		return fmt.Errorf("%w: all scene durations round to zero frames", ErrNoFrames)
	}

	pr, pw := io.Pipe()
	// When ffmpeg exits early its stdin copy stops without closing the
	// read end; close it here so a pending Write fails instead of
	// blocking the writer goroutine forever.
	defer pr.Close()
	go func() {
		for i, frame := range frames {
			pix := e.rawRGBA(frame)
			for n := RepeatCount(durations[i], e.fps); n > 0; n-- {
				if _, err := pw.Write(pix); err != nil {
					pw.CloseWithError(err)
					return
				}
			}
		}
		pw.Close()
	}()

	err := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", e.width, e.height),
		"framerate": e.fps,
	}).
		Output(outPath, ffmpeg.KwArgs{
			"c:v":     config.VideoCodec,
			"pix_fmt": config.PixelFormat,
			"preset":  config.VideoPreset,
			"r":       e.fps,
			"an":      "",
		}).
		WithInput(pr).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		return fmt.Errorf("ffmpeg encode failed: %w", err)
	}
	return nil
}

// Mux combines the silent video stream with the available audio tracks.
// The video's scene-derived length is always preserved: narration is
// padded with silence and music is looped, so every audio graph outlasts
// the video and "-shortest" cuts the output at the video's end.
func (e *FFmpegEncoder) Mux(ctx context.Context, videoPath, narrationPath, musicPath, outPath string) error {
	out, err := muxGraph(videoPath, narrationPath, musicPath, outPath)
	if err != nil {
		return err
	}
	if err := out.OverWriteOutput().Silent(true).Run(); err != nil {
		return fmt.Errorf("ffmpeg mux failed: %w", err)
	}
	return nil
}

// muxGraph builds the filter graph for Mux.
func muxGraph(videoPath, narrationPath, musicPath, outPath string) (*ffmpeg.Stream, error) {
	video := ffmpeg.Input(videoPath)

	outArgs := ffmpeg.KwArgs{
		"c:v":      "copy",
		"c:a":      config.AudioCodec,
		"b:a":      config.AudioBitrate,
		"shortest": "",
	}

	switch {
	case narrationPath != "" && musicPath != "":
		narration := ffmpeg.Input(narrationPath).Audio().Filter("apad", ffmpeg.Args{})
		music := ffmpeg.Input(musicPath, ffmpeg.KwArgs{"stream_loop": -1})
		mixed := ffmpeg.Filter(
			[]*ffmpeg.Stream{narration, music.Audio()},
			"amix",
			ffmpeg.Args{"inputs=2", "duration=first", "weights=1 0.3"},
		)
		return ffmpeg.Output([]*ffmpeg.Stream{video, mixed}, outPath, outArgs), nil

	case narrationPath != "":
		narration := ffmpeg.Input(narrationPath).Audio().Filter("apad", ffmpeg.Args{})
		return ffmpeg.Output([]*ffmpeg.Stream{video, narration}, outPath, outArgs), nil

	case musicPath != "":
		music := ffmpeg.Input(musicPath, ffmpeg.KwArgs{"stream_loop": -1})
		return ffmpeg.Output([]*ffmpeg.Stream{video, music}, outPath, outArgs), nil

	default:
		return nil, fmt.Errorf("mux called with no audio tracks")
	}
}

// rawRGBA returns the frame's pixels as tightly packed RGBA bytes at the
// canvas size, converting when the frame is not already in that layout.
func (e *FFmpegEncoder) rawRGBA(frame image.Image) []byte {
	want := image.Rect(0, 0, e.width, e.height)
	if rgba, ok := frame.(*image.RGBA); ok && rgba.Bounds() == want && rgba.Stride == 4*e.width {
		return rgba.Pix
	}

	dst := image.NewRGBA(want)
	draw.CatmullRom.Scale(dst, want, frame, frame.Bounds(), draw.Src, nil)
	return dst.Pix
}
