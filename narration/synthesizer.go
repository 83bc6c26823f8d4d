package narration

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"adforge/script"
)

// Synthesizer turns scene captions into one narration track. Narration is
// strictly optional: any failure degrades to "no track" instead of an
// error, so a broken TTS backend never fails a render.
type Synthesizer struct {
	speech SpeechClient
	concat concatFunc
}

type concatFunc func(listFile, outFile string) error

// NewSynthesizer creates a Synthesizer using the given speech client.
func NewSynthesizer(speech SpeechClient) *Synthesizer {
	return &Synthesizer{speech: speech, concat: ffmpegConcat}
}

// Synthesize produces one spoken segment per scene and concatenates them
// in scene order into a single MP3 under dir. It returns an empty path
// when no segment could be produced.
func (s *Synthesizer) Synthesize(ctx context.Context, scenes []script.Scene, dir string) string {
	if s == nil || s.speech == nil {
		return ""
	}

	var segments []string
	for i, scene := range scenes {
		if strings.TrimSpace(scene.Caption) == "" {
			continue
		}

		audio, err := s.speech.Synthesize(ctx, scene.Caption)
		if err != nil {
			log.Printf("Narration for scene %d failed, skipping: %v", i, err)
			continue
		}

		segment := filepath.Join(dir, fmt.Sprintf("narration_%03d.mp3", i))
		if err := os.WriteFile(segment, audio, 0644); err != nil {
			log.Printf("Failed to save narration segment %d: %v", i, err)
			continue
		}
		segments = append(segments, segment)
	}

	if len(segments) == 0 {
		log.Printf("No narration segments produced, rendering without voiceover")
		return ""
	}
	if len(segments) == 1 {
		return segments[0]
	}

	track := filepath.Join(dir, "narration.mp3")
	if err := s.concatenate(segments, dir, track); err != nil {
		log.Printf("Narration concat failed, rendering without voiceover: %v", err)
		return ""
	}
	return track
}

// concatenate joins segments in order using the ffmpeg concat demuxer.
func (s *Synthesizer) concatenate(segments []string, dir, outFile string) error {
	listFile := filepath.Join(dir, "narration_concat.txt")
	var lines []string
	for _, seg := range segments {
		lines = append(lines, fmt.Sprintf("file '%s'", filepath.ToSlash(seg)))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return s.concat(listFile, outFile)
}

func ffmpegConcat(listFile, outFile string) error {
	err := ffmpeg.Input(listFile, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(outFile, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w", err)
	}
	return nil
}
