package script

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"adforge/config"
)

// ErrMalformedScript is returned when a script has no scenes block or no
// line in it matches the scene grammar.
var ErrMalformedScript = errors.New("malformed script")

// Scene is one timed segment of the output video.
type Scene struct {
	// Offset is the scene start in seconds from the beginning of the video.
	Offset int
	// Caption is the on-screen text, emphasis markers stripped.
	Caption string
	// Duration is the scene length in seconds. Derived from the next
	// scene's offset; the last scene gets DefaultSceneSeconds. Not clamped:
	// non-monotonic timestamps produce zero or negative durations, which
	// the encoder treats as zero frames.
	Duration int
}

const delimiter = "---"

// Parse turns raw script text into an ordered list of scenes.
//
// The script is a header block and a scenes block separated by a line of
// "---". Each scene line starts with a "[m:ss]" timestamp followed by a
// caption, optionally wrapped in asterisks. Lines that do not match are
// skipped; a script that yields zero scenes is malformed.
func Parse(text string) ([]Scene, error) {
	_, scenesBlock, found := strings.Cut(text, delimiter)
	if !found {
		return nil, fmt.Errorf("%w: missing %q delimiter between header and scenes", ErrMalformedScript, delimiter)
	}

	var scenes []Scene
	for _, line := range strings.Split(scenesBlock, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "[") || !strings.Contains(line, "]") {
			continue
		}

		end := strings.Index(line, "]")
		offset, err := parseTimestamp(line[1:end])
		if err != nil {
			log.Printf("Skipping scene line %q: %v", line, err)
			continue
		}

		scenes = append(scenes, Scene{
			Offset:   offset,
			Caption:  stripEmphasis(strings.TrimSpace(line[end+1:])),
			Duration: config.DefaultSceneSeconds,
		})
	}

	if len(scenes) == 0 {
		return nil, fmt.Errorf("%w: no valid scene lines found", ErrMalformedScript)
	}

	for i := 0; i < len(scenes)-1; i++ {
		scenes[i].Duration = scenes[i+1].Offset - scenes[i].Offset
	}
	scenes[len(scenes)-1].Duration = config.DefaultSceneSeconds

	return scenes, nil
}

// parseTimestamp converts "m:ss" into total seconds.
func parseTimestamp(s string) (int, error) {
	mins, secs, found := strings.Cut(s, ":")
	if !found {
		return 0, fmt.Errorf("timestamp %q missing ':'", s)
	}
	m, err := strconv.Atoi(strings.TrimSpace(mins))
	if err != nil {
		return 0, fmt.Errorf("bad minutes in %q: %w", s, err)
	}
	sec, err := strconv.Atoi(strings.TrimSpace(secs))
	if err != nil {
		return 0, fmt.Errorf("bad seconds in %q: %w", s, err)
	}
	return m*60 + sec, nil
}

// stripEmphasis removes the asterisk markers the generator wraps captions
// in. The leading marker is always removed when present; the trailing one
// only when it is actually there. This mirrors the long-standing generator
// output handling, so a caption like "*Hello" comes back as "Hello".
func stripEmphasis(caption string) string {
	if !strings.HasPrefix(caption, "*") {
		return caption
	}
	caption = caption[1:]
	caption = strings.TrimSuffix(caption, "*")
	return caption
}

// TotalSeconds returns the sum of all scene durations.
func TotalSeconds(scenes []Scene) int {
	total := 0
	for _, s := range scenes {
		total += s.Duration
	}
	return total
}
