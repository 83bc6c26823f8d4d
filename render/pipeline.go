package render

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"

	"adforge/config"
	"adforge/jobs"
	"adforge/script"
	"adforge/types"
)

// MediaResolver resolves product media into local files under dir.
type MediaResolver interface {
	Resolve(ctx context.Context, product *types.ProductData, dir string) (*types.MediaAssetSet, error)
}

// Narrator produces an optional narration track for the scenes.
type Narrator interface {
	Synthesize(ctx context.Context, scenes []script.Scene, dir string) string
}

// Notifier receives terminal job snapshots. Implementations must tolerate
// being nil-checked by the pipeline.
type Notifier interface {
	NotifyJob(ctx context.Context, job types.RenderJob)
}

// Uploader publishes a completed video somewhere and returns a location
// string for the job message.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, localPath string, product *types.ProductData) (string, error)
}

// Pipeline drives one render job from product data and script text to a
// playable MP4, degrading through the basic fallback path before failing.
type Pipeline struct {
	store      jobs.Store
	resolver   MediaResolver
	narrator   Narrator
	compositor *Compositor
	encoder    Encoder
	notifier   Notifier
	uploaders  []Uploader
	outputDir  string
}

// NewPipeline wires a Pipeline. narrator and notifier may be nil;
// uploaders may be empty.
func NewPipeline(store jobs.Store, resolver MediaResolver, narrator Narrator, compositor *Compositor, encoder Encoder, outputDir string) *Pipeline {
	return &Pipeline{
		store:      store,
		resolver:   resolver,
		narrator:   narrator,
		compositor: compositor,
		encoder:    encoder,
		outputDir:  outputDir,
	}
}

// WithNotifier attaches a terminal-event notifier.
func (p *Pipeline) WithNotifier(n Notifier) *Pipeline {
	p.notifier = n
	return p
}

// WithUploaders attaches post-completion publishers.
func (p *Pipeline) WithUploaders(uploaders ...Uploader) *Pipeline {
	p.uploaders = append(p.uploaders, uploaders...)
	return p
}

// Run executes the job to a terminal state. The job's temp directory is
// removed on every exit path, and no partial output file survives a
// failure.
func (p *Pipeline) Run(ctx context.Context, jobID string, product *types.ProductData, scriptText string) {
	outputPath := filepath.Join(p.outputDir, fmt.Sprintf("video_%s.mp4", jobID))

	tempDir, err := os.MkdirTemp("", "adforge-"+jobID+"-")
	if err != nil {
		p.fail(ctx, jobID, outputPath, fmt.Errorf("create temp dir: %w", err))
		return
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			log.Printf("[JOB %s] Temp cleanup failed: %v", jobID, err)
		}
	}()

	log.Printf("[JOB %s] Starting render", jobID)
	p.update(jobID, types.JobDownloading, 10, "Downloading product media...")

	assets, err := p.resolver.Resolve(ctx, product, tempDir)
	if err != nil {
		p.fail(ctx, jobID, outputPath, fmt.Errorf("resolve media: %w", err))
		return
	}
	log.Printf("[JOB %s] Resolved %d image(s), %d video(s)", jobID, len(assets.Images), len(assets.Videos))

	primaryErr := p.renderRich(ctx, jobID, scriptText, assets, tempDir, outputPath)
	if primaryErr == nil {
		p.complete(ctx, jobID, product, outputPath, "Video generation completed")
		return
	}

	log.Printf("[JOB %s] Full render failed (%v), attempting basic fallback", jobID, primaryErr)
	p.update(jobID, types.JobRendering, 50, "Full render failed, attempting basic fallback...")

	if fallbackErr := p.renderBasic(ctx, jobID, assets, tempDir, outputPath); fallbackErr != nil {
		p.fail(ctx, jobID, outputPath,
			fmt.Errorf("both full and basic video generation failed: %v -> %v", primaryErr, fallbackErr))
		return
	}

	p.complete(ctx, jobID, product, outputPath,
		fmt.Sprintf("Video generated via basic fallback (full render failed: %v)", primaryErr))
}

// renderRich is the full path: parsed scenes, captioned frames, narration
// and background audio.
func (p *Pipeline) renderRich(ctx context.Context, jobID, scriptText string, assets *types.MediaAssetSet, tempDir, outputPath string) error {
	scenes, err := script.Parse(scriptText)
	if err != nil {
		return err
	}
	log.Printf("[JOB %s] Parsed %d scene(s), %ds total", jobID, len(scenes), script.TotalSeconds(scenes))

	p.update(jobID, types.JobRendering, 40, "Rendering scenes...")

	// Narration is network-bound; synthesize it while frames composite.
	narrationCh := make(chan string, 1)
	if p.narrator != nil {
		go func() { narrationCh <- p.narrator.Synthesize(ctx, scenes, tempDir) }()
	} else {
		narrationCh <- ""
	}

	frames := make([]image.Image, len(scenes))
	durations := make([]int, len(scenes))
	for i, scene := range scenes {
		frames[i] = p.compositor.Compose(scene, i, assets)
		durations[i] = scene.Duration
	}

	assets.NarrationTrack = <-narrationCh

	silent := filepath.Join(tempDir, "silent.mp4")
	if err := p.encoder.Encode(ctx, frames, durations, silent); err != nil {
		return err
	}

	return p.finalize(ctx, jobID, silent, assets.NarrationTrack, assets.BackgroundTrack, outputPath)
}

// renderBasic is the degraded path: every resolved image shown for a fixed
// duration, no captions, no audio.
func (p *Pipeline) renderBasic(ctx context.Context, jobID string, assets *types.MediaAssetSet, tempDir, outputPath string) error {
	frames := make([]image.Image, len(assets.Images))
	durations := make([]int, len(assets.Images))
	for i := range assets.Images {
		frames[i] = p.compositor.Compose(script.Scene{Duration: config.FallbackSceneSeconds}, i, assets)
		durations[i] = config.FallbackSceneSeconds
	}

	silent := filepath.Join(tempDir, "basic.mp4")
	if err := p.encoder.Encode(ctx, frames, durations, silent); err != nil {
		return err
	}
	return copyFile(silent, outputPath)
}

// finalize muxes audio into the silent stream when any track exists. A
// muxing failure degrades to delivering the silent video rather than
// failing the job.
func (p *Pipeline) finalize(ctx context.Context, jobID, silent, narration, music, outputPath string) error {
	if narration == "" && music == "" {
		return copyFile(silent, outputPath)
	}

	p.update(jobID, types.JobMuxing, 80, "Muxing audio tracks...")
	if err := p.encoder.Mux(ctx, silent, narration, music, outputPath); err != nil {
		log.Printf("[JOB %s] Muxing failed, delivering video-only output: %v", jobID, err)
		return copyFile(silent, outputPath)
	}
	return nil
}

func (p *Pipeline) complete(ctx context.Context, jobID string, product *types.ProductData, outputPath, message string) {
	for _, up := range p.uploaders {
		location, err := up.Upload(ctx, outputPath, product)
		if err != nil {
			log.Printf("[JOB %s] %s upload failed: %v", jobID, up.Name(), err)
			continue
		}
		message = fmt.Sprintf("%s; published to %s", message, location)
	}

	p.store.Update(jobID, func(j *types.RenderJob) {
		j.Status = types.JobCompleted
		j.Progress = 100
		j.Message = message
		j.OutputPath = outputPath
	})
	log.Printf("[JOB %s] Completed: %s", jobID, outputPath)
	p.notifyTerminal(ctx, jobID)
}

func (p *Pipeline) fail(ctx context.Context, jobID, outputPath string, cause error) {
	// A failed job must not leave a broken file behind.
	if _, err := os.Stat(outputPath); err == nil {
		_ = os.Remove(outputPath)
	}

	p.store.Update(jobID, func(j *types.RenderJob) {
		j.Status = types.JobFailed
		j.Message = "Video generation failed"
		j.Error = cause.Error()
	})
	log.Printf("[JOB %s] Failed: %v", jobID, cause)
	p.notifyTerminal(ctx, jobID)
}

func (p *Pipeline) update(jobID string, status types.JobStatus, progress int, message string) {
	if err := p.store.Update(jobID, func(j *types.RenderJob) {
		j.Status = status
		j.Progress = progress
		j.Message = message
	}); err != nil {
		log.Printf("[JOB %s] Status update failed: %v", jobID, err)
	}
}

func (p *Pipeline) notifyTerminal(ctx context.Context, jobID string) {
	if p.notifier == nil {
		return
	}
	if job, err := p.store.Get(jobID); err == nil {
		p.notifier.NotifyJob(ctx, job)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return nil
}
