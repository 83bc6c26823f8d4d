package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"adforge/jobs"
	"adforge/render"
	"adforge/scraper"
	"adforge/types"
)

// ScriptGenerator turns product data into a timestamped scene script.
type ScriptGenerator interface {
	Generate(ctx context.Context, product *types.ProductData) (string, error)
}

// VideoController handles the url-to-video API surface: job submission,
// status polling, and file download.
type VideoController struct {
	registry  *scraper.Registry
	generator ScriptGenerator
	store     jobs.Store
	pipeline  *render.Pipeline
}

// NewVideoController wires the controller's dependencies.
func NewVideoController(registry *scraper.Registry, generator ScriptGenerator, store jobs.Store, pipeline *render.Pipeline) *VideoController {
	return &VideoController{
		registry:  registry,
		generator: generator,
		store:     store,
		pipeline:  pipeline,
	}
}

// RegisterVideoRoutes registers video generation routes.
func RegisterVideoRoutes(r *gin.Engine, vc *VideoController) {
	r.POST("/api/videos", vc.handleCreateVideo)
	r.GET("/api/videos/:id/status", vc.handleVideoStatus)
	r.GET("/api/videos/:id/file", vc.handleVideoFile)
}

// CreateVideoRequest is the submission payload.
type CreateVideoRequest struct {
	URL string `json:"url" binding:"required"`
}

// CreateVideoResponse acknowledges a queued render job.
type CreateVideoResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// handleCreateVideo scrapes the product page, generates the ad script,
// and starts the render in the background. Scraping and script generation
// happen synchronously so the caller learns immediately when the URL is
// unusable.
func (vc *VideoController) handleCreateVideo(c *gin.Context) {
	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := vc.registry.Extract(c.Request.Context(), req.URL)
	if err != nil {
		log.Printf("Scrape failed for %s: %v", req.URL, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "failed to extract product data: " + err.Error()})
		return
	}

	scriptText, err := vc.generator.Generate(c.Request.Context(), product)
	if err != nil {
		log.Printf("Script generation failed for %s: %v", req.URL, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate script: " + err.Error()})
		return
	}

	jobID := uuid.New().String()
	job := types.RenderJob{
		JobID:   jobID,
		Status:  types.JobPending,
		Message: "Job queued",
	}
	if err := vc.store.Create(job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job: " + err.Error()})
		return
	}

	go vc.pipeline.Run(context.Background(), jobID, product, scriptText)

	c.JSON(http.StatusAccepted, CreateVideoResponse{
		JobID:   jobID,
		Status:  string(types.JobPending),
		Message: "Video generation started",
	})
}

// handleVideoStatus returns the job snapshot.
func (vc *VideoController) handleVideoStatus(c *gin.Context) {
	job, err := vc.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

// handleVideoFile serves the finished MP4.
func (vc *VideoController) handleVideoFile(c *gin.Context) {
	job, err := vc.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if job.Status != types.JobCompleted {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "video not ready",
			"status": job.Status,
		})
		return
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		c.JSON(http.StatusGone, gin.H{"error": "video file no longer available"})
		return
	}

	c.FileAttachment(job.OutputPath, "video_"+job.JobID+".mp4")
}
