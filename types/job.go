package types

// JobStatus enumerates the lifecycle of a render job.
type JobStatus string

const (
	JobPending     JobStatus = "pending"
	JobDownloading JobStatus = "downloading"
	JobRendering   JobStatus = "rendering"
	JobMuxing      JobStatus = "muxing"
	JobCompleted   JobStatus = "completed"
	JobFailed      JobStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// RenderJob is the externally observable state of one video render.
// It is mutated only by the pipeline that owns the job; readers get
// eventually-consistent snapshots.
type RenderJob struct {
	JobID      string    `json:"job_id"`
	Status     JobStatus `json:"status"`
	Progress   int       `json:"progress"`
	Message    string    `json:"message"`
	OutputPath string    `json:"output_path,omitempty"`
	Error      string    `json:"error,omitempty"`
}
