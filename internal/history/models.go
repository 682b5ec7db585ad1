package history

import "time"

// Status is the outcome of a recorded run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Run is one preprocessing invocation.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     Status    `json:"status"`
	DryRun     bool      `json:"dry_run"`
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	VideoDir   string    `json:"video_dir"`
	Total      int       `json:"total_entries"`
	Videos     int       `json:"video_entries"`
	Changed    int       `json:"changed_entries"`
	Skipped    int       `json:"skipped_entries"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`

	// Renames and Skips are only populated by GetRun.
	Renames []Rename `json:"renames,omitempty"`
	Skips   []Skip   `json:"skips,omitempty"`
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Rename records a display name rewrite.
type Rename struct {
	Key           string `json:"key"`
	ComponentID   string `json:"component_id"`
	Previous      string `json:"previous,omitempty"`
	HadPrevious   bool   `json:"had_previous"`
	DisplayName   string `json:"display_name"`
	ClientVideoID string `json:"client_video_id"`
	Descriptor    string `json:"descriptor"`
}

// Skip records an entry left unchanged because of a malformed key.
type Skip struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}
