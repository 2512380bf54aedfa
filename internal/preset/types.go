package preset

import "time"

// Execution records a single recall of a preset.
type Execution struct {
	ID         string `json:"id"`
	PresetID   string `json:"preset_id"`
	PresetName string `json:"preset_name"`

	// Trigger says where the recall came from (api, panel, schedule).
	Trigger string `json:"trigger"`
	Status  Status `json:"status"`

	StepsTotal     int `json:"steps_total"`
	StepsCompleted int `json:"steps_completed"`
	StepsFailed    int `json:"steps_failed"`
	StepsSkipped   int `json:"steps_skipped"`

	Failures []StepFailure `json:"failures,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMS  int64     `json:"duration_ms"`
}

// StepFailure records a failed step within an execution.
type StepFailure struct {
	StepIndex int    `json:"step_index"`
	Input     string `json:"input"`
	Output    string `json:"output"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_message"`
}

// Status is the outcome of an execution.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial"   // some steps failed, recall continued
	StatusFailed    Status = "failed"    // a step failed and stopped the recall
	StatusCancelled Status = "cancelled" // context cancelled between groups
)
