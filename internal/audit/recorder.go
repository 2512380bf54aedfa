package audit

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-av/internal/preset"
	"github.com/nerrad567/gray-logic-av/internal/routing"
)

// writeTimeout bounds each audit insert so a slow disk cannot stall routing.
const writeTimeout = 2 * time.Second

// Source recorded for rows written by the dispatcher listener.
const sourceDispatcher = "dispatcher"

// Logger defines the logging interface used by Recorder.
type Logger interface {
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

// Recorder writes dispatcher events to the audit trail.
type Recorder struct {
	repo   Repository
	logger Logger
}

// NewRecorder creates a Recorder writing to repo.
func NewRecorder(repo Repository, logger Logger) *Recorder {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Recorder{repo: repo, logger: logger}
}

// RouteChanged records a destination's new source.
func (r *Recorder) RouteChanged(ev routing.RouteEvent) {
	action := ActionRoute
	if ev.Origin == routing.OriginFeedback {
		action = ActionFeedback
	}

	details := map[string]any{
		"source_id": ev.Source.ID,
	}
	if len(ev.Path) > 0 {
		details["path"] = ev.Path
	}

	r.write(&AuditLog{
		Action:     action,
		EntityType: EntityDestination,
		EntityID:   ev.DestinationID,
		Source:     sourceDispatcher,
		Details:    details,
		CreatedAt:  ev.Timestamp,
	})
}

// RouterConnectivityChanged records a switcher going online or offline.
func (r *Recorder) RouterConnectivityChanged(ev routing.ConnectivityEvent) {
	r.write(&AuditLog{
		Action:     ActionConnectivity,
		EntityType: EntityRouter,
		EntityID:   ev.RouterID,
		Source:     sourceDispatcher,
		Details:    map[string]any{"online": ev.Online},
		CreatedAt:  ev.Timestamp,
	})
}

// PresetRecalled records the outcome of a preset recall.
func (r *Recorder) PresetRecalled(exec preset.Execution) {
	details := map[string]any{
		"execution_id": exec.ID,
		"status":       string(exec.Status),
		"completed":    exec.StepsCompleted,
		"failed":       exec.StepsFailed,
		"skipped":      exec.StepsSkipped,
		"duration_ms":  exec.DurationMS,
	}
	if len(exec.Failures) > 0 {
		details["failures"] = exec.Failures
	}

	r.write(&AuditLog{
		Action:     ActionPreset,
		EntityType: EntityPreset,
		EntityID:   exec.PresetID,
		Source:     exec.Trigger,
		Details:    details,
		CreatedAt:  exec.CompletedAt,
	})
}

func (r *Recorder) write(log *AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.repo.Create(ctx, log); err != nil {
		r.logger.Error("writing audit log failed",
			"action", log.Action,
			"entity_id", log.EntityID,
			"error", err,
		)
	}
}
