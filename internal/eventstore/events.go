package eventstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Build event type names.
const (
	TypeBuildStarted   = "build.started"
	TypeBuildCompleted = "build.completed"
	TypeBuildFailed    = "build.failed"
	TypePluginRan      = "build.plugin_ran"
)

// BuildStartedPayload records what a build was asked to do.
type BuildStartedPayload struct {
	SiteName   string `json:"site_name"`
	ConfigPath string `json:"config_path,omitempty"`
	Trigger    string `json:"trigger"` // "cli", "watch", "schedule"
}

// BuildCompletedPayload records a successful build's outcome.
type BuildCompletedPayload struct {
	Pages     int           `json:"pages"`
	Duration  time.Duration `json:"duration_ns"`
	OutputDir string        `json:"output_dir"`
	Warnings  int           `json:"warnings,omitempty"`
}

// BuildFailedPayload records why a build failed.
type BuildFailedPayload struct {
	Error    string        `json:"error"`
	Duration time.Duration `json:"duration_ns"`
}

// PluginRanPayload records one plugin stage execution.
type PluginRanPayload struct {
	Plugin string        `json:"plugin"`
	Stage  string        `json:"stage"` // "pre" or "post"
	Took   time.Duration `json:"took_ns"`
}

// AppendJSON marshals a typed payload and appends it under the given type.
func AppendJSON(ctx context.Context, s Store, buildID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return s.Append(ctx, buildID, eventType, data, nil)
}
