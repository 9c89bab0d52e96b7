package notify

import (
	"context"
	"time"
)

// EventType represents the type of worktree lifecycle event.
type EventType string

// Event type constants.
const (
	EventWorktreeCreated  EventType = "worktree_created"
	EventWorktreeDeleted  EventType = "worktree_deleted"
	EventSyncCompleted    EventType = "sync_completed"
	EventCleanupCompleted EventType = "cleanup_completed"
	EventEnvSetupFailed   EventType = "env_setup_failed"
)

// Severity constants for notification events.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes a worktree lifecycle event for notification.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id,omitempty"`
	Worktree  string         `json:"worktree,omitempty"`
	Branch    string         `json:"branch,omitempty"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"` // SeverityInfo, SeverityWarning, SeverityError
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Notifier sends notifications about worktree lifecycle events.
type Notifier interface {
	// Notify sends a notification. Implementations should be non-blocking
	// and handle errors gracefully (log, don't crash).
	Notify(ctx context.Context, event Event) error
}

type serviceContextKey string

const notifierServiceKey serviceContextKey = "grove.notifier"

// WithNotifier adds a Notifier to the context.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierServiceKey, n)
}

// NotifierFromContext extracts the Notifier from context.
// Returns nil if no notifier is configured.
func NotifierFromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierServiceKey).(Notifier); ok {
		return n
	}
	return nil
}
