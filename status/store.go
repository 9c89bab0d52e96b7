package status

import (
	"time"
)

// Activity is the state of the assistant process in a worktree.
type Activity string

const (
	ActivityIdle      Activity = "idle"
	ActivityWorking   Activity = "working"
	ActivityBlocked   Activity = "blocked"
	ActivityWaiting   Activity = "waiting"
	ActivityCompleted Activity = "completed"
	ActivityError     Activity = "error"
	ActivityUnknown   Activity = "unknown"
)

// Valid reports whether a is one of the defined activity states.
func (a Activity) Valid() bool {
	switch a {
	case ActivityIdle, ActivityWorking, ActivityBlocked, ActivityWaiting,
		ActivityCompleted, ActivityError, ActivityUnknown:
		return true
	}
	return false
}

// CommandRecord is one command sent to a worktree's session.
type CommandRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	Command        string    `json:"command"` // Stored redacted
	SourceWorktree string    `json:"source_worktree,omitempty"`
	PaneIndex      int       `json:"pane_index"`
	WindowIndex    int       `json:"window_index"`
}

// WorktreeStatus is the tracked activity record for one worktree.
type WorktreeStatus struct {
	WorktreeName   string          `json:"worktree_name"`
	WorktreePath   string          `json:"worktree_path"`
	Branch         string          `json:"branch"`
	TmuxSession    string          `json:"tmux_session,omitempty"`
	AITool         string          `json:"ai_tool"`
	Activity       Activity        `json:"activity_status"`
	CurrentTask    string          `json:"current_task,omitempty"`
	LastTaskUpdate *time.Time      `json:"last_task_update,omitempty"`
	RecentCommands []CommandRecord `json:"recent_commands"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AddCommand appends a command record, evicting the oldest entries once
// the history exceeds maxHistory.
func (w *WorktreeStatus) AddCommand(rec CommandRecord, maxHistory int) {
	w.RecentCommands = append(w.RecentCommands, rec)
	if maxHistory > 0 && len(w.RecentCommands) > maxHistory {
		w.RecentCommands = w.RecentCommands[len(w.RecentCommands)-maxHistory:]
	}
	w.UpdatedAt = time.Now()
}

// UpdateTask sets the current task and activity state.
func (w *WorktreeStatus) UpdateTask(task string, activity Activity) {
	now := time.Now()
	w.CurrentTask = task
	w.Activity = activity
	w.LastTaskUpdate = &now
	w.UpdatedAt = now
}

// MarkCompleted marks the current task as finished.
func (w *WorktreeStatus) MarkCompleted() {
	w.Activity = ActivityCompleted
	w.UpdatedAt = time.Now()
}

// MarkIdle resets the worktree to idle and clears the current task.
func (w *WorktreeStatus) MarkIdle() {
	w.Activity = ActivityIdle
	w.CurrentTask = ""
	w.UpdatedAt = time.Now()
}

// StoreVersion is the current on-disk format version. Version "1.0" files
// are accepted unchanged; anything else is discarded on load.
const StoreVersion = "1.1"

// Store is the persisted aggregate of all worktree statuses.
type Store struct {
	Version   string                    `json:"version"`
	UpdatedAt time.Time                 `json:"updated_at"`
	Statuses  map[string]WorktreeStatus `json:"statuses"`
}

// NewStore creates an empty store at the current version.
func NewStore() *Store {
	return &Store{
		Version:   StoreVersion,
		UpdatedAt: time.Now(),
		Statuses:  make(map[string]WorktreeStatus),
	}
}

// Get returns the status for a worktree, or nil if untracked.
func (s *Store) Get(worktreeName string) *WorktreeStatus {
	if st, ok := s.Statuses[worktreeName]; ok {
		return &st
	}
	return nil
}

// Set stores a worktree status, keyed by its name.
func (s *Store) Set(st WorktreeStatus) {
	if s.Statuses == nil {
		s.Statuses = make(map[string]WorktreeStatus)
	}
	s.Statuses[st.WorktreeName] = st
	s.UpdatedAt = time.Now()
}

// Remove deletes a worktree's status. Returns true if an entry existed.
func (s *Store) Remove(worktreeName string) bool {
	if _, ok := s.Statuses[worktreeName]; !ok {
		return false
	}
	delete(s.Statuses, worktreeName)
	s.UpdatedAt = time.Now()
	return true
}

// All returns every tracked status.
func (s *Store) All() []WorktreeStatus {
	out := make([]WorktreeStatus, 0, len(s.Statuses))
	for _, st := range s.Statuses {
		out = append(out, st)
	}
	return out
}

// Summary aggregates activity across tracked worktrees.
type Summary struct {
	Timestamp          time.Time        `json:"timestamp"`
	TotalWorktrees     int              `json:"total_worktrees"`
	WorktreesTracked   int              `json:"worktrees_with_status"`
	Active             int              `json:"active_ai_sessions"`
	Idle               int              `json:"idle_ai_sessions"`
	Blocked            int              `json:"blocked_ai_sessions"`
	Unknown            int              `json:"unknown_status"`
	TotalCommandsSent  int              `json:"total_commands_sent"`
	MostRecentActivity *time.Time       `json:"most_recent_activity,omitempty"`
	Statuses           []WorktreeStatus `json:"statuses"`
}
