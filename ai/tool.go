package ai

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/llmkit/model"
)

// Tool identifies which coding assistant runs in a worktree session.
type Tool string

const (
	ToolClaude   Tool = "claude"
	ToolOpenCode Tool = "opencode"
	ToolDroid    Tool = "droid"
)

// DefaultTool is used when no tool is configured.
const DefaultTool = ToolClaude

// Tools lists every supported assistant.
func Tools() []Tool {
	return []Tool{ToolClaude, ToolOpenCode, ToolDroid}
}

// ParseTool validates a tool name from config or flags.
func ParseTool(s string) (Tool, error) {
	switch t := Tool(strings.ToLower(strings.TrimSpace(s))); t {
	case ToolClaude, ToolOpenCode, ToolDroid:
		return t, nil
	case "":
		return DefaultTool, nil
	default:
		return "", fmt.Errorf("unknown ai tool %q (supported: claude, opencode, droid)", s)
	}
}

// Binary returns the executable name for the tool.
func (t Tool) Binary() string {
	return string(t)
}

// TaskKind classifies what the assistant will be asked to do, which
// determines the model tier.
type TaskKind string

const (
	// Reasoning-heavy work.
	TaskArchitecture TaskKind = "architecture"
	TaskInvestigate  TaskKind = "investigate"

	// Standard development work.
	TaskImplement TaskKind = "implement"
	TaskReview    TaskKind = "review"
	TaskFix       TaskKind = "fix"

	// Fast, mechanical work.
	TaskSearch    TaskKind = "search"
	TaskSummarize TaskKind = "summarize"
)

// TierForTask returns the model tier suited to a task kind.
func TierForTask(kind TaskKind) model.Tier {
	switch kind {
	case TaskArchitecture, TaskInvestigate:
		return model.TierThinking
	case TaskSearch, TaskSummarize:
		return model.TierFast
	default:
		return model.TierDefault
	}
}

// SelectModel picks a model for a task kind.
func SelectModel(kind TaskKind) model.ModelName {
	switch TierForTask(kind) {
	case model.TierThinking:
		return model.ModelOpus
	case model.TierFast:
		return model.ModelHaiku
	default:
		return model.ModelSonnet
	}
}

// LaunchCommand builds the command line typed into a fresh session's first
// pane. Only claude takes a model flag; the other tools pick their own.
func LaunchCommand(tool Tool, kind TaskKind) string {
	if tool == ToolClaude {
		return fmt.Sprintf("%s --model %s", tool.Binary(), SelectModel(kind))
	}
	return tool.Binary()
}
