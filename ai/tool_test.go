package ai

import (
	"strings"
	"testing"

	"github.com/randalmurphal/llmkit/model"
)

func TestParseTool(t *testing.T) {
	tests := []struct {
		input   string
		want    Tool
		wantErr bool
	}{
		{"claude", ToolClaude, false},
		{"OpenCode", ToolOpenCode, false},
		{" droid ", ToolDroid, false},
		{"", DefaultTool, false},
		{"copilot", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTool(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTool(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTool(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTool(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTierForTask(t *testing.T) {
	if TierForTask(TaskArchitecture) != model.TierThinking {
		t.Error("architecture should use the thinking tier")
	}
	if TierForTask(TaskImplement) != model.TierDefault {
		t.Error("implementation should use the default tier")
	}
	if TierForTask(TaskSummarize) != model.TierFast {
		t.Error("summarization should use the fast tier")
	}
	if TierForTask("unheard-of") != model.TierDefault {
		t.Error("unknown kinds should fall back to the default tier")
	}
}

func TestSelectModel(t *testing.T) {
	if SelectModel(TaskInvestigate) != model.ModelOpus {
		t.Error("investigation should select opus")
	}
	if SelectModel(TaskFix) != model.ModelSonnet {
		t.Error("fixes should select sonnet")
	}
	if SelectModel(TaskSearch) != model.ModelHaiku {
		t.Error("search should select haiku")
	}
}

func TestLaunchCommand(t *testing.T) {
	cmd := LaunchCommand(ToolClaude, TaskImplement)
	if !strings.HasPrefix(cmd, "claude --model ") {
		t.Errorf("claude launch = %q, want model flag", cmd)
	}

	if cmd := LaunchCommand(ToolOpenCode, TaskImplement); cmd != "opencode" {
		t.Errorf("opencode launch = %q", cmd)
	}
	if cmd := LaunchCommand(ToolDroid, TaskArchitecture); cmd != "droid" {
		t.Errorf("droid launch = %q", cmd)
	}
}
