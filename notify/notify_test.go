package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEventTypes(t *testing.T) {
	types := []EventType{
		EventWorktreeCreated,
		EventWorktreeDeleted,
		EventSyncCompleted,
		EventCleanupCompleted,
		EventEnvSetupFailed,
	}

	seen := make(map[EventType]bool)
	for _, et := range types {
		if seen[et] {
			t.Errorf("duplicate event type: %s", et)
		}
		seen[et] = true
	}
}

func TestNopNotifier(t *testing.T) {
	n := NopNotifier{}

	err := n.Notify(context.Background(), Event{
		Type:    EventWorktreeCreated,
		Message: "test",
	})
	if err != nil {
		t.Errorf("NopNotifier.Notify() error = %v, want nil", err)
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	n := NewLogNotifier(logger)

	event := Event{
		Type:      EventWorktreeCreated,
		RunID:     "run-123",
		Worktree:  "demo-feature-login",
		Branch:    "feature/login",
		Message:   "worktree created",
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
	}

	if err := n.Notify(context.Background(), event); err != nil {
		t.Errorf("LogNotifier.Notify() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "worktree created") {
		t.Errorf("Log output missing message: %s", output)
	}
	if !strings.Contains(output, "demo-feature-login") {
		t.Errorf("Log output missing worktree: %s", output)
	}
}

func TestLogNotifier_Severity(t *testing.T) {
	tests := []struct {
		severity string
		wantLog  string
	}{
		{SeverityInfo, "level=INFO"},
		{SeverityWarning, "level=WARN"},
		{SeverityError, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))
			n := NewLogNotifier(logger)

			err := n.Notify(context.Background(), Event{
				Type:     EventEnvSetupFailed,
				Message:  "test",
				Severity: tt.severity,
			})
			if err != nil {
				t.Errorf("Notify() error = %v", err)
			}

			if !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("Log output = %q, want to contain %q", buf.String(), tt.wantLog)
			}
		})
	}
}

func TestLogNotifier_NilLogger(t *testing.T) {
	n := NewLogNotifier(nil)
	if n.Logger == nil {
		t.Error("NewLogNotifier should use default logger when nil")
	}
}

func TestWebhookNotifier(t *testing.T) {
	var receivedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s, want application/json", ct)
		}
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, nil)

	event := Event{
		Type:      EventSyncCompleted,
		RunID:     "run-123",
		Worktree:  "demo-feature-login",
		Message:   "synced 3 worktrees",
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
	}

	if err := n.Notify(context.Background(), event); err != nil {
		t.Errorf("WebhookNotifier.Notify() error = %v", err)
	}

	var parsed Event
	if err := json.Unmarshal(receivedBody, &parsed); err != nil {
		t.Fatalf("Failed to parse received body: %v", err)
	}
	if parsed.RunID != "run-123" {
		t.Errorf("Received RunID = %s, want run-123", parsed.RunID)
	}
	if parsed.Type != EventSyncCompleted {
		t.Errorf("Received Type = %s, want %s", parsed.Type, EventSyncCompleted)
	}
}

func TestWebhookNotifier_Headers(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, map[string]string{"Authorization": "Bearer tok"})
	if err := n.Notify(context.Background(), Event{Type: EventWorktreeDeleted, Message: "x"}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok")
	}
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, nil)
	n.Client.RetryMax = 0
	err := n.Notify(context.Background(), Event{Type: EventWorktreeCreated, Message: "x"})
	if err == nil {
		t.Error("Notify() error = nil, want error on 500 response")
	}
}

func TestSlackNotifier(t *testing.T) {
	var receivedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL,
		WithSlackChannel("#grove-alerts"),
		WithSlackUsername("grove-bot"),
	)

	event := Event{
		Type:      EventWorktreeCreated,
		Worktree:  "demo-feature-login",
		Branch:    "feature/login",
		Message:   "worktree created",
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
		Metadata:  map[string]any{"path": "/repos/demo-feature-login"},
	}

	if err := n.Notify(context.Background(), event); err != nil {
		t.Fatalf("SlackNotifier.Notify() error = %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(receivedBody, &payload); err != nil {
		t.Fatalf("Failed to parse slack payload: %v", err)
	}
	if payload["channel"] != "#grove-alerts" {
		t.Errorf("channel = %v, want #grove-alerts", payload["channel"])
	}
	if payload["username"] != "grove-bot" {
		t.Errorf("username = %v, want grove-bot", payload["username"])
	}
	attachments, ok := payload["attachments"].([]any)
	if !ok || len(attachments) != 1 {
		t.Fatalf("attachments = %v, want one attachment", payload["attachments"])
	}
	att := attachments[0].(map[string]any)
	if att["color"] != "good" {
		t.Errorf("color = %v, want good", att["color"])
	}
	if !strings.Contains(att["footer"].(string), "feature/login") {
		t.Errorf("footer = %v, want branch included", att["footer"])
	}
}

func TestSlackNotifier_SeverityColors(t *testing.T) {
	n := NewSlackNotifier("http://example.invalid")

	tests := []struct {
		severity string
		want     string
	}{
		{SeverityInfo, "good"},
		{SeverityWarning, "warning"},
		{SeverityError, "danger"},
		{"", "good"},
	}
	for _, tt := range tests {
		if got := n.colorForSeverity(tt.severity); got != tt.want {
			t.Errorf("colorForSeverity(%q) = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(ctx context.Context, event Event) error { return f.err }

type countingNotifier struct{ count int }

func (c *countingNotifier) Notify(ctx context.Context, event Event) error {
	c.count++
	return nil
}

func TestMultiNotifier_ContinuesAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	counter := &countingNotifier{}

	n := NewMultiNotifier(failingNotifier{err: boom}, counter)
	n.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	err := n.Notify(context.Background(), Event{Type: EventWorktreeCreated, Message: "x"})
	if !errors.Is(err, boom) {
		t.Errorf("Notify() error = %v, want %v", err, boom)
	}
	if counter.count != 1 {
		t.Errorf("second notifier called %d times, want 1", counter.count)
	}
}

func TestFromWebhooks(t *testing.T) {
	if _, ok := FromWebhooks("", "").(*LogNotifier); !ok {
		t.Error("FromWebhooks with no URLs should return a bare LogNotifier")
	}

	multi, ok := FromWebhooks("http://example.invalid/hook", "http://example.invalid/slack").(*MultiNotifier)
	if !ok {
		t.Fatal("FromWebhooks with URLs should return a MultiNotifier")
	}
	if len(multi.Notifiers) != 3 {
		t.Errorf("notifier count = %d, want 3 (log, webhook, slack)", len(multi.Notifiers))
	}
}

func TestNotifierContext(t *testing.T) {
	ctx := context.Background()
	if NotifierFromContext(ctx) != nil {
		t.Error("NotifierFromContext on empty context should return nil")
	}

	n := NopNotifier{}
	ctx = WithNotifier(ctx, n)
	if NotifierFromContext(ctx) == nil {
		t.Error("NotifierFromContext should return the stored notifier")
	}
}
