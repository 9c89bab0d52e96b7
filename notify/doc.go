// Package notify delivers notifications about worktree lifecycle events.
//
// Core types:
//   - Notifier: Interface for sending notifications
//   - Event: Notification event with type, worktree, and metadata
//   - EventType: Type of event (worktree_created, sync_completed, etc.)
//
// Implementations:
//   - SlackNotifier: Sends notifications to Slack webhooks
//   - WebhookNotifier: Sends notifications to generic webhooks
//   - LogNotifier: Logs notifications (for testing/debugging)
//   - MultiNotifier: Combines multiple notifiers
//   - NopNotifier: No-op notifier (for testing)
//
// Example usage:
//
//	notifier := notify.NewSlackNotifier(webhookURL,
//	    notify.WithSlackChannel("#dev-alerts"),
//	    notify.WithSlackUsername("grove-bot"),
//	)
//	err := notifier.Notify(ctx, notify.Event{
//	    Type:     notify.EventWorktreeCreated,
//	    Worktree: "demo-feature-login",
//	    Message:  "worktree created",
//	})
package notify
