package cron

import (
	"context"
	"log/slog"
	"time"
)

// ConversationPruner is the subset of the Slack demultiplexer needed by the
// cleanup job. Defined here to avoid a dependency on the slack package.
type ConversationPruner interface {
	Prune(maxIdle time.Duration) int
}

// ConversationCleanupJob closes conversations that have been idle longer
// than MaxIdle so abandoned threads do not accumulate forever.
type ConversationCleanupJob struct {
	Pruner       ConversationPruner
	MaxIdle      time.Duration
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/5 * * * *"
}

// Compile-time interface check.
var _ Job = (*ConversationCleanupJob)(nil)

// Name implements Job.
func (j *ConversationCleanupJob) Name() string {
	return "conversation_cleanup"
}

// Schedule implements Job.
func (j *ConversationCleanupJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/5 * * * *"
}

// Run prunes conversations idle longer than MaxIdle.
func (j *ConversationCleanupJob) Run(_ context.Context) error {
	pruned := j.Pruner.Prune(j.MaxIdle)
	if pruned > 0 {
		j.Logger.Info("cron: pruned idle conversations", "count", pruned)
	}
	return nil
}
