package tasks

import (
	"context"
	"fmt"
)

// newDailyReportTask creates the scheduled task that sends yesterday's
// summary to all admins. It runs in the morning, after the reported day has
// fully passed.
func newDailyReportTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "daily_report")

	return func(ctx context.Context) error {
		yesterday := deps.localNow().AddDate(0, 0, -1)

		summary, err := deps.QA.DailySummary(ctx, yesterday)
		if err != nil {
			err = fmt.Errorf("failed to build daily report: %w", err)
			alertAdmins(ctx, deps, log, "daily_report", err)
			return err
		}

		if err := sendToAdmins(ctx, deps, log, summary); err != nil {
			return fmt.Errorf("failed to send daily report: %w", err)
		}
		return nil
	}
}
