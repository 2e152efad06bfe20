package tasks

import (
	"context"
	"fmt"
)

// newWeeklyReportTask creates the scheduled task that sends a rollup of the
// seven days ending yesterday to all admins. Scheduled on Monday mornings it
// covers exactly the completed week.
func newWeeklyReportTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "weekly_report")

	return func(ctx context.Context) error {
		yesterday := deps.localNow().AddDate(0, 0, -1)

		summary, err := deps.QA.WeeklySummary(ctx, yesterday)
		if err != nil {
			err = fmt.Errorf("failed to build weekly report: %w", err)
			alertAdmins(ctx, deps, log, "weekly_report", err)
			return err
		}

		if err := sendToAdmins(ctx, deps, log, summary); err != nil {
			return fmt.Errorf("failed to send weekly report: %w", err)
		}
		return nil
	}
}
