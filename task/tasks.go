package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/angas/gridfees-go/config"
	"github.com/robfig/cron/v3"
)

const defaultMaintenanceRunAt = "30 2 * * *"

type Tasks struct {
	cron              *cron.Cron
	cnfg              *config.AppConfig
	MaintenanceTask   func()
	DatasetReloadTask func()
}

func NewTasks(db Maintainer, store Reloader, cnfg *config.AppConfig) *Tasks {
	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron:              cron.New(),
		cnfg:              cnfg,
		MaintenanceTask:   NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
		DatasetReloadTask: NewDatasetReloadTask(logger.With(slog.String("task", "dataset_reload")), store),
	}
}

// Run schedules the tasks and starts the cron scheduler. The dataset
// reload is only scheduled when tariff.reload_at is set.
func (t *Tasks) Run() error {
	runAt := t.cnfg.Maintenance.RunAt
	if runAt == "" {
		runAt = defaultMaintenanceRunAt
	}
	if _, err := t.cron.AddFunc(runAt, t.MaintenanceTask); err != nil {
		return fmt.Errorf("schedule maintenance task: %w", err)
	}

	if t.cnfg.Tariff.ReloadAt != "" {
		if _, err := t.cron.AddFunc(t.cnfg.Tariff.ReloadAt, t.DatasetReloadTask); err != nil {
			return fmt.Errorf("schedule dataset reload task: %w", err)
		}
	}

	t.cron.Start()
	return nil
}

// Entries is the number of scheduled jobs.
func (t *Tasks) Entries() int {
	return len(t.cron.Entries())
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
