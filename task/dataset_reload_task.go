package task

import (
	"log/slog"
)

// Reloader is implemented by *tariff.Store.
type Reloader interface {
	Reload() error
}

// NewDatasetReloadTask reloads the tariff dataset on a schedule. Reload
// failures keep the previous dataset.
func NewDatasetReloadTask(logger *slog.Logger, store Reloader) func() {
	return func() {
		logger.Debug("running dataset reload task...")
		if err := store.Reload(); err != nil {
			logger.Warn("scheduled dataset reload failed, keeping previous dataset", slog.Any("error", err))
			return
		}
		logger.Info("dataset reload task done")
	}
}
