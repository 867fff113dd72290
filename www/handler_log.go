package www

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/angas/gridfees-go/database"
	"github.com/angas/gridfees-go/logging"
)

// LogSource is implemented by *database.Database.
type LogSource interface {
	GetLogEntries(ctx context.Context, minLvl slog.Level, page, pageSize int) ([]database.LogEntryRow, error)
}

type logResponse struct {
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
	Entries  []database.LogEntryRow `json:"entries"`
}

func NewLogHandler(logger *slog.Logger, db LogSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}

		page := max(intOrDefault(r.URL, "page", 1), 1)
		pageSize := intOrDefault(r.URL, "pageSize", 25)
		if pageSize < 1 || pageSize > 500 {
			pageSize = 25
		}

		var minLevel slog.Level = slog.LevelDebug
		if lvl := r.URL.Query().Get("level"); lvl != "" {
			minLevel = logging.LevelFromString(&lvl)
		}

		e, err := db.GetLogEntries(r.Context(), minLevel, page, pageSize)
		if err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(logger, w, http.StatusOK, logResponse{Page: page, PageSize: pageSize, Entries: e})
	}
}
