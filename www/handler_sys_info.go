package www

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/angas/gridfees-go/database"
)

// ReloadHistory is implemented by *database.Database.
type ReloadHistory interface {
	GetDatasetReloads(ctx context.Context, limit int) ([]database.DatasetReloadRow, error)
}

type SysInfo struct {
	Version   string
	StartTime time.Time
}

type datasetInfo struct {
	Path           string `json:"path"`
	Fees           int    `json:"fees"`
	BessExemptions int    `json:"bess_exemptions"`
	Shadowed       int    `json:"shadowed"`
}

type sysInfoResponse struct {
	Version   string                      `json:"version"`
	GoVersion string                      `json:"go_version"`
	StartTime time.Time                   `json:"start_time"`
	Uptime    string                      `json:"uptime"`
	Dataset   *datasetInfo                `json:"dataset"`
	Reloads   []database.DatasetReloadRow `json:"reloads"`
}

// NewSysInfoHandler reports the running version, the loaded dataset and
// the most recent reload attempts. history may be nil.
func NewSysInfoHandler(logger *slog.Logger, sysInfo SysInfo, src DatasetSource, path string, history ReloadHistory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}

		resp := sysInfoResponse{
			Version:   sysInfo.Version,
			GoVersion: runtime.Version(),
			StartTime: sysInfo.StartTime,
			Uptime:    time.Since(sysInfo.StartTime).Round(time.Second).String(),
			Reloads:   []database.DatasetReloadRow{},
		}

		if ds := src.Dataset(); ds != nil {
			resp.Dataset = &datasetInfo{
				Path:           path,
				Fees:           len(ds.Fees),
				BessExemptions: len(ds.BessExemptions),
				Shadowed:       len(ds.Duplicates()),
			}
		}

		if history != nil {
			reloads, err := history.GetDatasetReloads(r.Context(), intOrDefault(r.URL, "reloads", 10))
			if err != nil {
				logger.Error("handling sys info request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			resp.Reloads = reloads
		}

		writeJSON(logger, w, http.StatusOK, resp)
	}
}
