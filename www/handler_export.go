package www

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/angas/gridfees-go/calc"
	"github.com/angas/gridfees-go/export"
	"github.com/angas/gridfees-go/metrics"
)

func NewExportHandler(logger *slog.Logger, src DatasetSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		format, err := export.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			metrics.IncExport(r.URL.Query().Get("format"), metrics.ResultError)
			writeCalcError(logger, w, &calc.Error{Kind: calc.KindInvalidInput, Message: "Invalid input", Details: err.Error(), Err: err})
			return
		}

		req, ok := decodeRequest(logger, w, r)
		if !ok {
			return
		}

		start := time.Now()
		res, err := calc.Calculate(req, src.Dataset())
		observe("export", start, err)
		if err != nil {
			metrics.IncExport(string(format), metrics.ResultError)
			writeCalcError(logger, w, err)
			return
		}

		data, err := export.Render(format, req, res)
		if err != nil {
			metrics.IncExport(string(format), metrics.ResultError)
			logger.Error("handling export request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		metrics.IncExport(string(format), metrics.ResultSuccess)

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.FileName(req.Operator, time.Now().Unix())))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		if _, err := w.Write(data); err != nil {
			logger.Warn("writing export failed", slog.Any("error", err))
		}
	}
}

type reportData struct {
	Request   calc.Request
	Result    calc.Result
	Items     []calc.Item
	Insights  []calc.Insight
	Generated time.Time
}

func NewReportHandler(logger *slog.Logger, src DatasetSource, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		req, ok := decodeRequest(logger, w, r)
		if !ok {
			return
		}

		start := time.Now()
		res, err := calc.Calculate(req, src.Dataset())
		observe("report", start, err)
		if err != nil {
			writeCalcError(logger, w, err)
			return
		}

		buf, err := tm.Execute("report.html", reportData{
			Request:   req,
			Result:    res,
			Items:     res.Items(),
			Insights:  calc.Insights(req, res),
			Generated: time.Now(),
		})
		if err != nil {
			logger.Error("handling report request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := buf.WriteTo(w); err != nil {
			logger.Warn("writing report failed", slog.Any("error", err))
		}
	}
}
