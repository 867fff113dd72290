package www

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/gridfees-go/calc"
	"github.com/angas/gridfees-go/tariff"
)

// DatasetSource is implemented by *tariff.Store.
type DatasetSource interface {
	Dataset() *tariff.Dataset
}

// OnCalculated is called after every successful calculation.
type OnCalculated func(req calc.Request, res calc.Result)

func NewCalculateHandler(logger *slog.Logger, src DatasetSource, onCalculated OnCalculated) http.HandlerFunc {
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
		observe("calculate", start, err)
		if err != nil {
			writeCalcError(logger, w, err)
			return
		}

		if onCalculated != nil {
			onCalculated(req, res)
		}
		writeJSON(logger, w, http.StatusOK, res)
	}
}

type insightsResponse struct {
	Result   calc.Result    `json:"result"`
	Insights []calc.Insight `json:"insights"`
}

func NewInsightsHandler(logger *slog.Logger, src DatasetSource) http.HandlerFunc {
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
		observe("insights", start, err)
		if err != nil {
			writeCalcError(logger, w, err)
			return
		}

		insights := calc.Insights(req, res)
		if insights == nil {
			insights = []calc.Insight{}
		}
		writeJSON(logger, w, http.StatusOK, insightsResponse{Result: res, Insights: insights})
	}
}

func NewOptionsHandler(logger *slog.Logger, src DatasetSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}

		ds := src.Dataset()
		if ds == nil {
			writeCalcError(logger, w, &calc.Error{Kind: calc.KindMalformedDataset, Message: "Malformed tariff dataset", Details: "no dataset loaded"})
			return
		}

		w.Header().Set("Cache-Control", "no-cache")
		writeJSON(logger, w, http.StatusOK, ds.Options())
	}
}
