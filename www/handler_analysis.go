package www

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/gridfees-go/calc"
)

type compareRequest struct {
	Scenarios []calc.Scenario `json:"scenarios"`
}

func NewCompareHandler(logger *slog.Logger, src DatasetSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		var body compareRequest
		if !decodeBody(logger, w, r, &body) {
			return
		}
		if len(body.Scenarios) == 0 {
			writeCalcError(logger, w, &calc.Error{Kind: calc.KindInvalidInput, Message: "Invalid input", Details: "no scenarios to compare"})
			return
		}

		start := time.Now()
		cmp := calc.Compare(body.Scenarios, src.Dataset())
		observe("compare", start, nil)

		writeJSON(logger, w, http.StatusOK, cmp)
	}
}

type storageProfileRequest struct {
	calc.StorageParams
	Request *calc.Request `json:"request"`
}

type storageProfileResponse struct {
	Profile calc.StorageProfile `json:"profile"`
	Request calc.Request        `json:"request"`
}

func NewStorageProfileHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		var body storageProfileRequest
		if !decodeBody(logger, w, r, &body) {
			return
		}

		profile, err := calc.NewStorageProfile(body.StorageParams)
		if err != nil {
			writeCalcError(logger, w, err)
			return
		}

		var req calc.Request
		if body.Request != nil {
			req = body.Request.Normalized()
		}
		writeJSON(logger, w, http.StatusOK, storageProfileResponse{Profile: profile, Request: profile.Apply(req)})
	}
}

type sensitivityRequest struct {
	Request     calc.Request `json:"request"`
	Percentages []float64    `json:"percentages"`
}

type sensitivityResponse struct {
	Points []calc.SensitivityPoint `json:"points"`
}

func NewSensitivityHandler(logger *slog.Logger, src DatasetSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		var body sensitivityRequest
		if !decodeBody(logger, w, r, &body) {
			return
		}

		start := time.Now()
		points, err := calc.PeakSensitivity(body.Request.Normalized(), src.Dataset(), body.Percentages)
		observe("sensitivity", start, err)
		if err != nil {
			writeCalcError(logger, w, err)
			return
		}

		writeJSON(logger, w, http.StatusOK, sensitivityResponse{Points: points})
	}
}
