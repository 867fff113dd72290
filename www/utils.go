package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/angas/gridfees-go/calc"
	"github.com/angas/gridfees-go/metrics"
)

const maxBodyBytes = 1 << 20

func intOrDefault(u *url.URL, key string, defaultValue int) int {
	if v := u.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("unable to encode response", slog.Any("error", err))
	}
}

// statusFor maps a calculation error to its HTTP status. A missing tariff
// is a normal answer for the front end, so it keeps 200.
func statusFor(kind calc.Kind) int {
	switch kind {
	case calc.KindInvalidInput:
		return http.StatusBadRequest
	case calc.KindMalformedDataset:
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

func writeCalcError(logger *slog.Logger, w http.ResponseWriter, err error) {
	ce := calc.AsError(err)
	if ce.Kind == calc.KindMalformedDataset {
		logger.Error("calculation failed", slog.Any("error", err))
	} else {
		logger.Debug("calculation rejected", slog.String("kind", string(ce.Kind)), slog.String("details", ce.Details))
	}
	writeJSON(logger, w, statusFor(ce.Kind), calc.ErrorBody(ce))
}

// decodeBody decodes a JSON body into v, writing an InvalidInput answer
// on failure.
func decodeBody(logger *slog.Logger, w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeCalcError(logger, w, &calc.Error{Kind: calc.KindInvalidInput, Message: "Invalid input", Details: err.Error(), Err: err})
		return false
	}
	return true
}

func decodeRequest(logger *slog.Logger, w http.ResponseWriter, r *http.Request) (calc.Request, bool) {
	req, err := calc.DecodeRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeCalcError(logger, w, err)
		return calc.Request{}, false
	}
	return req, true
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func observe(endpoint string, start time.Time, err error) {
	outcome := metrics.ResultSuccess
	if err != nil {
		outcome = string(calc.AsError(err).Kind)
	}
	metrics.ObserveCalculation(endpoint, outcome, time.Since(start))
}
