package calc

import (
	"fmt"

	"github.com/angas/gridfees-go/tariff"
)

var DefaultSensitivitySteps = []float64{-50, -25, 0, 25, 50}

type SensitivityPoint struct {
	Label string  `json:"label"`
	Pct   float64 `json:"pct"`
	Peak  float64 `json:"peak"`
	Total float64 `json:"total"`
}

// PeakSensitivity recalculates req with the monthly peak scaled by each
// percentage. Empty pcts uses DefaultSensitivitySteps.
func PeakSensitivity(req Request, ds *tariff.Dataset, pcts []float64) ([]SensitivityPoint, error) {
	if len(pcts) == 0 {
		pcts = DefaultSensitivitySteps
	}

	points := make([]SensitivityPoint, 0, len(pcts))
	for _, pct := range pcts {
		if pct < -100 {
			return nil, invalidInput(fmt.Sprintf("percentage %g would make the peak negative", pct), nil)
		}

		r := req
		r.PeakMonthly = req.PeakMonthly + req.PeakMonthly*pct/100

		res, err := Calculate(r, ds)
		if err != nil {
			return nil, err
		}
		points = append(points, SensitivityPoint{
			Label: sensitivityLabel(pct),
			Pct:   pct,
			Peak:  r.PeakMonthly,
			Total: res.Total,
		})
	}
	return points, nil
}

func sensitivityLabel(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%g%%", pct)
	}
	return fmt.Sprintf("%g%%", pct)
}
