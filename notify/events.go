package notify

import "time"

const (
	EventDatasetReloaded = "dataset_reloaded"
	EventCalculation     = "calculation"
)

// DatasetEvent is sent after every reload attempt of the tariff dataset.
type DatasetEvent struct {
	Event    string    `json:"event"`
	Path     string    `json:"path"`
	Rows     int       `json:"rows"`
	Shadowed int       `json:"shadowed"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

func NewDatasetEvent(path string, rows, shadowed int, err error) DatasetEvent {
	e := DatasetEvent{
		Event:    EventDatasetReloaded,
		Path:     path,
		Rows:     rows,
		Shadowed: shadowed,
		At:       time.Now(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// CalculationEvent summarizes a successful calculation. Total is in k€/year.
type CalculationEvent struct {
	Event     string    `json:"event"`
	Operator  string    `json:"dso_tso"`
	Voltage   string    `json:"voltage"`
	IsStorage bool      `json:"is_bess"`
	Total     float64   `json:"total"`
	At        time.Time `json:"at"`
}

func NewCalculationEvent(operator, voltage string, isStorage bool, total float64) CalculationEvent {
	return CalculationEvent{
		Event:     EventCalculation,
		Operator:  operator,
		Voltage:   voltage,
		IsStorage: isStorage,
		Total:     total,
		At:        time.Now(),
	}
}
