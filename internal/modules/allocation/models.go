package allocation

import (
	"time"

	"github.com/jleechris06/optimizeme/internal/modules/marketdata"
)

// Result is the outcome of one allocation run. Order is the ascending
// ranking produced by the view builder; Weights and PosteriorReturns
// are aligned to it, so callers re-map to their own ticker order.
type Result struct {
	Timestamp        time.Time                              `json:"timestamp"`
	Order            []string                               `json:"order"`
	Weights          []float64                              `json:"weights"`
	PosteriorReturns []float64                              `json:"posterior_returns"`
	ScalarSignals    map[string]float64                     `json:"scalar_signals"`
	Diagnostics      map[string]marketdata.AssetDiagnostics `json:"diagnostics,omitempty"`
}

// RunRequest is the payload of POST /api/allocation/run.
type RunRequest struct {
	Symbols []string `json:"symbols"`
}
