// Package anomaly scores expenses against historical spending patterns
// using an unsupervised isolation-forest model.
//
// Sign convention, load-bearing for downstream interpretation: a score ≥ 0
// means the expense matches the historical pattern, a score < 0 means it
// deviates from it. The neutral score 0 is returned whenever the model has
// too little data to train.
package anomaly

import (
	"sync"

	"github.com/docmind/expense-audit/internal/model"
)

const (
	// minTrainingRecords must be exceeded before the model trains.
	minTrainingRecords = 10

	numTrees   = 100
	sampleSize = 256
	seed       = 42
)

// Detector maintains one trained isolation forest per process. Training is
// lazy: the first Score call with enough history fits the model, and the
// fit is reused for every later call. The model is never invalidated as new
// history arrives; callers that want a fresh fit must ask for one with
// Retrain.
type Detector struct {
	forest *forest
	mu     sync.RWMutex
}

// NewDetector creates an untrained detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Trained reports whether the model has been fit.
func (d *Detector) Trained() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.forest != nil
}

// Train fits the model on the given records. It is a no-op when the model
// is already trained or when the record count does not exceed the minimum
// threshold.
func (d *Detector) Train(records []model.HistoricalRecord) {
	if len(records) <= minTrainingRecords {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.forest != nil {
		return
	}
	d.forest = fit(records)
}

// Retrain discards the current model and fits a new one on the given
// records. The minimum-record threshold still applies; below it the
// detector is left untrained.
func (d *Detector) Retrain(records []model.HistoricalRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forest = nil
	if len(records) > minTrainingRecords {
		d.forest = fit(records)
	}
}

// Score returns the decision score for the expense described by obs. If the
// model is untrained it first attempts on-demand training from history; if
// there is still no model, the neutral score 0 is returned.
func (d *Detector) Score(obs model.HistoricalRecord, history []model.HistoricalRecord) float64 {
	if !d.Trained() {
		d.Train(history)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.forest == nil {
		return 0
	}
	return d.forest.score(encode(obs.Vendor, obs.Category, obs.Amount))
}

func fit(records []model.HistoricalRecord) *forest {
	data := make([][featureDim]float64, len(records))
	for i, r := range records {
		data[i] = encode(r.Vendor, r.Category, r.Amount)
	}
	return buildForest(data, numTrees, sampleSize, seed)
}
