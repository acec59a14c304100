// Package predictor implements the Reducer's narrow external-scoring
// contract (spec §4.G): a row-major matrix of per-clause features in,
// three per-clause "keep this clause" scores out. The core never depends
// on a specific model format -- any implementation satisfying Predictor is
// acceptable.
package predictor

// Cols is the width of one clause's feature row.
const Cols = 22

// Scores holds, for one clause, the predicted usefulness in each
// reduction tier (spec §4.G step 3): pred_short_use, pred_long_use,
// pred_forever_use.
type Scores struct {
	Short   float64
	Long    float64
	Forever float64
}

// Predictor scores a batch of clauses from their feature rows. data is
// row-major, N*Cols long. Implementations must tolerate NaN entries
// (the "missing value" convention for zero-denominator features, spec §9)
// without propagating NaN into the returned scores.
type Predictor interface {
	Predict(data []float64, n int) []Scores
}
