package predictor

import "math"

// Heuristic is a hand-written fallback predictor (spec §4.G, "a simple
// hand-written heuristic" is an explicitly acceptable implementation) that
// uses only three columns of the feature row: activity rank (col 0), uip1
// rank (col 1), and props rank (col 2), treating higher rank (closer to 1)
// as more useful in every tier. It requires no training data and no
// external model files, making it the default when no learned model is
// configured.
type Heuristic struct{}

func (Heuristic) Predict(data []float64, n int) []Scores {
	out := make([]Scores, n)
	for i := 0; i < n; i++ {
		row := data[i*Cols : (i+1)*Cols]
		act := rankUse(row[0])
		uip := rankUse(row[1])
		prop := rankUse(row[2])

		score := (act + uip + prop) / 3
		out[i] = Scores{Short: score, Long: score * 0.8, Forever: score * 0.5}
	}
	return out
}

// rankUse maps a 1-based rank to 1/rank, so rank 1 scores 1 and worse
// ranks score less; a NaN or non-positive entry scores 0.
func rankUse(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return 1 / v
}
