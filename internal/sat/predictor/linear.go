package predictor

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Linear is a gonum-backed linear scorer: each tier's score is a dot
// product of the feature row against a weight vector plus a bias. NaN
// features (spec §9's "missing value" convention) contribute zero rather
// than poisoning the dot product, per the Open Question decision recorded
// in DESIGN.md.
type Linear struct {
	shortW, longW, foreverW *mat.VecDense
	shortB, longB, foreverB float64
}

// NewLinear builds a Linear predictor from three Cols-length weight
// vectors and their biases.
func NewLinear(shortW, longW, foreverW []float64, shortB, longB, foreverB float64) *Linear {
	return &Linear{
		shortW:   mat.NewVecDense(Cols, append([]float64(nil), shortW...)),
		longW:    mat.NewVecDense(Cols, append([]float64(nil), longW...)),
		foreverW: mat.NewVecDense(Cols, append([]float64(nil), foreverW...)),
		shortB:   shortB,
		longB:    longB,
		foreverB: foreverB,
	}
}

func (l *Linear) Predict(data []float64, n int) []Scores {
	out := make([]Scores, n)
	row := make([]float64, Cols)
	for i := 0; i < n; i++ {
		copy(row, data[i*Cols:(i+1)*Cols])
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = 0
			}
		}
		x := mat.NewVecDense(Cols, row)
		out[i] = Scores{
			Short:   mat.Dot(x, l.shortW) + l.shortB,
			Long:    mat.Dot(x, l.longW) + l.longB,
			Forever: mat.Dot(x, l.foreverW) + l.foreverB,
		}
	}
	return out
}
