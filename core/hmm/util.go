package hmm

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const probTolerance = 1e-6

// normalize scales x to sum to one. A zero, negative or non-finite sum is
// reported as ErrDegenerateLikelihood and x is left untouched.
func normalize(x []float64) error {
	sum := floats.Sum(x)
	if !(sum > 0) || math.IsInf(sum, 0) {
		return errors.Wrapf(ErrDegenerateLikelihood, "normalizer is %v", sum)
	}
	floats.Scale(1/sum, x)
	return nil
}

func normalizeRows(m *mat.Dense) error {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		if err := normalize(m.RawRowView(i)); err != nil {
			return errors.WithMessagef(err, "row %d", i)
		}
	}
	return nil
}

// makeFloatArray makes a collection of r slices
// of length c, packed contiguously.
func makeFloatArray(r, c int) [][]float64 {
	bka := make([]float64, r*c)
	x := make([][]float64, r)
	for j := 0; j < r; j++ {
		x[j] = bka[j*c : (j+1)*c : (j+1)*c]
	}
	return x
}

func makeIntArray(r, c int) [][]int {
	bka := make([]int, r*c)
	x := make([][]int, r)
	for j := 0; j < r; j++ {
		x[j] = bka[j*c : (j+1)*c : (j+1)*c]
	}
	return x
}

func copyTable(x [][]float64) [][]float64 {
	if len(x) == 0 {
		return nil
	}
	out := makeFloatArray(len(x), len(x[0]))
	for i := range x {
		copy(out[i], x[i])
	}
	return out
}

func denseRows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = mat.Row(nil, i, m)
	}
	return rows
}
