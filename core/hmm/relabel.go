package hmm

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Relabel renumbers the states in ascending order of their probability of
// emitting symbol 1. The permutation is applied to the emission rows, the
// transition rows and columns, the prior and the current path, so the
// likelihood of the sequence is unchanged. It returns perm where new state
// i is old state perm[i].
func (s *Session) Relabel() ([]int, error) {
	k := s.k
	emit := s.params.Emit
	if _, m := emit.Dims(); m < BinarySymbols {
		return nil, errors.Wrapf(ErrDimensionMismatch, "relabeling needs symbol 1, alphabet has %d symbols", m)
	}

	perm := make([]int, k)
	floats.ArgsortStable(mat.Col(nil, 1, emit), perm)
	inv := make([]int, k)
	for i, old := range perm {
		inv[old] = i
	}

	_, m := emit.Dims()
	nextTrans := mat.NewDense(k, k, nil)
	nextEmit := mat.NewDense(k, m, nil)
	prior := make([]float64, k)
	for i, oi := range perm {
		for j, oj := range perm {
			nextTrans.Set(i, j, s.params.Trans.At(oi, oj))
		}
		nextEmit.SetRow(i, emit.RawRowView(oi))
		prior[i] = s.params.Prior[oi]
	}

	if err := s.setParams(&Params{Trans: nextTrans, Emit: nextEmit, Prior: prior}); err != nil {
		return nil, err
	}
	if s.pathValid {
		for t, y := range s.path {
			s.path[t] = inv[y]
		}
	}
	return perm, nil
}
