package hmm

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Viterbi decodes the most probable state path and stores it as the
// session path. δ is renormalised at every step, which leaves the argmax
// path unchanged. Ties follow the session's TieBreak policy, both for the
// backpointers and for the final state.
func (s *Session) Viterbi() ([]int, error) {
	k, n := s.k, s.n
	trans, emit := s.params.Trans, s.params.Emit

	delta := makeFloatArray(n, k)
	phi := makeIntArray(n, k)

	col := make([]float64, k)
	mat.Col(col, s.obs[0], emit)
	floats.MulTo(delta[0], s.params.Prior, col)
	if err := normalize(delta[0]); err != nil {
		return nil, errors.WithMessage(err, "viterbi t=0")
	}

	for t := 1; t < n; t++ {
		x := s.obs[t]
		for i := 0; i < k; i++ {
			e := emit.At(i, x)
			best, arg := -1.0, 0
			for y := 0; y < k; y++ {
				if v := delta[t-1][y] * trans.At(y, i) * e; s.tieBreak.prefer(v, best) {
					best, arg = v, y
				}
			}
			delta[t][i] = best
			phi[t][i] = arg
		}
		if err := normalize(delta[t]); err != nil {
			return nil, errors.WithMessagef(err, "viterbi t=%d", t)
		}
	}

	path := make([]int, n)
	path[n-1] = s.tieBreak.argmax(delta[n-1])
	for t := n - 1; t > 0; t-- {
		path[t-1] = phi[t][path[t]]
	}

	copy(s.path, path)
	s.pathValid = true
	return path, nil
}
