package hmm

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"hmmkit/common"
)

// EMStep runs one Baum-Welch iteration: expected transition and emission
// statistics under the current parameters, then a new parameter value, then
// a fresh forward pass for the next likelihood check.
// Emission counts include the last time step, weighted by its α⊙β
// posterior, so the step never lowers the likelihood.
func (s *Session) EMStep() error {
	if !s.forwardValid {
		if err := s.Forward(); err != nil {
			return err
		}
	}

	// e-step
	if err := s.Backward(); err != nil {
		return err
	}

	k, n := s.k, s.n
	_, m := s.params.Emit.Dims()
	trans := s.params.Trans

	xi := mat.NewDense(k, k, nil)
	zeta := mat.NewDense(k, k, nil)
	col := make([]float64, k)
	for t := 0; t < n-1; t++ {
		mat.Col(col, s.obs[t+1], s.params.Emit)
		at, bt := s.alpha[t], s.beta[t+1]
		zeta.Apply(func(i, j int, v float64) float64 {
			return at[i] * v * col[j] * bt[j]
		}, trans)

		total := mat.Sum(zeta)
		if !(total > 0) {
			return errors.Wrapf(ErrDegenerateLikelihood, "expected transitions at t=%d sum to %v", t, total)
		}
		zeta.Scale(1/total, zeta)
		xi.Add(xi, zeta)
		for i := 0; i < k; i++ {
			s.gamma[t][i] = floats.Sum(zeta.RawRowView(i))
		}
	}
	floats.MulTo(s.gamma[n-1], s.alpha[n-1], s.beta[n-1])
	if err := normalize(s.gamma[n-1]); err != nil {
		return errors.WithMessagef(err, "posterior t=%d", n-1)
	}

	// m-step
	visits := make([]float64, k)
	for t := 0; t < n-1; t++ {
		floats.Add(visits, s.gamma[t])
	}
	nextTrans := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		if !(visits[i] > 0) {
			return errors.Wrapf(ErrDegenerateLikelihood, "state %d has no expected transitions", i)
		}
		floats.ScaleTo(nextTrans.RawRowView(i), 1/visits[i], xi.RawRowView(i))
	}

	// expected emission counts per state and symbol
	counts := mat.NewDense(k, m, nil)
	for t, x := range s.obs {
		for i := 0; i < k; i++ {
			counts.Set(i, x, counts.At(i, x)+s.gamma[t][i])
		}
	}
	if err := normalizeRows(counts); err != nil {
		return errors.WithMessage(err, "expected emissions")
	}

	next := &Params{
		Trans: nextTrans,
		Emit:  counts,
		Prior: append([]float64(nil), s.gamma[0]...),
	}
	if err := s.setParams(next); err != nil {
		return err
	}
	return s.Forward()
}

// TrainEM runs Baum-Welch until the log-likelihood changes by no more than
// opts.Epsilon or opts.MaxIterations is reached.
func (s *Session) TrainEM(opts TrainOptions) (*Result, error) {
	return s.train(common.METHOD_EM, opts, s.EMStep)
}
