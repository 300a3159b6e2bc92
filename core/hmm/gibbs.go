package hmm

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"hmmkit/common"
)

// gibbsSmoothing is the pseudo-count added to every transition and
// emission cell when re-estimating from a sampled path.
const gibbsSmoothing = 0.01

// InitPath draws every state of the path independently from the prior.
func (s *Session) InitPath() error {
	w := append([]float64(nil), s.params.Prior...)
	if err := normalize(w); err != nil {
		return errors.WithMessage(err, "prior")
	}
	cat := distuv.NewCategorical(w, s.src)
	for t := range s.path {
		s.path[t] = int(cat.Rand())
	}
	s.pathValid = true
	return nil
}

// GibbsSweep resamples every site of the path in order, each conditioned on
// its neighbours and its observation with the parameters held fixed.
func (s *Session) GibbsSweep() error {
	if !s.pathValid {
		if err := s.InitPath(); err != nil {
			return err
		}
	}

	trans, emit := s.params.Trans, s.params.Emit
	w := make([]float64, s.k)
	last := s.n - 1
	for t := 0; t <= last; t++ {
		for y := range w {
			p := emit.At(y, s.obs[t])
			if t > 0 {
				p *= trans.At(s.path[t-1], y)
			}
			if t < last {
				p *= trans.At(y, s.path[t+1])
			}
			w[y] = p
		}
		y, err := s.draw(w)
		if err != nil {
			return errors.WithMessagef(err, "gibbs site t=%d", t)
		}
		s.path[t] = y
	}
	return nil
}

func (s *Session) draw(w []float64) (int, error) {
	if err := normalize(w); err != nil {
		return 0, err
	}
	return int(distuv.NewCategorical(w, s.src).Rand()), nil
}

// GibbsReestimate rebuilds the transition and emission matrices from the
// counts along the current path with additive smoothing, so no entry is
// ever zero. The prior is kept.
func (s *Session) GibbsReestimate() error {
	if !s.pathValid {
		return errors.New("gibbs re-estimation needs a state path")
	}

	k := s.k
	_, m := s.params.Emit.Dims()
	trans := mat.NewDense(k, k, nil)
	emit := mat.NewDense(k, m, nil)
	trans.Apply(func(_, _ int, _ float64) float64 { return gibbsSmoothing }, trans)
	emit.Apply(func(_, _ int, _ float64) float64 { return gibbsSmoothing }, emit)

	for t := 1; t < s.n; t++ {
		from, to := s.path[t-1], s.path[t]
		trans.Set(from, to, trans.At(from, to)+1)
	}
	for t, x := range s.obs {
		y := s.path[t]
		emit.Set(y, x, emit.At(y, x)+1)
	}
	if err := normalizeRows(trans); err != nil {
		return errors.WithMessage(err, "sampled transitions")
	}
	if err := normalizeRows(emit); err != nil {
		return errors.WithMessage(err, "sampled emissions")
	}

	return s.setParams(&Params{
		Trans: trans,
		Emit:  emit,
		Prior: append([]float64(nil), s.params.Prior...),
	})
}

// TrainGibbs alternates opts.MixedTime Gibbs sweeps with a re-estimation
// under the same convergence policy as TrainEM. The path starts from
// independent draws from the prior.
func (s *Session) TrainGibbs(opts TrainOptions) (*Result, error) {
	if opts.MixedTime < 1 {
		return nil, errors.Errorf("mixed time must be positive, got %d", opts.MixedTime)
	}
	if err := s.InitPath(); err != nil {
		return nil, err
	}
	return s.train(common.METHOD_GIBBS, opts, func() error {
		for i := 0; i < opts.MixedTime; i++ {
			if err := s.GibbsSweep(); err != nil {
				return err
			}
		}
		if err := s.GibbsReestimate(); err != nil {
			return err
		}
		return s.Forward()
	})
}
