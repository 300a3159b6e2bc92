package hmm

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"hmmkit/common"
	"hmmkit/core/progress"
)

type TrainOptions struct {
	Epsilon       float64 // stop once |Δ log-likelihood| <= Epsilon
	MaxIterations int
	MixedTime     int // Gibbs sweeps per iteration, ignored by EM
	Progress      progress.Reporter
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Epsilon:       1e-6,
		MaxIterations: 100,
		MixedTime:     5,
	}
}

// Result summarises one training run. Converged is false when the loop
// stopped at the iteration cap; that is not a failure, see Warning.
type Result struct {
	Session       string
	Method        common.TrainMethod
	Iterations    int
	LogLikelihood float64
	Trace         []float64 // log-likelihood after each iteration
	Converged     bool
	AvgIteration  time.Duration
	Elapsed       time.Duration
}

// Warning returns an error wrapping ErrNotConverged when the iteration cap
// was hit before the epsilon criterion, nil otherwise.
func (r *Result) Warning() error {
	if r.Converged {
		return nil
	}
	return errors.Wrapf(ErrNotConverged, "%s stopped after %d iterations", r.Method, r.Iterations)
}

func (s *Session) train(method common.TrainMethod, opts TrainOptions, step func() error) (*Result, error) {
	if opts.Epsilon < 0 || math.IsNaN(opts.Epsilon) {
		return nil, errors.Errorf("epsilon must be non-negative, got %v", opts.Epsilon)
	}
	if opts.MaxIterations < 0 {
		return nil, errors.Errorf("max iterations must be non-negative, got %d", opts.MaxIterations)
	}

	start := time.Now()
	if err := s.Forward(); err != nil {
		return nil, err
	}
	ll, err := s.LogLikelihood()
	if err != nil {
		return nil, err
	}

	res := &Result{Session: s.id, Method: method}
	last := math.Inf(-1)
	for math.Abs(ll-last) > opts.Epsilon && res.Iterations < opts.MaxIterations {
		iterStart := time.Now()
		last = ll
		res.Iterations++
		if err := step(); err != nil {
			return res, errors.WithMessagef(err, "%s iteration %d", method, res.Iterations)
		}
		if ll, err = s.LogLikelihood(); err != nil {
			return res, err
		}
		res.Trace = append(res.Trace, ll)

		s.log.Debugf("[%s] %s iter %d: logP = %f", s.id, method, res.Iterations, ll)
		if opts.Progress != nil {
			opts.Progress.Publish(&progress.Event{
				Session:       s.id,
				Method:        method,
				Iteration:     res.Iterations,
				LogLikelihood: ll,
				Delta:         ll - last,
				Elapsed:       time.Since(iterStart),
			})
		}
	}

	res.Elapsed = time.Since(start)
	res.LogLikelihood = ll
	res.Converged = math.Abs(ll-last) <= opts.Epsilon
	if res.Iterations > 0 {
		res.AvgIteration = res.Elapsed / time.Duration(res.Iterations)
	}
	if !res.Converged {
		s.log.Warnf("[%s] %s hit the iteration cap %d, last delta %g > epsilon %g",
			s.id, method, opts.MaxIterations, ll-last, opts.Epsilon)
	}
	return res, nil
}
