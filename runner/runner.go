package runner

import (
	"fmt"

	"github.com/pkg/errors"

	"hmmkit/common"
	"hmmkit/core/config"
	"hmmkit/core/hmm"
	"hmmkit/core/plot"
	"hmmkit/core/progress"
)

// Runner wires one configuration to the HMM engine. Every job gets a fresh
// session so Train, Decode and Simulate do not see each other's state.
type Runner struct {
	conf     *config.LocalConfig
	params   *hmm.Params
	obs      hmm.Sequence
	tieBreak hmm.TieBreak
	bus      *progress.Bus
	recorder *progress.Recorder
	log      common.Logger
}

func (r *Runner) Init(c *config.LocalConfig) error {
	r.conf = c
	common.SetLogConfig(c.LogConfig())
	if r.log == nil {
		r.log = common.GetLogger(common.MODULE_RUNNER)
	}

	var err error
	if r.params, err = c.ModelParams(); err != nil {
		return fmt.Errorf("get model params err: %w", err)
	}
	if err = r.params.Validate(); err != nil {
		return fmt.Errorf("invalid model params: %w", err)
	}
	if r.tieBreak, err = hmm.ParseTieBreak(c.Train.TieBreak); err != nil {
		return err
	}

	//在训练之前初始化进度总线
	r.bus = progress.NewBus()
	r.recorder = &progress.Recorder{}
	r.bus.Register(r.recorder)
	r.bus.Register(&progress.LogSubscriber{Log: common.GetLogger(common.MODULE_TRAIN)})

	r.log.Infof("runner init: %d states, %d symbols, config %s", r.params.States(), r.params.Symbols(), c.Path)
	return nil
}

// loadObservations reads the sequence lazily, simulate does not need one.
func (r *Runner) loadObservations() (hmm.Sequence, error) {
	if r.obs != nil {
		return r.obs, nil
	}
	obs, err := r.conf.ObservationSequence()
	if err != nil {
		return nil, err
	}
	r.obs = obs
	return obs, nil
}

func (r *Runner) newSession() (*hmm.Session, error) {
	if r.conf == nil {
		return nil, errors.New("runner not initialized")
	}
	obs, err := r.loadObservations()
	if err != nil {
		return nil, err
	}
	return hmm.NewSession(r.params, obs,
		hmm.WithSeed(r.conf.Train.Seed),
		hmm.WithTieBreak(r.tieBreak),
		hmm.WithStrictCheck(r.conf.Train.Strict),
	)
}

// Train fits the model with the given method, relabels the states when
// configured to, and decodes the most likely path under the result.
func (r *Runner) Train(method common.TrainMethod) (*Report, error) {
	s, err := r.newSession()
	if err != nil {
		return nil, err
	}

	opts := r.conf.TrainOptions()
	opts.Progress = r.bus
	r.log.Infof("[%s] train %s: epsilon %g, max %d iterations", s.ID(), method, opts.Epsilon, opts.MaxIterations)

	var res *hmm.Result
	switch method {
	case common.METHOD_EM:
		res, err = s.TrainEM(opts)
	case common.METHOD_GIBBS:
		res, err = s.TrainGibbs(opts)
	default:
		return nil, errors.Errorf("unknown train method %q", method)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "train %s", method)
	}
	if w := res.Warning(); w != nil {
		r.log.Warn(w.Error())
	}

	report := newReport(s)
	report.Method = string(method)
	report.Iterations = res.Iterations
	report.Converged = res.Converged
	report.Elapsed = res.Elapsed.String()
	report.AvgIteration = res.AvgIteration.String()
	if w := res.Warning(); w != nil {
		report.Warning = w.Error()
	}

	if r.conf.Train.Relabel {
		perm, err := s.Relabel()
		if err != nil {
			return nil, err
		}
		report.Permutation = perm
		if err = s.Forward(); err != nil {
			return nil, err
		}
	}
	if err = r.finish(s, report); err != nil {
		return nil, err
	}
	r.log.Infof("[%s] %s done after %d iterations, logP = %f", s.ID(), method, res.Iterations, report.LogLikelihood)
	return report, nil
}

// Decode runs Viterbi under the configured parameters without training.
func (r *Runner) Decode() (*Report, error) {
	s, err := r.newSession()
	if err != nil {
		return nil, err
	}
	if err = s.Forward(); err != nil {
		return nil, err
	}
	report := newReport(s)
	if err = r.finish(s, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Runner) finish(s *hmm.Session, report *Report) error {
	ll, err := s.LogLikelihood()
	if err != nil {
		return err
	}
	path, err := s.Viterbi()
	if err != nil {
		return err
	}
	p := s.Params()
	report.LogLikelihood = ll
	report.Transition = p.TransRows()
	report.Emission = p.EmitRows()
	report.Prior = p.Prior
	report.Path = hmm.Sequence(path).String()
	return nil
}

// Simulate samples a sequence of the given length from the configured
// parameters.
func (r *Runner) Simulate(length int, seed uint64) (*SimulateReport, error) {
	if r.params == nil {
		return nil, errors.New("runner not initialized")
	}
	states, obs, err := hmm.Simulate(r.params, length, hmm.NewSource(seed))
	if err != nil {
		return nil, err
	}
	return &SimulateReport{
		Seed:         seed,
		Length:       length,
		States:       hmm.Sequence(states).String(),
		Observations: obs.String(),
		SymbolCounts: obs.Counts(r.params.Symbols()),
	}, nil
}

// Traces returns the log-likelihood trace of every run so far.
func (r *Runner) Traces() map[common.TrainMethod][]float64 {
	if r.recorder == nil {
		return nil
	}
	return r.recorder.Traces()
}

// SavePlot renders every recorded trace to path.
func (r *Runner) SavePlot(path string) error {
	p, err := plot.LikelihoodPlot(r.Traces())
	if err != nil {
		return err
	}
	if err = plot.SavePlot(p, plot.DefaultWidth, plot.DefaultHeight, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	r.log.Infof("likelihood plot written to %s", path)
	return nil
}
