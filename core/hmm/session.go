package hmm

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"hmmkit/common"
)

// TieBreak decides which candidate wins when two Viterbi scores are equal.
type TieBreak int

const (
	// TieBreakLast lets the largest state index win a tie.
	TieBreakLast TieBreak = iota
	// TieBreakFirst lets the smallest state index win a tie.
	TieBreakFirst
)

func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last":
		return TieBreakLast, nil
	case "first":
		return TieBreakFirst, nil
	}
	return TieBreakLast, errors.Errorf("unknown tie break %q, want \"first\" or \"last\"", s)
}

func (tb TieBreak) String() string {
	if tb == TieBreakFirst {
		return "first"
	}
	return "last"
}

// prefer reports whether candidate replaces the current best.
func (tb TieBreak) prefer(candidate, best float64) bool {
	if tb == TieBreakFirst {
		return candidate > best
	}
	return candidate >= best
}

func (tb TieBreak) argmax(x []float64) int {
	j := 0
	for i := 1; i < len(x); i++ {
		if tb.prefer(x[i], x[j]) {
			j = i
		}
	}
	return j
}

type Option func(*Session)

// WithRandSource injects the source behind every Gibbs and path draw.
func WithRandSource(src rand.Source) Option {
	return func(s *Session) {
		s.src = src
	}
}

// NewSource returns the PCG source used for a given seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)
}

func WithSeed(seed uint64) Option {
	return WithRandSource(NewSource(seed))
}

func WithTieBreak(tb TieBreak) Option {
	return func(s *Session) {
		s.tieBreak = tb
	}
}

func WithLogger(l common.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithStrictCheck validates the parameters after every update.
func WithStrictCheck(strict bool) Option {
	return func(s *Session) {
		s.strict = strict
	}
}

// Session owns one model and one observation sequence. It is not safe for
// concurrent use.
type Session struct {
	id     string
	params *Params
	obs    Sequence
	k      int
	n      int

	alpha [][]float64
	beta  [][]float64
	scale []float64
	gamma [][]float64
	path  []int

	forwardValid  bool
	backwardValid bool
	pathValid     bool

	src      rand.Source
	tieBreak TieBreak
	strict   bool
	log      common.Logger
}

// NewSession validates p and obs and takes a private copy of both.
func NewSession(p *Params, obs Sequence, opts ...Option) (*Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := obs.Validate(p.Symbols()); err != nil {
		return nil, err
	}

	k, n := p.States(), len(obs)
	s := &Session{
		id:     uuid.NewString(),
		params: p.Clone(),
		obs:    append(Sequence(nil), obs...),
		k:      k,
		n:      n,
		alpha:  makeFloatArray(n, k),
		beta:   makeFloatArray(n, k),
		scale:  make([]float64, n),
		gamma:  makeFloatArray(n, k),
		path:   make([]int, n),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	if s.log == nil {
		s.log = common.GetLogger(common.MODULE_HMM)
	}
	s.log.Debugf("[%s] new session: %d states, %d symbols, %d observations", s.id, k, p.Symbols(), n)
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) States() int {
	return s.k
}

func (s *Session) Len() int {
	return s.n
}

// Params returns a copy of the current parameters.
func (s *Session) Params() *Params {
	return s.params.Clone()
}

func (s *Session) Observations() Sequence {
	return append(Sequence(nil), s.obs...)
}

// Path returns a copy of the current state path, decoded or sampled.
func (s *Session) Path() []int {
	return append([]int(nil), s.path...)
}

// SetPath replaces the state path, e.g. to seed the Gibbs sampler.
func (s *Session) SetPath(path []int) error {
	if len(path) != s.n {
		return errors.Wrapf(ErrDimensionMismatch, "path has %d states, sequence has %d observations", len(path), s.n)
	}
	for t, y := range path {
		if y < 0 || y >= s.k {
			return errors.Wrapf(ErrDimensionMismatch, "state %d at t=%d is outside [0,%d)", y, t, s.k)
		}
	}
	copy(s.path, path)
	s.pathValid = true
	return nil
}

// setParams installs a new parameter value and invalidates derived tables.
func (s *Session) setParams(next *Params) error {
	if s.strict {
		if err := next.Validate(); err != nil {
			return errors.WithMessage(err, "parameter update")
		}
	}
	s.params = next
	s.forwardValid = false
	s.backwardValid = false
	return nil
}
