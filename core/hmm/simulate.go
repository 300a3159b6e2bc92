package hmm

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Simulate draws a state path and an observation sequence of the given
// length from p.
func Simulate(p *Params, length int, src rand.Source) ([]int, Sequence, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	if length < 1 {
		return nil, nil, errors.Errorf("length must be positive, got %d", length)
	}

	k := p.States()
	next := make([]distuv.Categorical, k)
	emit := make([]distuv.Categorical, k)
	for i := 0; i < k; i++ {
		next[i] = distuv.NewCategorical(p.Trans.RawRowView(i), src)
		emit[i] = distuv.NewCategorical(p.Emit.RawRowView(i), src)
	}

	states := make([]int, length)
	obs := make(Sequence, length)
	state := int(distuv.NewCategorical(p.Prior, src).Rand())
	for t := 0; t < length; t++ {
		if t > 0 {
			state = int(next[state].Rand())
		}
		states[t] = state
		obs[t] = int(emit[state].Rand())
	}
	return states, obs, nil
}
