package hmm

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"hmmkit/test/mock"
)

// 盒子和球模型：3个盒子(状态)，红=0、白=1两种观测
var (
	boxTrans = [][]float64{
		{0.5, 0.2, 0.3},
		{0.3, 0.5, 0.2},
		{0.2, 0.3, 0.5},
	}
	boxEmit = [][]float64{
		{0.5, 0.5},
		{0.4, 0.6},
		{0.7, 0.3},
	}
	boxPrior = []float64{0.2, 0.4, 0.4}
	boxObs   = Sequence{0, 1, 0}
)

func newTestParams(t *testing.T, trans, emit [][]float64, prior []float64) *Params {
	t.Helper()
	p, err := NewParams(trans, emit, prior)
	require.NoError(t, err)
	return p
}

func newTestSession(t *testing.T, p *Params, obs Sequence, opts ...Option) *Session {
	t.Helper()
	base := []Option{WithLogger(mock.GetMockLogger("hmm")), WithSeed(7), WithStrictCheck(true)}
	s, err := NewSession(p, obs, append(base, opts...)...)
	require.NoError(t, err)
	return s
}

// simulated draws a sequence from a well separated 2-state model.
func simulated(t *testing.T, length int, seed uint64) Sequence {
	t.Helper()
	truth := newTestParams(t,
		[][]float64{{0.9, 0.1}, {0.15, 0.85}},
		[][]float64{{0.85, 0.15}, {0.2, 0.8}},
		[]float64{0.5, 0.5})
	_, obs, err := Simulate(truth, length, rand.NewPCG(seed, seed+1))
	require.NoError(t, err)
	return obs
}

// bruteForceLikelihood sums the unscaled joint probability over every path.
func bruteForceLikelihood(p *Params, obs Sequence) float64 {
	k := p.States()
	path := make([]int, len(obs))
	total := 0.0
	var walk func(t int)
	walk = func(t int) {
		if t == len(obs) {
			pr := p.Prior[path[0]] * p.Emit.At(path[0], obs[0])
			for i := 1; i < len(obs); i++ {
				pr *= p.Trans.At(path[i-1], path[i]) * p.Emit.At(path[i], obs[i])
			}
			total += pr
			return
		}
		for y := 0; y < k; y++ {
			path[t] = y
			walk(t + 1)
		}
	}
	walk(0)
	return total
}

func requireStochastic(t *testing.T, rows [][]float64) {
	t.Helper()
	for i, row := range rows {
		sum := 0.0
		for _, v := range row {
			require.False(t, v < 0 || math.IsNaN(v), "row %d has entry %v", i, v)
			sum += v
		}
		require.InDelta(t, 1.0, sum, 1e-9, "row %d", i)
	}
}
