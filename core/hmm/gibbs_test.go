package hmm

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hmmkit/common"
)

func TestGibbsSweepReproducible(t *testing.T) {
	p := newTestParams(t, boxTrans, boxEmit, boxPrior)
	obs := simulated(t, 80, 9)

	a := newTestSession(t, p, obs, WithSeed(42))
	b := newTestSession(t, p, obs, WithSeed(42))
	for i := 0; i < 3; i++ {
		require.NoError(t, a.GibbsSweep())
		require.NoError(t, b.GibbsSweep())
	}
	assert.Equal(t, a.Path(), b.Path())

	for _, y := range a.Path() {
		assert.True(t, y >= 0 && y < 3)
	}
}

func TestGibbsSweepDeterministicConditionals(t *testing.T) {
	// 每个状态只生成一种符号，条件分布退化为单点
	p := newTestParams(t,
		[][]float64{{0.5, 0.5}, {0.5, 0.5}},
		[][]float64{{1, 0}, {0, 1}},
		[]float64{0.5, 0.5})
	obs := Sequence{0, 1, 1, 0, 1}
	s := newTestSession(t, p, obs)

	require.NoError(t, s.SetPath([]int{1, 0, 0, 1, 0}))
	require.NoError(t, s.GibbsSweep())
	assert.Equal(t, []int{0, 1, 1, 0, 1}, s.Path())
}

func TestGibbsSweepDegenerate(t *testing.T) {
	p := newTestParams(t,
		[][]float64{{0.5, 0.5}, {0.5, 0.5}},
		[][]float64{{1, 0}, {1, 0}},
		[]float64{0.5, 0.5})
	s := newTestSession(t, p, Sequence{0, 1, 0})

	err := s.GibbsSweep()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerateLikelihood))
	assert.Contains(t, err.Error(), "t=1")
}

func TestGibbsReestimateSmoothing(t *testing.T) {
	p := newTestParams(t, boxTrans, boxEmit, boxPrior)
	s := newTestSession(t, p, Sequence{0, 1, 1, 0})

	// 状态1和状态2从未被访问
	require.NoError(t, s.SetPath([]int{0, 0, 0, 0}))
	require.NoError(t, s.GibbsReestimate())

	cur := s.Params()
	for _, row := range append(cur.TransRows(), cur.EmitRows()...) {
		for _, v := range row {
			assert.Greater(t, v, 0.0)
		}
	}
	requireStochastic(t, cur.TransRows())
	requireStochastic(t, cur.EmitRows())

	assert.InDeltaSlice(t, []float64{3.01 / 3.03, 0.01 / 3.03, 0.01 / 3.03}, cur.TransRows()[0], 1e-12)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, cur.TransRows()[1], 1e-12)
	assert.InDeltaSlice(t, []float64{2.01 / 4.02, 2.01 / 4.02}, cur.EmitRows()[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, cur.EmitRows()[2], 1e-12)
	assert.Equal(t, boxPrior, cur.Prior)
}

func TestGibbsReestimateNeedsPath(t *testing.T) {
	s := newTestSession(t, newTestParams(t, boxTrans, boxEmit, boxPrior), boxObs)
	assert.Error(t, s.GibbsReestimate())
}

func TestSetPathValidation(t *testing.T) {
	s := newTestSession(t, newTestParams(t, boxTrans, boxEmit, boxPrior), boxObs)
	assert.True(t, errors.Is(s.SetPath([]int{0, 1}), ErrDimensionMismatch))
	assert.True(t, errors.Is(s.SetPath([]int{0, 1, 3}), ErrDimensionMismatch))
	assert.NoError(t, s.SetPath([]int{0, 1, 2}))
}

func TestInitPathFollowsPrior(t *testing.T) {
	p := newTestParams(t, boxTrans, boxEmit, nil)
	s := newTestSession(t, p, simulated(t, 50, 4))

	require.NoError(t, s.InitPath())
	for _, y := range s.Path() {
		assert.Equal(t, 0, y)
	}
}

func TestTrainGibbsBounded(t *testing.T) {
	p := newTestParams(t, boxTrans, boxEmit, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3})
	s := newTestSession(t, p, simulated(t, 120, 8), WithSeed(2024))

	res, err := s.TrainGibbs(TrainOptions{Epsilon: 1e-6, MaxIterations: 15, MixedTime: 3})
	require.NoError(t, err)
	assert.Equal(t, common.METHOD_GIBBS, res.Method)
	assert.LessOrEqual(t, res.Iterations, 15)
	assert.Len(t, res.Trace, res.Iterations)
	if res.Converged {
		assert.NoError(t, res.Warning())
	} else {
		assert.Equal(t, 15, res.Iterations)
		assert.True(t, errors.Is(res.Warning(), ErrNotConverged))
	}

	cur := s.Params()
	requireStochastic(t, cur.TransRows())
	requireStochastic(t, cur.EmitRows())
	ll, err := s.LogLikelihood()
	require.NoError(t, err)
	assert.False(t, math.IsNaN(ll))
	assert.Equal(t, res.LogLikelihood, ll)
}

func TestTrainGibbsReproducible(t *testing.T) {
	p := newTestParams(t, boxTrans, boxEmit, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3})
	obs := simulated(t, 60, 13)
	opts := TrainOptions{Epsilon: 1e-6, MaxIterations: 5, MixedTime: 2}

	a := newTestSession(t, p, obs, WithSeed(99))
	b := newTestSession(t, p, obs, WithSeed(99))
	ra, err := a.TrainGibbs(opts)
	require.NoError(t, err)
	rb, err := b.TrainGibbs(opts)
	require.NoError(t, err)
	assert.Equal(t, ra.Trace, rb.Trace)
	assert.Equal(t, a.Path(), b.Path())
}

func TestTrainGibbsRejectsMixedTime(t *testing.T) {
	s := newTestSession(t, newTestParams(t, boxTrans, boxEmit, boxPrior), boxObs)
	_, err := s.TrainGibbs(TrainOptions{Epsilon: 1e-6, MaxIterations: 5})
	assert.Error(t, err)
}
