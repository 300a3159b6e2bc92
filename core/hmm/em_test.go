package hmm

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hmmkit/common"
	"hmmkit/core/progress"
)

func TestEMStepIsMonotone(t *testing.T) {
	p := newTestParams(t, boxTrans, boxEmit, boxPrior)
	s := newTestSession(t, p, simulated(t, 200, 11))

	require.NoError(t, s.Forward())
	prev, err := s.LogLikelihood()
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		require.NoError(t, s.EMStep(), "step %d", i)
		ll, err := s.LogLikelihood()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ll, prev-1e-9, "step %d", i)
		prev = ll

		cur := s.Params()
		requireStochastic(t, cur.TransRows())
		requireStochastic(t, cur.EmitRows())
		requireStochastic(t, [][]float64{cur.Prior})
	}
}

func TestEMStepOriginalDefaults(t *testing.T) {
	// 原始设定：3个状态，全部先验质量在状态0
	trans := [][]float64{
		{0.6, 0.3, 0.1},
		{0.2, 0.5, 0.3},
		{0.1, 0.3, 0.6},
	}
	emit := [][]float64{
		{0.8, 0.2},
		{0.5, 0.5},
		{0.3, 0.7},
	}
	s := newTestSession(t, newTestParams(t, trans, emit, nil), simulated(t, 150, 5))

	res, err := s.TrainEM(TrainOptions{Epsilon: 1e-6, MaxIterations: 25})
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Iterations, 25)
	assert.InDeltaSlice(t, []float64{1, 0, 0}, s.Params().Prior, 1e-12)
}

func TestTrainEMConverges(t *testing.T) {
	p := newTestParams(t,
		[][]float64{{0.7, 0.3}, {0.4, 0.6}},
		[][]float64{{0.6, 0.4}, {0.3, 0.7}},
		[]float64{0.6, 0.4})
	s := newTestSession(t, p, simulated(t, 300, 21))

	require.NoError(t, s.Forward())
	initial, err := s.LogLikelihood()
	require.NoError(t, err)

	rec := &progress.Recorder{}
	res, err := s.TrainEM(TrainOptions{Epsilon: 1e-3, MaxIterations: 1000, Progress: rec})
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.NoError(t, res.Warning())
	assert.Equal(t, common.METHOD_EM, res.Method)
	assert.Equal(t, s.ID(), res.Session)
	assert.Less(t, res.Iterations, 1000)
	require.Len(t, res.Trace, res.Iterations)
	assert.Equal(t, res.Trace[len(res.Trace)-1], res.LogLikelihood)
	if res.Iterations > 1 {
		assert.LessOrEqual(t, abs(res.Trace[res.Iterations-1]-res.Trace[res.Iterations-2]), 1e-3)
	}

	events := rec.Events()
	require.Len(t, events, res.Iterations)
	for i, e := range events {
		assert.Equal(t, i+1, e.Iteration)
		assert.Equal(t, res.Trace[i], e.LogLikelihood)
		assert.False(t, math.IsInf(e.Delta, 0))
		if i > 0 {
			assert.Equal(t, res.Trace[i]-res.Trace[i-1], e.Delta)
		}
	}
	// 第一轮的变化量相对初始参数
	assert.InDelta(t, res.Trace[0]-initial, events[0].Delta, 1e-12)
}

func TestTrainEMHitsCap(t *testing.T) {
	s := newTestSession(t, newTestParams(t, boxTrans, boxEmit, boxPrior), simulated(t, 100, 2))

	res, err := s.TrainEM(TrainOptions{Epsilon: 0, MaxIterations: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Iterations)
	assert.False(t, res.Converged)
	assert.True(t, errors.Is(res.Warning(), ErrNotConverged))
	assert.Greater(t, res.AvgIteration.Nanoseconds(), int64(0))
}

func TestTrainEMZeroIterations(t *testing.T) {
	s := newTestSession(t, newTestParams(t, boxTrans, boxEmit, boxPrior), boxObs)

	res, err := s.TrainEM(TrainOptions{Epsilon: 1e-6, MaxIterations: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Iterations)
	assert.False(t, res.Converged)
	assert.Empty(t, res.Trace)
	assert.Zero(t, res.AvgIteration)
}

func TestTrainRejectsBadOptions(t *testing.T) {
	s := newTestSession(t, newTestParams(t, boxTrans, boxEmit, boxPrior), boxObs)

	_, err := s.TrainEM(TrainOptions{Epsilon: -1, MaxIterations: 10})
	assert.Error(t, err)
	_, err = s.TrainEM(TrainOptions{Epsilon: 1e-6, MaxIterations: -1})
	assert.Error(t, err)
}

func TestEMStepCategoricalAlphabet(t *testing.T) {
	p := newTestParams(t,
		[][]float64{{0.7, 0.3}, {0.4, 0.6}},
		[][]float64{{0.2, 0.3, 0.5}, {0.6, 0.3, 0.1}},
		[]float64{0.5, 0.5})
	s := newTestSession(t, p, Sequence{0, 2, 2, 1, 0, 0, 2, 1, 0, 2})

	require.NoError(t, s.Forward())
	before, _ := s.LogLikelihood()
	require.NoError(t, s.EMStep())
	after, _ := s.LogLikelihood()
	assert.GreaterOrEqual(t, after, before-1e-12)
	assert.Equal(t, 3, s.Params().Symbols())
}

func TestEMStepDegenerate(t *testing.T) {
	// 状态1不可达，期望转移次数为0
	p := newTestParams(t,
		[][]float64{{1, 0}, {0.5, 0.5}},
		[][]float64{{0.5, 0.5}, {0.5, 0.5}},
		[]float64{1, 0})
	s := newTestSession(t, p, Sequence{0, 1, 0})

	require.NoError(t, s.Forward())
	err := s.EMStep()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerateLikelihood))
	assert.Contains(t, err.Error(), "state 1")

	cur := s.Params()
	assert.Equal(t, p.TransRows(), cur.TransRows())
	assert.Equal(t, p.EmitRows(), cur.EmitRows())
	assert.Equal(t, p.Prior, cur.Prior)
	_, err = s.LogLikelihood()
	assert.NoError(t, err)
}

func TestStrictCheckRejectsUpdate(t *testing.T) {
	p := newTestParams(t, boxTrans, boxEmit, boxPrior)
	bad := p.Clone()
	bad.Trans.Set(0, 0, 0.9)

	strict := newTestSession(t, p, boxObs)
	err := strict.setParams(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.Equal(t, p.TransRows(), strict.Params().TransRows())
	require.NoError(t, strict.Forward())

	loose := newTestSession(t, p, boxObs, WithStrictCheck(false))
	require.NoError(t, loose.setParams(bad))
	assert.Equal(t, 0.9, loose.Params().TransRows()[0][0])
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
