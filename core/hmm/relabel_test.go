package hmm

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelabelSortsByEmission(t *testing.T) {
	// 状态0最可能生成1，状态2最不可能
	emit := [][]float64{
		{0.1, 0.9},
		{0.6, 0.4},
		{0.8, 0.2},
	}
	s := newTestSession(t, newTestParams(t, boxTrans, emit, boxPrior), simulated(t, 40, 1))

	perm, err := s.Relabel()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, perm)

	cur := s.Params()
	assert.Equal(t, [][]float64{{0.8, 0.2}, {0.6, 0.4}, {0.1, 0.9}}, cur.EmitRows())
	assert.Equal(t, [][]float64{
		{0.5, 0.3, 0.2},
		{0.2, 0.5, 0.3},
		{0.3, 0.2, 0.5},
	}, cur.TransRows())
	assert.Equal(t, []float64{0.4, 0.4, 0.2}, cur.Prior)
}

func TestRelabelIsPermutation(t *testing.T) {
	s := newTestSession(t, newTestParams(t, boxTrans, boxEmit, boxPrior), boxObs)

	perm, err := s.Relabel()
	require.NoError(t, err)
	sorted := append([]int(nil), perm...)
	sort.Ints(sorted)
	assert.Equal(t, []int{0, 1, 2}, sorted)
}

func TestRelabelIdempotent(t *testing.T) {
	s := newTestSession(t, newTestParams(t, boxTrans, boxEmit, boxPrior), simulated(t, 30, 6))

	_, err := s.Relabel()
	require.NoError(t, err)
	once := s.Params()

	perm, err := s.Relabel()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, perm)
	twice := s.Params()

	assert.Equal(t, once.TransRows(), twice.TransRows())
	assert.Equal(t, once.EmitRows(), twice.EmitRows())
	assert.Equal(t, once.Prior, twice.Prior)
}

func TestRelabelPreservesLikelihood(t *testing.T) {
	s := newTestSession(t, newTestParams(t, boxTrans, boxEmit, boxPrior), simulated(t, 100, 12))

	require.NoError(t, s.Forward())
	before, err := s.LogLikelihood()
	require.NoError(t, err)

	_, err = s.Relabel()
	require.NoError(t, err)
	_, err = s.LogLikelihood()
	assert.ErrorIs(t, err, ErrForwardRequired)

	require.NoError(t, s.Forward())
	after, err := s.LogLikelihood()
	require.NoError(t, err)
	assert.InDelta(t, before, after, 1e-10)
}

func TestRelabelMapsPath(t *testing.T) {
	emit := [][]float64{
		{0.05, 0.95},
		{0.95, 0.05},
	}
	p := newTestParams(t, [][]float64{{0.9, 0.1}, {0.1, 0.9}}, emit, []float64{0.5, 0.5})
	s := newTestSession(t, p, Sequence{1, 1, 0, 0, 0, 1, 1})

	before, err := s.Viterbi()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 1, 1, 0, 0}, before)

	perm, err := s.Relabel()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, perm)
	assert.Equal(t, []int{1, 1, 0, 0, 0, 1, 1}, s.Path())

	after, err := s.Viterbi()
	require.NoError(t, err)
	assert.Equal(t, s.Path(), after)
}
