// Package hmm estimates and decodes a discrete hidden Markov model over a
// single observation sequence: scaled forward-backward, Viterbi, Baum-Welch
// and Gibbs-sampling training, and state relabeling.
package hmm

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Forward computes the scaled forward table α and the scaling constants c.
// Each α row sums to one; c[t] is the reciprocal of the unscaled row sum.
func (s *Session) Forward() error {
	s.forwardValid = false
	s.backwardValid = false

	k := s.k
	col := make([]float64, k)

	//t=0，初始前向概率 = 先验 * 观测生成概率
	mat.Col(col, s.obs[0], s.params.Emit)
	floats.MulTo(s.alpha[0], s.params.Prior, col)
	if err := s.rescale(0); err != nil {
		return err
	}

	tt := s.params.Trans.T()
	for t := 1; t < s.n; t++ {
		//t-1时刻前向概率 * 状态转换概率 * t时刻观测生成概率
		mat.Col(col, s.obs[t], s.params.Emit)
		cur := mat.NewVecDense(k, s.alpha[t])
		cur.MulVec(tt, mat.NewVecDense(k, s.alpha[t-1]))
		floats.Mul(s.alpha[t], col)
		if err := s.rescale(t); err != nil {
			return err
		}
	}

	s.forwardValid = true
	return nil
}

func (s *Session) rescale(t int) error {
	sum := floats.Sum(s.alpha[t])
	if !(sum > 0) || math.IsInf(1/sum, 0) {
		return errors.Wrapf(ErrDegenerateLikelihood, "forward step t=%d: unscaled row sum is %v", t, sum)
	}
	s.scale[t] = 1 / sum
	floats.Scale(s.scale[t], s.alpha[t])
	return nil
}

// Backward computes the backward table β using the scaling constants of
// the latest forward pass.
func (s *Session) Backward() error {
	if !s.forwardValid {
		return errors.WithStack(ErrForwardRequired)
	}

	k := s.k
	last := s.n - 1
	//t=T-1，后向概率初始化为1，再按c[T-1]缩放
	for i := range s.beta[last] {
		s.beta[last][i] = s.scale[last]
	}

	col := make([]float64, k)
	tmp := make([]float64, k)
	for t := last; t > 0; t-- {
		//t时刻状态转换概率 * t时刻观测生成概率 * t时刻后向概率
		mat.Col(col, s.obs[t], s.params.Emit)
		floats.MulTo(tmp, col, s.beta[t])
		prev := mat.NewVecDense(k, s.beta[t-1])
		prev.MulVec(s.params.Trans, mat.NewVecDense(k, tmp))
		floats.Scale(s.scale[t-1], s.beta[t-1])
	}

	s.backwardValid = true
	return nil
}

// LogLikelihood returns log P(x) = -Σ log c[t] for the current parameters.
func (s *Session) LogLikelihood() (float64, error) {
	if !s.forwardValid {
		return 0, errors.WithStack(ErrForwardRequired)
	}
	ll := 0.0
	for _, c := range s.scale {
		ll -= math.Log(c)
	}
	return ll, nil
}

// Posterior returns γ[t,i] = P(state i at t | x), running the backward
// pass if needed.
func (s *Session) Posterior() ([][]float64, error) {
	if !s.forwardValid {
		if err := s.Forward(); err != nil {
			return nil, err
		}
	}
	if !s.backwardValid {
		if err := s.Backward(); err != nil {
			return nil, err
		}
	}
	post := makeFloatArray(s.n, s.k)
	for t := range post {
		floats.MulTo(post[t], s.alpha[t], s.beta[t])
		if err := normalize(post[t]); err != nil {
			return nil, errors.WithMessagef(err, "posterior t=%d", t)
		}
	}
	return post, nil
}

func (s *Session) Alpha() [][]float64 {
	return copyTable(s.alpha)
}

func (s *Session) Beta() [][]float64 {
	return copyTable(s.beta)
}

func (s *Session) Scale() []float64 {
	return append([]float64(nil), s.scale...)
}
