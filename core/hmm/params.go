package hmm

import (
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// BinarySymbols is the alphabet size of the default 0/1 emission model.
const BinarySymbols = 2

// Params is one value of the model parameters. Trainers never edit a
// Params in place; each update builds a new value.
type Params struct {
	Trans *mat.Dense // K×K, row i is P(next | i)
	Emit  *mat.Dense // K×M, row i is P(symbol | i)
	Prior []float64  // length K
}

// NewParams builds and validates a parameter value from row-major slices.
// A nil prior puts all initial mass on state 0.
func NewParams(trans, emit [][]float64, prior []float64) (*Params, error) {
	t, err := denseFrom("transition", trans)
	if err != nil {
		return nil, err
	}
	e, err := denseFrom("emission", emit)
	if err != nil {
		return nil, err
	}
	k, _ := t.Dims()
	if prior == nil {
		prior = make([]float64, k)
		prior[0] = 1
	}

	p := &Params{Trans: t, Emit: e, Prior: append([]float64(nil), prior...)}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func denseFrom(name string, rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%s matrix is empty", name)
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, errors.Wrapf(ErrDimensionMismatch, "%s row %d has %d columns, want %d", name, i, len(row), c)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), c, data), nil
}

func (p *Params) States() int {
	k, _ := p.Trans.Dims()
	return k
}

func (p *Params) Symbols() int {
	_, m := p.Emit.Dims()
	return m
}

// Validate reports every malformed dimension or distribution row at once.
func (p *Params) Validate() error {
	if p == nil || p.Trans == nil || p.Emit == nil {
		return errors.Wrap(ErrDimensionMismatch, "params are incomplete")
	}

	var result *multierror.Error
	k, kc := p.Trans.Dims()
	ke, m := p.Emit.Dims()
	if k != kc {
		result = multierror.Append(result, errors.Wrapf(ErrDimensionMismatch, "transition matrix is %dx%d", k, kc))
	}
	if ke != k {
		result = multierror.Append(result, errors.Wrapf(ErrDimensionMismatch, "emission matrix has %d rows for %d states", ke, k))
	}
	if m < BinarySymbols {
		result = multierror.Append(result, errors.Wrapf(ErrDimensionMismatch, "emission alphabet has %d symbols", m))
	}
	if len(p.Prior) != k {
		result = multierror.Append(result, errors.Wrapf(ErrDimensionMismatch, "prior has %d entries for %d states", len(p.Prior), k))
	}
	if result != nil {
		return result.ErrorOrNil()
	}

	for i := 0; i < k; i++ {
		if err := checkDistribution(p.Trans.RawRowView(i)); err != nil {
			result = multierror.Append(result, errors.WithMessagef(err, "transition row %d", i))
		}
		if err := checkDistribution(p.Emit.RawRowView(i)); err != nil {
			result = multierror.Append(result, errors.WithMessagef(err, "emission row %d", i))
		}
	}
	if err := checkDistribution(p.Prior); err != nil {
		result = multierror.Append(result, errors.WithMessage(err, "prior"))
	}
	return result.ErrorOrNil()
}

func checkDistribution(row []float64) error {
	for j, v := range row {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrInvalidParameter, "entry %d is %v", j, v)
		}
	}
	if sum := floats.Sum(row); math.Abs(sum-1) > probTolerance {
		return errors.Wrapf(ErrInvalidParameter, "sums to %v", sum)
	}
	return nil
}

func (p *Params) Clone() *Params {
	return &Params{
		Trans: mat.DenseCopyOf(p.Trans),
		Emit:  mat.DenseCopyOf(p.Emit),
		Prior: append([]float64(nil), p.Prior...),
	}
}

func (p *Params) TransRows() [][]float64 {
	return denseRows(p.Trans)
}

func (p *Params) EmitRows() [][]float64 {
	return denseRows(p.Emit)
}
