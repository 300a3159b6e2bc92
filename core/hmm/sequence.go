package hmm

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Sequence is an observation sequence of symbol indices.
type Sequence []int

// ParseSequence reads one symbol per digit. Whitespace and commas are
// skipped so "0110", "0 1 1 0" and "0,1,1,0" are the same sequence.
func ParseSequence(s string) (Sequence, error) {
	seq := make(Sequence, 0, len(s))
	for i, r := range s {
		switch {
		case unicode.IsSpace(r) || r == ',':
			continue
		case r >= '0' && r <= '9':
			seq = append(seq, int(r-'0'))
		default:
			return nil, errors.Errorf("invalid symbol %q at offset %d", r, i)
		}
	}
	return seq, nil
}

// Validate checks the sequence against an alphabet of the given size.
func (s Sequence) Validate(symbols int) error {
	if len(s) < 2 {
		return errors.Wrapf(ErrDimensionMismatch, "sequence has %d observations, need at least 2", len(s))
	}
	for t, x := range s {
		if x < 0 || x >= symbols {
			return errors.Wrapf(ErrDimensionMismatch, "symbol %d at t=%d is outside the %d-symbol alphabet", x, t, symbols)
		}
	}
	return nil
}

func (s Sequence) String() string {
	var b strings.Builder
	b.Grow(len(s))
	for _, x := range s {
		if x >= 0 && x <= 9 {
			b.WriteByte(byte('0' + x))
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// Counts returns how often each symbol occurs.
func (s Sequence) Counts(symbols int) []int {
	counts := make([]int, symbols)
	for _, x := range s {
		if x >= 0 && x < symbols {
			counts[x]++
		}
	}
	return counts
}
