package common

import (
	"fmt"
	"strings"
)

// TrainMethod names a training paradigm.
type TrainMethod string

const (
	METHOD_EM    TrainMethod = "em"
	METHOD_GIBBS TrainMethod = "gibbs"
)

func (m TrainMethod) String() string {
	return string(m)
}

func ParseTrainMethod(s string) (TrainMethod, error) {
	switch TrainMethod(strings.ToLower(strings.TrimSpace(s))) {
	case METHOD_EM, "":
		return METHOD_EM, nil
	case METHOD_GIBBS:
		return METHOD_GIBBS, nil
	}
	return "", fmt.Errorf("unknown train method %q, want %q or %q", s, METHOD_EM, METHOD_GIBBS)
}
