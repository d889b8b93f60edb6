// particle/variable.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package particle

import (
	"fmt"
	"slices"

	"github.com/clyde3d/clyde/rand"
)

type VariableKind int

const (
	// Constant always gives A.
	Constant VariableKind = iota
	// Uniform is uniformly distributed between A and B.
	Uniform
	// Gaussian has mean A and standard deviation B.
	Gaussian
	// Exponential has mean A.
	Exponential
)

var variableKindNames = []string{"constant", "uniform", "gaussian", "exponential"}

func (k VariableKind) String() string {
	if int(k) < len(variableKindNames) {
		return variableKindNames[k]
	}
	return fmt.Sprintf("VariableKind(%d)", int(k))
}

func (k VariableKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *VariableKind) UnmarshalText(b []byte) error {
	idx := slices.Index(variableKindNames, string(b))
	if idx == -1 {
		return fmt.Errorf("%s: unknown variable kind (expected one of %v)", string(b), variableKindNames)
	}
	*k = VariableKind(idx)
	return nil
}

// FloatVariable is a randomly-distributed value.
type FloatVariable struct {
	Kind VariableKind `json:"kind"`
	A    float32      `json:"a"`
	B    float32      `json:"b,omitempty"`
}

func ConstantVariable(v float32) FloatVariable {
	return FloatVariable{Kind: Constant, A: v}
}

func UniformVariable(a, b float32) FloatVariable {
	return FloatVariable{Kind: Uniform, A: a, B: b}
}

func (v FloatVariable) Sample(r *rand.Rand) float32 {
	switch v.Kind {
	case Uniform:
		return r.Uniform(v.A, v.B)
	case Gaussian:
		return v.A + v.B*r.Normal()
	case Exponential:
		return r.Exponential(v.A)
	default:
		return v.A
	}
}

func (v FloatVariable) String() string {
	switch v.Kind {
	case Uniform:
		return fmt.Sprintf("uniform(%g, %g)", v.A, v.B)
	case Gaussian:
		return fmt.Sprintf("gaussian(%g, %g)", v.A, v.B)
	case Exponential:
		return fmt.Sprintf("exponential(%g)", v.A)
	default:
		return fmt.Sprintf("%g", v.A)
	}
}
