package scf

import "gonum.org/v1/gonum/mat"

// State is the SCF driver's lifecycle state.
type State int

const (
	Initialized State = iota
	Iterating
	Converged
	MaxIterExceeded
	Diverged
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "Initialized"
	case Iterating:
		return "Iterating"
	case Converged:
		return "Converged"
	case MaxIterExceeded:
		return "MaxIterExceeded"
	case Diverged:
		return "Diverged"
	default:
		return "Unknown"
	}
}

// Orbitals is one diagonalization outcome: energies ascending and the
// coefficient matrix by column. A value type; each iteration produces a
// fresh one rather than mutating its predecessor, so convergence
// diagnostics can keep earlier sets.
type Orbitals struct {
	Energies []float64
	Coeffs   *mat.Dense
}

// Result is the outcome of a calculation. Non-converged terminations
// (MaxIterExceeded, Diverged) still carry the best available state; they
// are results, not errors, so callers can inspect and retry with different
// settings.
type Result struct {
	RunID            string
	State            State
	Converged        bool
	Iterations       int
	Energy           float64
	Electronic       float64
	NuclearRepulsion float64
	XCEnergy         float64
	DispersionEnergy float64
	Density          *mat.SymDense
	Orbitals         Orbitals
}
