package scf

import (
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dairdre/goscf/errors"
)

// Guess selects how the starting density is produced.
type Guess string

const (
	// GuessCore diagonalizes the core Hamiltonian.
	GuessCore Guess = "core"
	// GuessAtomic superposes spherically averaged atomic densities.
	GuessAtomic Guess = "atomic"
	// GuessUser takes a caller-supplied density (WithGuessDensity).
	GuessUser Guess = "user"
)

// Defaults. DefaultConfig is the single source of truth; there is no
// process-wide mutable state.
const (
	DefaultConvTol          = 1e-9
	DefaultDensTol          = 1e-6
	DefaultMaxCycle         = 50
	DefaultDIISSpace        = 8
	DefaultDIISStartCycle   = 2
	DefaultScreenThreshold  = 1e-12
	DefaultDivergeThreshold = 1e-2
)

// Config is the full option set of one SCF calculation. A Config value is
// passed into the driver constructor; nothing reads global state.
type Config struct {
	// ConvTol is the energy-change convergence threshold in Hartree.
	ConvTol float64 `yaml:"conv_tol" validate:"gt=0"`
	// DensTol is the convergence threshold on the DIIS residual RMS.
	DensTol float64 `yaml:"dens_tol" validate:"gt=0"`
	// MaxCycle caps the iteration count.
	MaxCycle int `yaml:"max_cycle" validate:"gte=1"`
	// DIISSpace is the extrapolation history window; 0 disables DIIS.
	DIISSpace int `yaml:"diis_space" validate:"gte=0"`
	// DIISStartCycle is the first cycle eligible for extrapolation.
	DIISStartCycle int `yaml:"diis_start_cycle" validate:"gte=1"`
	// ScreenThreshold is the Schwarz cutoff; 0 evaluates everything.
	ScreenThreshold float64 `yaml:"screening_threshold" validate:"gte=0"`
	// LevelShift raises virtual orbitals by the given amount (Hartree).
	LevelShift float64 `yaml:"level_shift" validate:"gte=0"`
	// Damping mixes the previous Fock matrix in before the DIIS window
	// opens; 0 disables.
	Damping float64 `yaml:"damping" validate:"gte=0,lt=1"`
	// DivergeThreshold is the per-cycle energy rise that counts as
	// divergence when no stabilization remedy is configured.
	DivergeThreshold float64 `yaml:"diverge_threshold" validate:"gt=0"`
	// InitialGuess picks the starting density.
	InitialGuess Guess `yaml:"initial_guess" validate:"oneof=core atomic user"`
	// MaxWorkers bounds Fock-build parallelism; 0 means GOMAXPROCS.
	MaxWorkers int `yaml:"max_workers" validate:"gte=0"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ConvTol:          DefaultConvTol,
		DensTol:          DefaultDensTol,
		MaxCycle:         DefaultMaxCycle,
		DIISSpace:        DefaultDIISSpace,
		DIISStartCycle:   DefaultDIISStartCycle,
		ScreenThreshold:  DefaultScreenThreshold,
		DivergeThreshold: DefaultDivergeThreshold,
		InitialGuess:     GuessCore,
	}
}

var validate = validator.New()

// Validate checks the configuration, wrapping violations as InvalidInput.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.InvalidInput, "invalid scf configuration")
	}
	return nil
}

// LoadConfig reads a YAML document over the defaults and validates it.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.InvalidInput, "malformed scf configuration")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
