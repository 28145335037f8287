// Package errors defines custom error types for the qkdnet BB84 network
// simulator. Configuration errors identify the offending parameter so the
// boundary layer can surface a precise failure instead of a silent clamp.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for link configuration
var (
	// ErrInvalidQubitCount indicates a non-positive qubit count
	ErrInvalidQubitCount = errors.New("link: qubit count must be positive")

	// ErrInvalidThreshold indicates a security threshold outside (0, 100]
	ErrInvalidThreshold = errors.New("link: security threshold out of range")

	// ErrMissingRand indicates a link was run without a random stream
	ErrMissingRand = errors.New("link: random stream not set")
)

// Sentinel errors for attacker profiles
var (
	// ErrInvalidProbability indicates an intercept probability outside [0, 1]
	ErrInvalidProbability = errors.New("attack: intercept probability out of range")

	// ErrEmptyAttackerName indicates an attacker profile without a name
	ErrEmptyAttackerName = errors.New("attack: attacker name is empty")

	// ErrDuplicateAttacker indicates two attackers in one chain share a name
	ErrDuplicateAttacker = errors.New("attack: duplicate attacker name in chain")
)

// Sentinel errors for network simulation
var (
	// ErrNoReceivers indicates an empty receiver set
	ErrNoReceivers = errors.New("network: receiver set is empty")

	// ErrUnknownReceiver indicates a scenario references a receiver that is
	// not part of the simulator's receiver set
	ErrUnknownReceiver = errors.New("network: unknown receiver")

	// ErrDuplicateReceiver indicates a receiver name appears twice
	ErrDuplicateReceiver = errors.New("network: duplicate receiver")

	// ErrBatchCanceled indicates a batch was canceled between scenarios
	ErrBatchCanceled = errors.New("network: batch canceled")
)

// Sentinel errors for scenario generation
var (
	// ErrUnknownArchetype indicates an unrecognized attack archetype name
	ErrUnknownArchetype = errors.New("scenario: unknown attack archetype")

	// ErrUnknownAttacker indicates an assignment references an attacker that
	// is not declared by the scenario
	ErrUnknownAttacker = errors.New("scenario: unknown attacker")

	// ErrInvalidScenarioCount indicates a non-positive batch size
	ErrInvalidScenarioCount = errors.New("scenario: scenario count must be positive")

	// ErrInvalidAttackerCount indicates an attacker count outside the
	// generator's bounds
	ErrInvalidAttackerCount = errors.New("scenario: attacker count out of range")
)

// Sentinel errors for analysis sweeps
var (
	// ErrInvalidTrialCount indicates a non-positive trial count
	ErrInvalidTrialCount = errors.New("analysis: trial count must be positive")

	// ErrInvalidStep indicates a non-positive sweep step
	ErrInvalidStep = errors.New("analysis: sweep step must be positive")
)

// ConfigError wraps a configuration error with the offending parameter.
type ConfigError struct {
	Param string      // Parameter name (e.g. "numQubits")
	Value interface{} // Offending value
	Err   error       // Underlying sentinel error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s=%v: %v", e.Param, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(param string, value interface{}, err error) *ConfigError {
	return &ConfigError{Param: param, Value: value, Err: err}
}

// SimulationError wraps a failure inside one stage of a simulation run.
// Stages are "link", "scenario", "batch", "threat" and "sweep".
type SimulationError struct {
	Stage string // Simulation stage that failed
	Name  string // Link or scenario name
	Err   error  // Underlying error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Name, e.Err)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}

// NewSimulationError creates a new SimulationError.
func NewSimulationError(stage, name string, err error) *SimulationError {
	return &SimulationError{Stage: stage, Name: name, Err: err}
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
