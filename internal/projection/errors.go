package projection

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrDomain        = errors.New("coordinate outside projection domain")
	ErrConvergence   = errors.New("iteration did not converge")
	ErrConfiguration = errors.New("invalid projection configuration")
)

// DomainError reports an input coordinate that falls outside the region a
// projection covers, for example a longitude beyond the interruption tables
// or a latitude beyond the pole.
type DomainError struct {
	Projection string  // projection that rejected the input
	X, Y       float64 // offending input pair (lon/lat or planar x/y)
	Reason     string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s (input %g, %g)", e.Projection, e.Reason, e.X, e.Y)
}

// Unwrap returns the underlying error type.
func (e *DomainError) Unwrap() error {
	return ErrDomain
}

// ConvergenceError reports that an iterative solve ran out of its iteration
// budget. Retrying with the same input would not help.
type ConvergenceError struct {
	Projection string
	Lat        float64 // latitude the solve was attempted for, radians
	Iterations int     // iteration budget that was exhausted
}

// Error implements the error interface.
func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: auxiliary angle did not converge after %d iterations (lat %g)",
		e.Projection, e.Iterations, e.Lat)
}

// Unwrap returns the underlying error type.
func (e *ConvergenceError) Unwrap() error {
	return ErrConvergence
}

// ConfigurationError reports a malformed parameter set or lobe table. It is
// raised at construction time, never mid-transform.
type ConfigurationError struct {
	Projection string
	Reason     string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Projection != "" {
		return fmt.Sprintf("%s: %s", e.Projection, e.Reason)
	}
	return e.Reason
}

// Unwrap returns the underlying error type.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
