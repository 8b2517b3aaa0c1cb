package repository

import (
	"errors"
	"fmt"
)

// Sentinel errors for repository operations
var (
	// ErrPrecondition is returned before any statement is built when a required argument is missing
	ErrPrecondition = errors.New("precondition violated")

	// ErrConfiguration is returned by NewGenericRepository when a Descriptor cannot describe a usable entity
	ErrConfiguration = errors.New("repository misconfigured")

	// ErrInvariant is returned when a statement affected an unexpected number of rows
	// or a model is left without an identifier
	ErrInvariant = errors.New("invariant violated")

	// ErrNotUnique is returned by FindOne when more than one row matches
	ErrNotUnique = errors.New("more than one row matched")
)

// IsPrecondition checks if an error is ErrPrecondition
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPrecondition)
}

// IsConfiguration checks if an error is ErrConfiguration
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsInvariant checks if an error is ErrInvariant
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariant)
}

// IsNotUnique checks if an error is ErrNotUnique
func IsNotUnique(err error) bool {
	return errors.Is(err, ErrNotUnique)
}

func preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

func configurationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
