// Package guard provides ConstructorGuard, a marker embedded in value objects and
// commands so that zero values created without their constructor fail validation.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes a nil error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the enclosing value was built by its constructor.
// The zero value is "not constructed".
//
// Example:
//
//	type ManualStatusCommand struct {
//	    target string
//	    guard  guard.ConstructorGuard
//	}
//
//	func (c ManualStatusCommand) Validate() error {
//	    return c.guard.Validate(ErrManualStatusCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a constructed guard and validationError otherwise.
// A nil validationError is replaced by ErrDefaultConstructorGuard.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
