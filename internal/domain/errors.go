package domain

import "errors"

// Engine precondition violations. These are programmer or caller errors,
// never user-facing runtime failures; the engine has no I/O of its own.
var (
	ErrInvalidOutcome = errors.New("invalid outcome")
	ErrUnknownTier    = errors.New("unknown tier")
	ErrSkillNotFound  = errors.New("skill not found")
)
