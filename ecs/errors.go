package ecs

import "errors"

// Sentinel errors for the kinds enumerated in the runtime's error design.
// Callers compare with errors.Is; operations wrap the sentinel with the
// offending id or name using fmt.Errorf's %w, the way lazyecs's ecs.go
// wraps its own sentinel entity/component errors.
var (
	ErrInvalidId              = errors.New("ecs: invalid id")
	ErrUnknownEntity          = errors.New("ecs: unknown entity")
	ErrUnknownComponent       = errors.New("ecs: unknown component")
	ErrIllegalWildcardWrite   = errors.New("ecs: cannot set a wildcard relation")
	ErrOutOfComponentIds      = errors.New("ecs: component id space exhausted")
	ErrDuplicateComponentName = errors.New("ecs: duplicate component name")
	ErrQueryDisposed          = errors.New("ecs: query disposed")
	ErrCommandLoopExceeded    = errors.New("ecs: command buffer did not converge")
)
