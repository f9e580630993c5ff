package life

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/life-engine/pkg/talent"
)

var (
	ErrInvalidAllocation = errors.New("invalid attribute allocation")
	ErrInvalidSelection  = errors.New("invalid talent selection")
	ErrNotReady          = errors.New("life is not ready to run")
	ErrConsumed          = errors.New("life has already run")
	ErrNotTerminated     = errors.New("life has not terminated")

	// ErrConflictingTalents is returned (wrapped in a *talent.ConflictError)
	// when a selection holds a mutually exclusive pair.
	ErrConflictingTalents = talent.ErrConflictingTalents
)

// AllocationError describes a rejected attribute allocation.
type AllocationError struct {
	Values []int
	Total  int
	Reason string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("invalid allocation %v for %d points: %s", e.Values, e.Total, e.Reason)
}

func (e *AllocationError) Is(target error) bool {
	return target == ErrInvalidAllocation
}
