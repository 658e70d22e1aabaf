package usecase

import (
	"errors"
	"fmt"
)

// ErrPersistence indicates an infrastructure/repository failure inside a use case.
var ErrPersistence = errors.New("messaging use case persistence error")

// The three failure stages of recording a message event. All wrap
// ErrPersistence so callers that only care about recorded/not-recorded can
// test a single sentinel.
var (
	ErrResolution  = fmt.Errorf("%w: resolution", ErrPersistence)
	ErrWrite       = fmt.Errorf("%w: message write", ErrPersistence)
	ErrTransaction = fmt.Errorf("%w: transaction", ErrPersistence)
)
