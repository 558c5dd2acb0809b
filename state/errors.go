package state

import (
	"errors"
	"fmt"
)

var (
	ErrAllocatorExhausted = errors.New("allocator exhausted identifier space")
	ErrUnknownNamespace   = errors.New("unknown namespace")
	ErrInvalidPrefix      = errors.New("invalid prefix")
	ErrDriverExists       = errors.New("driver already registered")
)

// RenderWriteError is returned when the rendered configuration could not be persisted
type RenderWriteError struct {
	Path string
	Err  error
}

func (e *RenderWriteError) Error() string {
	return fmt.Sprintf("failed to write rendered config %s: %v", e.Path, e.Err)
}

func (e *RenderWriteError) Unwrap() error {
	return e.Err
}
