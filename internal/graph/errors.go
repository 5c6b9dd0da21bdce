package graph

import (
	"errors"
	"fmt"

	"stemma/internal/domain"
)

var (
	// ErrNodeNotFound is matched by every NotFoundError
	ErrNodeNotFound = errors.New("node not found")
	// ErrDuplicateNode is returned when inserting a node whose id is taken
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrInvalidSize is returned for nodes with a non-positive dimension
	ErrInvalidSize = errors.New("node size must be positive")
)

// NotFoundError reports a lookup of an id that is not in the graph
type NotFoundError struct {
	ID domain.NodeID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("node %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNodeNotFound
}

// IsNotFound reports whether err is, or wraps, a missing node error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}
