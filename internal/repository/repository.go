package repository

import (
	"context"
	"errors"
	"time"

	"stemma/internal/domain"
)

// ErrLayoutNotFound is returned when a named layout or revision does not exist
var ErrLayoutNotFound = errors.New("layout not found")

// LayoutInfo summarizes a stored layout
type LayoutInfo struct {
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Revision is one archived version of a layout
type Revision struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// LayoutStore defines the interface for canvas layout persistence
type LayoutStore interface {
	// Read operations
	LoadLayout(ctx context.Context, name string) (*domain.Layout, error)
	ListLayouts(ctx context.Context) ([]LayoutInfo, error)

	// Write operations
	SaveLayout(ctx context.Context, name string, layout *domain.Layout) error
	DeleteLayout(ctx context.Context, name string) error

	// History
	Revisions(ctx context.Context, name string) ([]Revision, error)
	LoadRevision(ctx context.Context, id int64) (*domain.Layout, error)

	// Close releases resources
	Close() error
}
