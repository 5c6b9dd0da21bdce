package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"stemma/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull stores empty strings as NULL
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// idToNull stores the zero node id as NULL
func idToNull(id domain.NodeID) sql.NullString {
	return stringToNull(id.String())
}

// nullToID parses a nullable id column
func nullToID(ns sql.NullString) (domain.NodeID, error) {
	return domain.ParseNodeID(nullToString(ns))
}

// ============================================================================
// Revision Encoding Helpers
// ============================================================================

// compress encodes a layout as zstd-compressed JSON and returns the
// uncompressed size alongside
func (r *Repository) compress(layout *domain.Layout) ([]byte, int, error) {
	raw, err := json.Marshal(layout)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal layout: %w", err)
	}
	return r.enc.EncodeAll(raw, nil), len(raw), nil
}

// decompress reverses compress
func (r *Repository) decompress(data []byte) (*domain.Layout, error) {
	raw, err := r.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress revision: %w", err)
	}
	layout := domain.NewLayout()
	if err := json.Unmarshal(raw, layout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal revision: %w", err)
	}
	return layout, nil
}
