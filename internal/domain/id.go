package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeID is the opaque, globally unique identity of a node
type NodeID uuid.UUID

// NilNodeID is the zero identity, used where no node is referenced
var NilNodeID NodeID

// NewNodeID returns a fresh random identity
func NewNodeID() NodeID {
	return NodeID(uuid.New())
}

// ParseNodeID parses the canonical textual form of an identity. The empty
// string parses to NilNodeID.
func ParseNodeID(s string) (NodeID, error) {
	if s == "" {
		return NilNodeID, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return NilNodeID, fmt.Errorf("invalid node id %q: %w", s, err)
	}
	return NodeID(u), nil
}

// MustParseNodeID is like ParseNodeID but panics on malformed input
func MustParseNodeID(s string) NodeID {
	id, err := ParseNodeID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether id references no node
func (id NodeID) IsZero() bool {
	return id == NilNodeID
}

func (id NodeID) String() string {
	if id.IsZero() {
		return ""
	}
	return uuid.UUID(id).String()
}

// MarshalText implements encoding.TextMarshaler
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *NodeID) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
