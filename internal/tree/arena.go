package tree

import (
	"fmt"
	"sync"
)

// NodeID indexes a node in an Arena. Holders keep the id, never the payload, so
// a promotion is visible to all of them.
type NodeID int

// Payload is the tagged variant stored in an arena slot.
type Payload interface {
	Shape() string
}

// Arena stores run-wide nodes addressed by NodeID.
type Arena struct {
	mu    sync.RWMutex
	nodes []Payload
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Add stores p and returns its id.
func (a *Arena) Add(p Payload) NodeID {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nodes = append(a.nodes, p)
	return NodeID(len(a.nodes) - 1)
}

// Get returns the current payload at id.
func (a *Arena) Get(id NodeID) Payload {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

// Promote overwrites the payload at id in place.
func (a *Arena) Promote(id NodeID, p Payload) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if int(id) < 0 || int(id) >= len(a.nodes) {
		return fmt.Errorf("arena: node %d out of range", id)
	}
	a.nodes[id] = p
	return nil
}

// Len returns the number of nodes.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

func (*Nest) Shape() string { return "nest" }

// Branch is a nest whose top-level children live in the arena as their own
// nodes, so each child can be promoted independently.
type Branch struct {
	Nest     *Nest
	Children []NodeID
}

func (*Branch) Shape() string { return "branch" }

// Plant stores n's children as nodes and then n itself as a Branch over them.
func (a *Arena) Plant(n *Nest) NodeID {
	b := &Branch{Nest: n, Children: make([]NodeID, 0, len(n.Nests))}
	for _, child := range n.Nests {
		b.Children = append(b.Children, a.Add(child))
	}
	return a.Add(b)
}
