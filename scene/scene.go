// Package scene implements a scene graph of renderable nodes drawn through
// a graphics Context. Nodes live in a flat arena owned by a Scene and refer
// to their children by NodeID.
//
// A node's variables are validated and committed by Update. Only the state
// changed since the previous frame is uploaded when the node is drawn.
package scene

import (
	"errors"
	"fmt"

	"github.com/soypat/glview/camera"
	"github.com/soypat/glview/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// NodeID indexes a node within its Scene.
type NodeID int

// Root is the parent of top level nodes.
const Root NodeID = -1

type entry struct {
	node     *Node
	parent   NodeID
	children []NodeID
}

// Scene owns a tree of nodes and the Context they are drawn with.
// The zero value is an empty scene ready to use.
type Scene struct {
	entries []entry
	roots   []NodeID
	ctx     Context
	width   int
	height  int
}

// Add appends n to the scene as the last child of parent, or as a top level
// node if parent is Root. If the scene has a Context the node is bound to it.
func (s *Scene) Add(parent NodeID, n *Node) (NodeID, error) {
	if n == nil {
		return Root, errors.New("scene: nil node")
	}
	if n.added {
		return Root, ErrAdded
	}
	if parent != Root && !s.valid(parent) {
		return Root, fmt.Errorf("%w: parent %d", ErrRange, parent)
	}
	if s.ctx != nil {
		if err := n.bind(s.ctx); err != nil {
			return Root, err
		}
	}
	if s.width > 0 && s.height > 0 {
		n.SetSize(s.width, s.height)
	}
	id := NodeID(len(s.entries))
	s.entries = append(s.entries, entry{node: n, parent: parent})
	if parent == Root {
		s.roots = append(s.roots, id)
	} else {
		s.entries[parent].children = append(s.entries[parent].children, id)
	}
	n.added = true
	return id, nil
}

func (s *Scene) valid(id NodeID) bool { return id >= 0 && int(id) < len(s.entries) }

// Len returns the number of nodes in the scene.
func (s *Scene) Len() int { return len(s.entries) }

// Node returns the node with the given id or nil if there is none.
func (s *Scene) Node(id NodeID) *Node {
	if !s.valid(id) {
		return nil
	}
	return s.entries[id].node
}

// Parent returns the parent of a node, Root for top level nodes.
func (s *Scene) Parent(id NodeID) NodeID {
	if !s.valid(id) {
		return Root
	}
	return s.entries[id].parent
}

// Children returns the children of a node in insertion order. Children(Root)
// returns the top level nodes. The returned slice must not be modified.
func (s *Scene) Children(id NodeID) []NodeID {
	if id == Root {
		return s.roots
	}
	if !s.valid(id) {
		return nil
	}
	return s.entries[id].children
}

// Context returns the Context the scene is bound to, if any.
func (s *Scene) Context() Context { return s.ctx }

// SetContext binds every node to ctx, creating their GPU resources.
// Nodes already bound are left as they are. A scene is bound to one
// Context for its lifetime; call Release before binding another.
func (s *Scene) SetContext(ctx Context) error {
	if ctx == nil {
		return errors.New("scene: nil context")
	}
	if s.ctx != nil && s.ctx != ctx {
		return errors.New("scene: already bound to another context")
	}
	s.ctx = ctx
	for i := range s.entries {
		if err := s.entries[i].node.bind(ctx); err != nil {
			return fmt.Errorf("binding node %d: %w", i, err)
		}
	}
	return nil
}

// SetSize informs every node of the viewport size in pixels.
func (s *Scene) SetSize(width, height int) {
	s.width, s.height = width, height
	for i := range s.entries {
		s.entries[i].node.SetSize(width, height)
	}
}

// Draw draws all top level nodes in insertion order, each followed by its
// descendants depth first.
func (s *Scene) Draw(cam camera.Camera) error {
	for _, id := range s.roots {
		if err := s.DrawNode(id, cam); err != nil {
			return err
		}
	}
	return nil
}

// DrawNode draws a node followed by its descendants depth first in
// insertion order. The first error aborts drawing.
func (s *Scene) DrawNode(id NodeID, cam camera.Camera) error {
	if !s.valid(id) {
		return fmt.Errorf("%w: node %d", ErrRange, id)
	}
	e := &s.entries[id]
	if err := e.node.draw(cam); err != nil {
		return fmt.Errorf("drawing node %d (%s): %w", id, e.node.kind, err)
	}
	for _, child := range e.children {
		if err := s.DrawNode(child, cam); err != nil {
			return err
		}
	}
	return nil
}

// Release deletes the GPU resources of every node and unbinds the scene.
// Nodes keep their variables and may be bound again.
func (s *Scene) Release() {
	for i := range s.entries {
		s.entries[i].node.release()
	}
	s.ctx = nil
}

// Bounds returns the bounding box of all node points after applying each
// node's model transform. ok is false if the scene has no points.
// Parent transforms are not composed: each node is drawn with its own model.
func (s *Scene) Bounds() (min, max r3.Vec, ok bool) {
	var box d3.Box
	for i := range s.entries {
		n := s.entries[i].node
		model := n.Model()
		for _, p := range n.v.positions {
			q := model.Apply(d3.FromMS3(p))
			if !ok {
				box = d3.Box{Min: q, Max: q}
				ok = true
				continue
			}
			box = box.Include(q)
		}
	}
	return box.Min, box.Max, ok
}
