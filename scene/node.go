package scene

import (
	"image/color"
	"slices"
	"strings"
)

// Shape is the drawable part of a node. Nodes without a shape are pure groups.
type Shape struct {
	Width, Height float32
	Color         color.RGBA
}

// Node is an element of the scene graph. A node has at most one parent.
// Nodes are not safe for concurrent mutation; attach and detach from the
// goroutine that owns the graph.
type Node struct {
	Name  string
	Shape *Shape

	parent      *Node
	children    []*Node
	translation Vec3
	rotation    Quat
}

// NewNode creates a detached node with identity rotation.
func NewNode(name string) *Node {
	return &Node{Name: name, rotation: IdentityQuat()}
}

// Parent returns the node this one is attached to, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list in attach order.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// ChildCount returns the number of attached children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// AttachChild attaches child to n, detaching it from its previous parent first.
func (n *Node) AttachChild(child *Node) {
	if child == nil || child.parent == n {
		return
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			panic("scene: cannot attach a node to its own subtree")
		}
	}
	child.RemoveFromParent()
	child.parent = n
	n.children = append(n.children, child)
}

// DetachChild removes child from n. Returns false if child isn't attached to n.
func (n *Node) DetachChild(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	return true
}

// RemoveFromParent detaches n from its parent. Safe to call on detached nodes.
func (n *Node) RemoveFromParent() bool {
	if n.parent == nil {
		return false
	}
	return n.parent.DetachChild(n)
}

// LocalTranslation returns the node location relative to its parent.
func (n *Node) LocalTranslation() Vec3 {
	return n.translation
}

func (n *Node) SetLocalTranslation(v Vec3) {
	n.translation = v
}

// LocalRotation returns the node rotation relative to its parent.
func (n *Node) LocalRotation() Quat {
	return n.rotation
}

// SetLocalRotation sets the rotation; the zero Quat is stored as identity.
func (n *Node) SetLocalRotation(q Quat) {
	if q.IsZero() {
		q = IdentityQuat()
	}
	n.rotation = q
}

// WorldTranslation sums the translations from the root down to n.
func (n *Node) WorldTranslation() Vec3 {
	v := n.translation
	for p := n.parent; p != nil; p = p.parent {
		v = v.Add(p.translation)
	}
	return v
}

// Clone deep copies n and its subtree. The copy is detached.
func (n *Node) Clone() *Node {
	c := &Node{
		Name:        n.Name,
		translation: n.translation,
		rotation:    n.rotation,
	}
	if n.Shape != nil {
		shape := *n.Shape
		c.Shape = &shape
	}
	for _, child := range n.children {
		cc := child.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// Walk visits n and its descendants depth first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Path returns the slash separated names from the root to n.
func (n *Node) Path() string {
	var names []string
	for p := n; p != nil; p = p.parent {
		names = append(names, p.Name)
	}
	slices.Reverse(names)
	return strings.Join(names, "/")
}
