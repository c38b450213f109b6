// Package memscene is an in-memory implementation of the [scene] contract.
//
// It models a plain node hierarchy with components attached to nodes. It is
// what the headless colliderkit CLI edits (scenes are described in YAML, see
// [Load]) and what the test suites build their fixtures from.
//
// Typical usage:
//
//	scn := memscene.New("Person")
//	head := scn.Root().AddChild("head")
//	head.AddRigidbody(false, true)
//	head.AddSphere(0.1, scene.Vec3{0, 0.05, 0})
//
// [scene]: github.com/MrWong99/colliderkit/pkg/scene
package memscene

import (
	"github.com/MrWong99/colliderkit/pkg/scene"
)

// Compile-time assertions.
var (
	_ scene.Scene           = (*Scene)(nil)
	_ scene.Transform       = (*Node)(nil)
	_ scene.SphereCollider  = (*Sphere)(nil)
	_ scene.BoxCollider     = (*Box)(nil)
	_ scene.CapsuleCollider = (*Capsule)(nil)
	_ scene.Collider        = (*Mesh)(nil)
	_ scene.Rigidbody       = (*Rigidbody)(nil)
	_ scene.AutoCollider    = (*AutoCollider)(nil)
)

// DefaultRootName is the name of the root node created by [New]. It is one of
// [scene.DefaultRoots], so identities start below it.
const DefaultRootName = "geometry"

// Scene is an in-memory body. The zero value is not usable; call [New].
type Scene struct {
	archetype string
	root      *Node
}

// New returns an empty scene whose root node is named [DefaultRootName].
func New(archetype string) *Scene {
	return &Scene{
		archetype: archetype,
		root:      &Node{name: DefaultRootName},
	}
}

// Root returns the root node.
func (s *Scene) Root() *Node { return s.root }

// Archetype implements [scene.Scene].
func (s *Scene) Archetype() string { return s.archetype }

// AutoColliders implements [scene.Scene].
func (s *Scene) AutoColliders() []scene.AutoCollider {
	var out []scene.AutoCollider
	s.root.walk(func(c any) {
		if ac, ok := c.(*AutoCollider); ok {
			out = append(out, ac)
		}
	})
	return out
}

// Rigidbodies implements [scene.Scene].
func (s *Scene) Rigidbodies() []scene.Rigidbody {
	var out []scene.Rigidbody
	s.root.walk(func(c any) {
		if rb, ok := c.(*Rigidbody); ok {
			out = append(out, rb)
		}
	})
	return out
}

// Colliders implements [scene.Scene].
func (s *Scene) Colliders() []scene.Collider {
	var out []scene.Collider
	s.root.walk(func(c any) {
		if col, ok := c.(scene.Collider); ok {
			out = append(out, col)
		}
	})
	return out
}

// Find returns the first node named name in depth-first order, or nil.
func (s *Scene) Find(name string) *Node {
	return s.root.find(name)
}

// ─────────────────────────────────────────────────────────────────────────────
// Nodes
// ─────────────────────────────────────────────────────────────────────────────

// Node is a hierarchy node carrying components.
type Node struct {
	name       string
	parent     *Node
	index      int
	children   []*Node
	components []any

	// owner is set on nodes created by an auto-collider.
	owner *AutoCollider
}

// Name implements [scene.Transform].
func (n *Node) Name() string { return n.name }

// SiblingIndex implements [scene.Transform].
func (n *Node) SiblingIndex() int { return n.index }

// Parent implements [scene.Transform]. It returns nil for the root.
func (n *Node) Parent() scene.Transform {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Children returns the child nodes in sibling order.
func (n *Node) Children() []*Node { return n.children }

// Components returns the attached components in attachment order.
func (n *Node) Components() []any { return n.components }

// AddChild appends a child node.
func (n *Node) AddChild(name string) *Node {
	child := &Node{name: name, parent: n, index: len(n.children)}
	n.children = append(n.children, child)
	return child
}

// AddRigidbody attaches a rigidbody.
func (n *Node) AddRigidbody(kinematic, detectCollisions bool) *Rigidbody {
	rb := &Rigidbody{base: n.nextBase(), kinematic: kinematic, detect: detectCollisions}
	n.components = append(n.components, rb)
	return rb
}

// AddSphere attaches a sphere collider.
func (n *Node) AddSphere(radius float32, center scene.Vec3) *Sphere {
	s := &Sphere{base: n.nextBase(), radius: radius, center: center}
	n.components = append(n.components, s)
	return s
}

// AddBox attaches a box collider.
func (n *Node) AddBox(size, center scene.Vec3) *Box {
	b := &Box{base: n.nextBase(), size: size, center: center}
	n.components = append(n.components, b)
	return b
}

// AddCapsule attaches a capsule collider.
func (n *Node) AddCapsule(radius, height float32, dir scene.Axis, center scene.Vec3) *Capsule {
	c := &Capsule{base: n.nextBase(), radius: radius, height: height, dir: dir, center: center}
	n.components = append(n.components, c)
	return c
}

// AddMesh attaches a mesh collider. colliderkit has no model for meshes, so
// this is mainly useful to exercise the unsupported-geometry path.
func (n *Node) AddMesh() *Mesh {
	m := &Mesh{base: n.nextBase()}
	n.components = append(n.components, m)
	return m
}

func (n *Node) nextBase() base {
	return base{node: n, index: len(n.components)}
}

func (n *Node) walk(fn func(c any)) {
	for _, c := range n.components {
		fn(c)
	}
	for _, child := range n.children {
		child.walk(fn)
	}
}

func (n *Node) find(name string) *Node {
	if n.name == name {
		return n
	}
	for _, child := range n.children {
		if found := child.find(name); found != nil {
			return found
		}
	}
	return nil
}

// rigidbody returns the nearest rigidbody on this node or its ancestors.
func (n *Node) rigidbody() *Rigidbody {
	for cur := n; cur != nil; cur = cur.parent {
		for _, c := range cur.components {
			if rb, ok := c.(*Rigidbody); ok {
				return rb
			}
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Components
// ─────────────────────────────────────────────────────────────────────────────

type base struct {
	node  *Node
	index int
}

func (b base) Name() string               { return b.node.name }
func (b base) ComponentIndex() int        { return b.index }
func (b base) Transform() scene.Transform { return b.node }

// Node returns the node the component is attached to.
func (b base) Node() *Node { return b.node }

type collider struct{ base }

// AttachedRigidbody returns the nearest rigidbody up the hierarchy.
func (c collider) AttachedRigidbody() scene.Rigidbody {
	if rb := c.node.rigidbody(); rb != nil {
		return rb
	}
	return nil
}

// Sphere is a sphere collider.
type Sphere struct {
	base
	radius float32
	center scene.Vec3
}

func (s *Sphere) AttachedRigidbody() scene.Rigidbody { return collider{s.base}.AttachedRigidbody() }
func (s *Sphere) Radius() float32                    { return s.radius }
func (s *Sphere) SetRadius(r float32)                { s.radius = r }
func (s *Sphere) Center() scene.Vec3                 { return s.center }
func (s *Sphere) SetCenter(c scene.Vec3)             { s.center = c }

// Box is a box collider.
type Box struct {
	base
	size   scene.Vec3
	center scene.Vec3
}

func (b *Box) AttachedRigidbody() scene.Rigidbody { return collider{b.base}.AttachedRigidbody() }
func (b *Box) Size() scene.Vec3                   { return b.size }
func (b *Box) SetSize(s scene.Vec3)               { b.size = s }
func (b *Box) Center() scene.Vec3                 { return b.center }
func (b *Box) SetCenter(c scene.Vec3)             { b.center = c }

// Capsule is a capsule collider.
type Capsule struct {
	base
	radius float32
	height float32
	dir    scene.Axis
	center scene.Vec3
}

func (c *Capsule) AttachedRigidbody() scene.Rigidbody { return collider{c.base}.AttachedRigidbody() }
func (c *Capsule) Radius() float32                    { return c.radius }
func (c *Capsule) SetRadius(r float32)                { c.radius = r }
func (c *Capsule) Height() float32                    { return c.height }
func (c *Capsule) SetHeight(h float32)                { c.height = h }
func (c *Capsule) Center() scene.Vec3                 { return c.center }
func (c *Capsule) SetCenter(v scene.Vec3)             { c.center = v }
func (c *Capsule) Direction() scene.Axis              { return c.dir }

// Mesh is a collider shape colliderkit does not edit.
type Mesh struct {
	base
}

func (m *Mesh) AttachedRigidbody() scene.Rigidbody { return collider{m.base}.AttachedRigidbody() }

// Rigidbody is a physics body.
type Rigidbody struct {
	base
	kinematic bool
	detect    bool
}

func (r *Rigidbody) IsKinematic() bool          { return r.kinematic }
func (r *Rigidbody) DetectCollisions() bool     { return r.detect }
func (r *Rigidbody) SetDetectCollisions(v bool) { r.detect = v }
