// Package scene defines the contract colliderkit expects from the host scene
// graph and physics engine.
//
// colliderkit never simulates physics. It only reads and writes the editable
// fields of collision primitives that the host exposes through these
// interfaces. A host adapter implements them on top of its own engine; the
// [memscene] package provides an in-memory implementation used by the
// headless CLI and by tests.
//
// Implementations are not required to be safe for concurrent use: colliderkit
// touches the scene from a single goroutine only.
//
// [memscene]: github.com/MrWong99/colliderkit/pkg/scene/memscene
package scene

import "github.com/go-gl/mathgl/mgl32"

// Vec3 is the vector type used for centers and sizes.
type Vec3 = mgl32.Vec3

// Transform is a node in the host's hierarchy.
type Transform interface {
	// Name is the node name.
	Name() string

	// SiblingIndex is the position of this node among its parent's children.
	SiblingIndex() int

	// Parent returns the parent node, or nil at the hierarchy root.
	Parent() Transform
}

// Component is anything attached to a [Transform]: colliders, rigidbodies,
// auto-colliders.
type Component interface {
	// Name is the name of the owning node.
	Name() string

	// ComponentIndex is the position of this component among all components
	// attached to the same node.
	ComponentIndex() int

	// Transform returns the node the component is attached to.
	Transform() Transform
}

// Axis selects the main axis of a capsule.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Collider is a collision primitive. Concrete primitives additionally
// implement one of [SphereCollider], [BoxCollider] or [CapsuleCollider];
// other shapes (mesh, terrain, ...) are reported as unsupported.
type Collider interface {
	Component

	// AttachedRigidbody returns the rigidbody driving this collider, or nil.
	AttachedRigidbody() Rigidbody
}

// SphereCollider is a sphere primitive.
type SphereCollider interface {
	Collider
	Radius() float32
	SetRadius(r float32)
	Center() Vec3
	SetCenter(c Vec3)
}

// BoxCollider is an axis-aligned box primitive in local space.
type BoxCollider interface {
	Collider
	Size() Vec3
	SetSize(s Vec3)
	Center() Vec3
	SetCenter(c Vec3)
}

// CapsuleCollider is a capsule primitive.
type CapsuleCollider interface {
	Collider
	Radius() float32
	SetRadius(r float32)
	Height() float32
	SetHeight(h float32)
	Center() Vec3
	SetCenter(c Vec3)
	Direction() Axis
}

// Rigidbody is a physics body that owns zero or more colliders.
type Rigidbody interface {
	Component

	// IsKinematic reports whether the body is driven by animation rather than
	// physics. Kinematic bodies are never editable.
	IsKinematic() bool

	DetectCollisions() bool
	SetDetectCollisions(enabled bool)
}

// ResizeTrigger controls when an [AutoCollider] recomputes its derived
// geometry.
type ResizeTrigger int

const (
	// ResizeNever only recomputes on explicit host request.
	ResizeNever ResizeTrigger = iota

	// ResizeOnMorphChange recomputes when the underlying body shape changes.
	ResizeOnMorphChange

	// ResizeAlways recomputes on every [AutoCollider.Resize] call.
	ResizeAlways
)

// String returns a lower-case name for the trigger.
func (t ResizeTrigger) String() string {
	switch t {
	case ResizeNever:
		return "never"
	case ResizeOnMorphChange:
		return "morph_change"
	case ResizeAlways:
		return "always"
	}
	return "unknown"
}

// AutoParams is the parameter set an [AutoCollider] derives its hard and
// joint collider geometry from.
type AutoParams struct {
	CollisionEnabled bool

	// ColliderLength is used when auto length is off.
	ColliderLength float32

	// ColliderRadius and HardColliderBuffer are used when auto radius is off.
	ColliderRadius     float32
	HardColliderBuffer float32

	LookOffset  float32
	UpOffset    float32
	RightOffset float32

	// AutoLengthBuffer is used when auto length is on.
	AutoLengthBuffer float32

	// AutoRadiusBuffer and AutoRadiusMultiplier are used when auto radius is on.
	AutoRadiusBuffer     float32
	AutoRadiusMultiplier float32
}

// AutoCollider is a composite driving a hard collider and a joint collider
// from a small parameter set.
type AutoCollider interface {
	Component

	UseAutoLength() bool
	UseAutoRadius() bool

	Params() AutoParams
	SetParams(p AutoParams)

	ResizeTrigger() ResizeTrigger
	SetResizeTrigger(t ResizeTrigger)

	// Resize asks the host to recompute derived geometry. Hosts only honour
	// the request when the current trigger allows it.
	Resize()

	// HardCollider and JointCollider return the owned colliders, or nil.
	HardCollider() Collider
	JointCollider() Collider

	// JointRigidbody and KinematicRigidbody return the owned bodies, or nil.
	JointRigidbody() Rigidbody
	KinematicRigidbody() Rigidbody
}

// Scene enumerates the primitives of one articulated body.
type Scene interface {
	// Archetype names the body kind (e.g. "Person"). It selects the group
	// list used to classify rigidbodies.
	Archetype() string

	AutoColliders() []AutoCollider

	// Rigidbodies returns every rigidbody, including inactive ones.
	Rigidbodies() []Rigidbody

	// Colliders returns every collider, including inactive ones.
	Colliders() []Collider
}
