package memscene

import (
	"github.com/MrWong99/colliderkit/pkg/scene"
)

// AutoSpec describes an auto-collider attached with [Node.AddAutoCollider].
type AutoSpec struct {
	UseAutoLength bool
	UseAutoRadius bool

	// BaseLength and BaseRadius stand in for the measured body shape the
	// auto length and auto radius are derived from.
	BaseLength float32
	BaseRadius float32

	Trigger scene.ResizeTrigger
	Params  scene.AutoParams
}

// AutoCollider derives a joint capsule and a slightly smaller hard capsule
// from its parameters. Both capsules live on child nodes it creates; the
// joint node also carries the joint rigidbody and a kinematic follower body.
type AutoCollider struct {
	base
	spec AutoSpec

	joint       *Capsule
	hard        *Capsule
	jointRB     *Rigidbody
	kinematicRB *Rigidbody

	resizes int
}

// AddAutoCollider attaches an auto-collider and its owned primitives. The
// derived geometry is computed once regardless of the trigger.
func (n *Node) AddAutoCollider(spec AutoSpec) *AutoCollider {
	ac := &AutoCollider{base: n.nextBase(), spec: spec}
	n.components = append(n.components, ac)

	jointNode := n.AddChild(n.name + "Joint")
	jointNode.owner = ac
	ac.jointRB = jointNode.AddRigidbody(false, spec.Params.CollisionEnabled)
	ac.joint = jointNode.AddCapsule(0, 0, scene.AxisY, scene.Vec3{})

	hardNode := jointNode.AddChild(n.name + "Hard")
	hardNode.owner = ac
	ac.hard = hardNode.AddCapsule(0, 0, scene.AxisY, scene.Vec3{})

	kinNode := n.AddChild(n.name + "Kinematic")
	kinNode.owner = ac
	ac.kinematicRB = kinNode.AddRigidbody(true, false)

	ac.recompute()
	return ac
}

func (a *AutoCollider) UseAutoLength() bool                    { return a.spec.UseAutoLength }
func (a *AutoCollider) UseAutoRadius() bool                    { return a.spec.UseAutoRadius }
func (a *AutoCollider) Params() scene.AutoParams               { return a.spec.Params }
func (a *AutoCollider) SetParams(p scene.AutoParams)           { a.spec.Params = p }
func (a *AutoCollider) ResizeTrigger() scene.ResizeTrigger     { return a.spec.Trigger }
func (a *AutoCollider) SetResizeTrigger(t scene.ResizeTrigger) { a.spec.Trigger = t }

// Resize recomputes the derived geometry when the trigger is
// [scene.ResizeAlways] and does nothing otherwise.
func (a *AutoCollider) Resize() {
	if a.spec.Trigger != scene.ResizeAlways {
		return
	}
	a.recompute()
}

// MorphChanged simulates a change of the underlying body shape. Geometry is
// recomputed unless the trigger is [scene.ResizeNever].
func (a *AutoCollider) MorphChanged(baseLength, baseRadius float32) {
	a.spec.BaseLength = baseLength
	a.spec.BaseRadius = baseRadius
	if a.spec.Trigger == scene.ResizeNever {
		return
	}
	a.recompute()
}

// Resizes reports how often the derived geometry has been recomputed.
func (a *AutoCollider) Resizes() int { return a.resizes }

// Spec returns the current description, suitable for [Node.AddAutoCollider].
func (a *AutoCollider) Spec() AutoSpec { return a.spec }

func (a *AutoCollider) HardCollider() scene.Collider        { return a.hard }
func (a *AutoCollider) JointCollider() scene.Collider       { return a.joint }
func (a *AutoCollider) JointRigidbody() scene.Rigidbody     { return a.jointRB }
func (a *AutoCollider) KinematicRigidbody() scene.Rigidbody { return a.kinematicRB }

func (a *AutoCollider) recompute() {
	p := a.spec.Params

	length := p.ColliderLength
	if a.spec.UseAutoLength {
		length = a.spec.BaseLength + p.AutoLengthBuffer
	}

	var jointR, hardR float32
	if a.spec.UseAutoRadius {
		jointR = a.spec.BaseRadius*p.AutoRadiusMultiplier + p.AutoRadiusBuffer
		hardR = a.spec.BaseRadius * p.AutoRadiusMultiplier
	} else {
		jointR = p.ColliderRadius
		hardR = p.ColliderRadius - p.HardColliderBuffer
	}
	length = max(length, 0)
	jointR = max(jointR, 0)
	hardR = max(hardR, 0)

	center := scene.Vec3{p.RightOffset, p.UpOffset, p.LookOffset}

	a.joint.radius = jointR
	a.joint.height = length + 2*jointR
	a.joint.center = center

	a.hard.radius = hardR
	a.hard.height = length + 2*hardR
	a.hard.center = center

	a.jointRB.detect = p.CollisionEnabled
	a.resizes++
}
