// Package render defines how colliderkit visualises collision primitives.
//
// A preview is a plain primitive mesh parented to the collider's node, laid
// out to match the collider geometry. Previews never collide; the factory
// must disable any physics the primitive comes with when
// [Preview.DisableColliders] is called.
package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/MrWong99/colliderkit/pkg/scene"
)

// Shape is the primitive mesh of a preview.
type Shape int

const (
	ShapeSphere Shape = iota
	ShapeCube
	ShapeCapsule
)

// String returns the lower-case shape name.
func (s Shape) String() string {
	switch s {
	case ShapeSphere:
		return "sphere"
	case ShapeCube:
		return "cube"
	case ShapeCapsule:
		return "capsule"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// Color is a linear RGBA colour.
type Color struct {
	R, G, B, A float32
}

// Preview is a live primitive in the host scene.
type Preview interface {
	SetLocalScale(s mgl32.Vec3)
	SetLocalPosition(p mgl32.Vec3)
	SetLocalRotation(q mgl32.Quat)

	SetColor(c Color)
	SetOpacity(a float32)

	// SetXRay renders the preview on top of the body when enabled.
	SetXRay(enabled bool)

	DisableColliders()

	// Destroy removes the preview. Destroying twice is a no-op.
	Destroy()
}

// Factory creates previews.
type Factory interface {
	CreatePrimitive(shape Shape, parent scene.Transform) Preview
}
