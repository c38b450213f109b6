// Package memrender provides an in-memory [render.Factory] that records the
// state of every preview it creates.
package memrender

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/MrWong99/colliderkit/pkg/render"
	"github.com/MrWong99/colliderkit/pkg/scene"
)

// Compile-time interface assertions.
var (
	_ render.Factory = (*Factory)(nil)
	_ render.Preview = (*Preview)(nil)
)

// Preview is a recorded preview. Fields reflect the last value set.
type Preview struct {
	Shape  render.Shape
	Parent scene.Transform

	Scale    mgl32.Vec3
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Color    render.Color
	Opacity  float32
	XRay     bool

	CollidersDisabled bool
	Destroyed         bool

	// Layouts counts SetLocalScale calls.
	Layouts int
}

func (p *Preview) SetLocalScale(s mgl32.Vec3) {
	p.Scale = s
	p.Layouts++
}
func (p *Preview) SetLocalPosition(v mgl32.Vec3) { p.Position = v }
func (p *Preview) SetLocalRotation(q mgl32.Quat) { p.Rotation = q }
func (p *Preview) SetColor(c render.Color)       { p.Color = c }
func (p *Preview) SetOpacity(a float32)          { p.Opacity = a }
func (p *Preview) SetXRay(enabled bool)          { p.XRay = enabled }
func (p *Preview) DisableColliders()             { p.CollidersDisabled = true }
func (p *Preview) Destroy()                      { p.Destroyed = true }

// Factory is an in-memory [render.Factory]. It is safe for concurrent use;
// the returned previews are not.
type Factory struct {
	mu       sync.Mutex
	previews []*Preview
}

// New returns an empty factory.
func New() *Factory { return &Factory{} }

// CreatePrimitive implements [render.Factory].
func (f *Factory) CreatePrimitive(shape render.Shape, parent scene.Transform) render.Preview {
	p := &Preview{Shape: shape, Parent: parent, Rotation: mgl32.QuatIdent(), Opacity: 1}
	f.mu.Lock()
	f.previews = append(f.previews, p)
	f.mu.Unlock()
	return p
}

// Previews returns every preview ever created.
func (f *Factory) Previews() []*Preview {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Preview(nil), f.previews...)
}

// Live returns the previews not yet destroyed.
func (f *Factory) Live() []*Preview {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Preview
	for _, p := range f.previews {
		if !p.Destroyed {
			out = append(out, p)
		}
	}
	return out
}

// For returns the newest live preview parented to t, or nil.
func (f *Factory) For(t scene.Transform) *Preview {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.previews) - 1; i >= 0; i-- {
		if p := f.previews[i]; !p.Destroyed && p.Parent == t {
			return p
		}
	}
	return nil
}
