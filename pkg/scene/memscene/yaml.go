package memscene

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/colliderkit/pkg/scene"
)

// File is the YAML representation of a scene.
//
//	archetype: Person
//	root:
//	  name: Genesis2Female
//	  children:
//	    - name: head
//	      rigidbody: {detect_collisions: true}
//	      colliders:
//	        - sphere: {radius: 0.1, center: [0, 0.05, 0]}
type File struct {
	Archetype string   `yaml:"archetype"`
	Root      NodeSpec `yaml:"root"`
}

// NodeSpec describes one node. Components are attached in the order
// rigidbody, colliders, auto-colliders; children follow.
type NodeSpec struct {
	Name          string             `yaml:"name"`
	Rigidbody     *RigidbodySpec     `yaml:"rigidbody,omitempty"`
	Colliders     []ColliderSpec     `yaml:"colliders,omitempty"`
	AutoColliders []AutoColliderSpec `yaml:"auto_colliders,omitempty"`
	Children      []NodeSpec         `yaml:"children,omitempty"`
}

// RigidbodySpec describes a rigidbody.
type RigidbodySpec struct {
	Kinematic        bool `yaml:"kinematic,omitempty"`
	DetectCollisions bool `yaml:"detect_collisions"`
}

// ColliderSpec describes a collider. Exactly one field must be set.
type ColliderSpec struct {
	Sphere  *SphereSpec  `yaml:"sphere,omitempty"`
	Box     *BoxSpec     `yaml:"box,omitempty"`
	Capsule *CapsuleSpec `yaml:"capsule,omitempty"`
	Mesh    *struct{}    `yaml:"mesh,omitempty"`
}

// SphereSpec describes a sphere collider.
type SphereSpec struct {
	Radius float32   `yaml:"radius"`
	Center []float32 `yaml:"center,flow,omitempty"`
}

// BoxSpec describes a box collider.
type BoxSpec struct {
	Size   []float32 `yaml:"size,flow"`
	Center []float32 `yaml:"center,flow,omitempty"`
}

// CapsuleSpec describes a capsule collider. Direction is one of x, y, z.
type CapsuleSpec struct {
	Radius    float32   `yaml:"radius"`
	Height    float32   `yaml:"height"`
	Direction string    `yaml:"direction,omitempty"`
	Center    []float32 `yaml:"center,flow,omitempty"`
}

// AutoColliderSpec describes an auto-collider.
type AutoColliderSpec struct {
	UseAutoLength bool       `yaml:"use_auto_length,omitempty"`
	UseAutoRadius bool       `yaml:"use_auto_radius,omitempty"`
	BaseLength    float32    `yaml:"base_length,omitempty"`
	BaseRadius    float32    `yaml:"base_radius,omitempty"`
	ResizeTrigger string     `yaml:"resize_trigger,omitempty"`
	Params        ParamsSpec `yaml:"params"`
}

// ParamsSpec mirrors [scene.AutoParams].
type ParamsSpec struct {
	CollisionEnabled     bool    `yaml:"collision_enabled"`
	ColliderLength       float32 `yaml:"collider_length,omitempty"`
	ColliderRadius       float32 `yaml:"collider_radius,omitempty"`
	HardColliderBuffer   float32 `yaml:"hard_collider_buffer,omitempty"`
	LookOffset           float32 `yaml:"look_offset,omitempty"`
	UpOffset             float32 `yaml:"up_offset,omitempty"`
	RightOffset          float32 `yaml:"right_offset,omitempty"`
	AutoLengthBuffer     float32 `yaml:"auto_length_buffer,omitempty"`
	AutoRadiusBuffer     float32 `yaml:"auto_radius_buffer,omitempty"`
	AutoRadiusMultiplier float32 `yaml:"auto_radius_multiplier,omitempty"`
}

// LoadFile reads a YAML scene description from path.
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("memscene: open %q: %w", path, err)
	}
	defer f.Close()

	scn, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("memscene: load %q: %w", path, err)
	}
	return scn, nil
}

// Load decodes a YAML scene description. Unknown keys are rejected.
func Load(r io.Reader) (*Scene, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("memscene: empty scene description")
		}
		return nil, fmt.Errorf("memscene: decode: %w", err)
	}
	return Build(file)
}

// Build instantiates a scene from its description.
func Build(file File) (*Scene, error) {
	rootName := file.Root.Name
	if rootName == "" {
		rootName = DefaultRootName
	}
	scn := &Scene{archetype: file.Archetype, root: &Node{name: rootName}}
	if err := populate(scn.root, file.Root); err != nil {
		return nil, err
	}
	return scn, nil
}

func populate(n *Node, spec NodeSpec) error {
	if spec.Rigidbody != nil {
		n.AddRigidbody(spec.Rigidbody.Kinematic, spec.Rigidbody.DetectCollisions)
	}
	for i, cs := range spec.Colliders {
		if err := addCollider(n, cs); err != nil {
			return fmt.Errorf("memscene: node %q collider %d: %w", n.name, i, err)
		}
	}
	for i, as := range spec.AutoColliders {
		trigger, err := parseTrigger(as.ResizeTrigger)
		if err != nil {
			return fmt.Errorf("memscene: node %q auto collider %d: %w", n.name, i, err)
		}
		n.AddAutoCollider(AutoSpec{
			UseAutoLength: as.UseAutoLength,
			UseAutoRadius: as.UseAutoRadius,
			BaseLength:    as.BaseLength,
			BaseRadius:    as.BaseRadius,
			Trigger:       trigger,
			Params:        scene.AutoParams(as.Params),
		})
	}
	for _, cs := range spec.Children {
		if cs.Name == "" {
			return fmt.Errorf("memscene: node %q: child without name", n.name)
		}
		if err := populate(n.AddChild(cs.Name), cs); err != nil {
			return err
		}
	}
	return nil
}

func addCollider(n *Node, cs ColliderSpec) error {
	set := 0
	for _, ok := range []bool{cs.Sphere != nil, cs.Box != nil, cs.Capsule != nil, cs.Mesh != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one shape must be set, got %d", set)
	}

	switch {
	case cs.Sphere != nil:
		center, err := vec(cs.Sphere.Center, "center")
		if err != nil {
			return err
		}
		n.AddSphere(cs.Sphere.Radius, center)
	case cs.Box != nil:
		size, err := vec(cs.Box.Size, "size")
		if err != nil {
			return err
		}
		center, err := vec(cs.Box.Center, "center")
		if err != nil {
			return err
		}
		n.AddBox(size, center)
	case cs.Capsule != nil:
		center, err := vec(cs.Capsule.Center, "center")
		if err != nil {
			return err
		}
		dir, err := parseAxis(cs.Capsule.Direction)
		if err != nil {
			return err
		}
		n.AddCapsule(cs.Capsule.Radius, cs.Capsule.Height, dir, center)
	default:
		n.AddMesh()
	}
	return nil
}

func vec(v []float32, field string) (scene.Vec3, error) {
	switch len(v) {
	case 0:
		return scene.Vec3{}, nil
	case 3:
		return scene.Vec3{v[0], v[1], v[2]}, nil
	}
	return scene.Vec3{}, fmt.Errorf("%s: want 3 components, got %d", field, len(v))
}

func parseAxis(s string) (scene.Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return scene.AxisX, nil
	case "", "y":
		return scene.AxisY, nil
	case "z":
		return scene.AxisZ, nil
	}
	return 0, fmt.Errorf("direction %q: want x, y or z", s)
}

func parseTrigger(s string) (scene.ResizeTrigger, error) {
	for _, t := range []scene.ResizeTrigger{scene.ResizeNever, scene.ResizeOnMorphChange, scene.ResizeAlways} {
		if s == t.String() {
			return t, nil
		}
	}
	if s == "" {
		return scene.ResizeNever, nil
	}
	return 0, fmt.Errorf("resize trigger %q: want never, morph_change or always", s)
}

// ─────────────────────────────────────────────────────────────────────────────
// Encoding
// ─────────────────────────────────────────────────────────────────────────────

// Describe returns the description of the scene's current state. Nodes
// created by auto-colliders are omitted; they are recreated on [Build].
func (s *Scene) Describe() File {
	return File{Archetype: s.archetype, Root: describe(s.root)}
}

// Encode writes the scene's current state as YAML.
func Encode(w io.Writer, s *Scene) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.Describe()); err != nil {
		return fmt.Errorf("memscene: encode: %w", err)
	}
	return enc.Close()
}

// SaveFile writes the scene's current state to path.
func SaveFile(path string, s *Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("memscene: create %q: %w", path, err)
	}
	if err := Encode(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func describe(n *Node) NodeSpec {
	spec := NodeSpec{Name: n.name}
	for _, c := range n.components {
		switch c := c.(type) {
		case *Rigidbody:
			spec.Rigidbody = &RigidbodySpec{Kinematic: c.kinematic, DetectCollisions: c.detect}
		case *Sphere:
			spec.Colliders = append(spec.Colliders, ColliderSpec{Sphere: &SphereSpec{
				Radius: c.radius, Center: list(c.center),
			}})
		case *Box:
			spec.Colliders = append(spec.Colliders, ColliderSpec{Box: &BoxSpec{
				Size: list(c.size), Center: list(c.center),
			}})
		case *Capsule:
			spec.Colliders = append(spec.Colliders, ColliderSpec{Capsule: &CapsuleSpec{
				Radius: c.radius, Height: c.height, Direction: axisName(c.dir), Center: list(c.center),
			}})
		case *Mesh:
			spec.Colliders = append(spec.Colliders, ColliderSpec{Mesh: &struct{}{}})
		case *AutoCollider:
			spec.AutoColliders = append(spec.AutoColliders, AutoColliderSpec{
				UseAutoLength: c.spec.UseAutoLength,
				UseAutoRadius: c.spec.UseAutoRadius,
				BaseLength:    c.spec.BaseLength,
				BaseRadius:    c.spec.BaseRadius,
				ResizeTrigger: c.spec.Trigger.String(),
				Params:        ParamsSpec(c.spec.Params),
			})
		}
	}
	for _, child := range n.children {
		if child.owner != nil {
			continue
		}
		spec.Children = append(spec.Children, describe(child))
	}
	return spec
}

func list(v scene.Vec3) []float32 { return []float32{v[0], v[1], v[2]} }

func axisName(a scene.Axis) string {
	switch a {
	case scene.AxisX:
		return "x"
	case scene.AxisZ:
		return "z"
	}
	return "y"
}
