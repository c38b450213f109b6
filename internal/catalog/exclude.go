package catalog

import (
	"slices"
	"strings"

	"github.com/MrWong99/colliderkit/pkg/scene"
)

// rule is a set of name literals. A name matching any of them is excluded.
type rule struct {
	equals   []string
	prefixes []string
	suffixes []string
	contains []string
}

func (r rule) match(name string) bool {
	if slices.Contains(r.equals, name) {
		return true
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, s := range r.suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	for _, c := range r.contains {
		if strings.Contains(name, c) {
			return true
		}
	}
	return false
}

// Host helper objects (grab controls, UI triggers, hair tooling) carry
// physics primitives that are not part of the body.
var (
	colliderRule = rule{
		equals:   []string{"control", "object"},
		suffixes: []string{"Control", "Link", "Trigger", "UI"},
		contains: []string{"Tool", "Ponytail"},
	}
	rigidbodyRule = rule{
		equals:   []string{"control", "object"},
		prefixes: []string{"hairTool"},
		suffixes: []string{"Control", "Trigger", "UI"},
		contains: []string{"Ponytail"},
	}
)

// ExcludeCollider reports whether c is left out of a catalog by name.
func ExcludeCollider(c scene.Collider) bool { return colliderRule.match(c.Name()) }

// ExcludeRigidbody reports whether rb is left out of a catalog: kinematic
// bodies and helper bodies by name.
func ExcludeRigidbody(rb scene.Rigidbody) bool {
	return rb.IsKinematic() || rigidbodyRule.match(rb.Name())
}
