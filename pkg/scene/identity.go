package scene

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Resolver derives the stable identity of a component. The identity is the
// only key used to match catalog entities and persisted documents, so it must
// be deterministic for an unchanged hierarchy.
type Resolver interface {
	Identity(c Component) string
}

// ResolverFunc adapts a plain function to [Resolver].
type ResolverFunc func(c Component) string

// Identity implements [Resolver].
func (f ResolverFunc) Identity(c Component) string { return f(c) }

// DefaultRoots are the node names at which [HierarchyResolver] stops walking
// up the hierarchy. Matching is case-insensitive.
var DefaultRoots = []string{"geometry", "Genesis2Female", "Genesis2Male"}

// HierarchyResolver builds identities of the form
//
//	parent[2].child[0].child[1]
//
// made of "name[index]" segments from the first root node (exclusive) down to
// the component. The final segment uses the component index on its node.
type HierarchyResolver struct {
	// Roots overrides [DefaultRoots] when non-nil.
	Roots []string
}

// Identity implements [Resolver].
func (r HierarchyResolver) Identity(c Component) string {
	return strings.Join(r.Path(c), ".")
}

// Path returns the identity segments from the outermost node to the
// component.
func (r HierarchyResolver) Path(c Component) []string {
	roots := r.Roots
	if roots == nil {
		roots = DefaultRoots
	}

	segments := []string{fmt.Sprintf("%s[%d]", c.Name(), c.ComponentIndex())}
	for t := c.Transform(); t != nil && !isRoot(t.Name(), roots); t = t.Parent() {
		segments = append(segments, fmt.Sprintf("%s[%d]", t.Name(), t.SiblingIndex()))
	}
	slices.Reverse(segments)
	return segments
}

func isRoot(name string, roots []string) bool {
	for _, root := range roots {
		if strings.EqualFold(name, root) {
			return true
		}
	}
	return false
}

// IdentityNamespace is the namespace [UUIDResolver] uses when none is set.
var IdentityNamespace = uuid.MustParse("4f9b1f3e-52c6-4c8e-9a51-6c2bb0a4a0de")

// UUIDResolver hashes the identity produced by Base into a name-based
// (SHA-1) UUID. It is stable for the same hierarchy and keeps persisted keys
// short for deeply nested bodies.
type UUIDResolver struct {
	// Base produces the hierarchy identity. Defaults to [HierarchyResolver].
	Base Resolver

	// Namespace defaults to [IdentityNamespace].
	Namespace uuid.UUID
}

// Identity implements [Resolver].
func (r UUIDResolver) Identity(c Component) string {
	base := r.Base
	if base == nil {
		base = HierarchyResolver{}
	}
	ns := r.Namespace
	if ns == uuid.Nil {
		ns = IdentityNamespace
	}
	return uuid.NewSHA1(ns, []byte(base.Identity(c))).String()
}
