// Package group classifies rigidbodies into named body-part groups.
//
// A group pairs an id (also its display name) with a regular expression that
// is matched against a rigidbody's node name. Membership is non-exclusive: a
// name may match several groups, and the catch-all [AllID] group matches
// every name.
package group

import (
	"fmt"
	"regexp"
)

// AllID is the id of the catch-all group.
const AllID = "All"

// DefaultInitialID is the group selected when an editor opens on a Person.
const DefaultInitialID = "Head / Ears"

// PersonArchetype selects the anatomical group list.
const PersonArchetype = "Person"

// Group is a named pattern. A group with a nil Pattern never matches.
type Group struct {
	ID      string
	Pattern *regexp.Regexp
}

// New compiles pattern into a group. An empty pattern yields a group that
// never matches.
func New(id, pattern string) (*Group, error) {
	if id == "" {
		return nil, fmt.Errorf("group: empty id")
	}
	g := &Group{ID: id}
	if pattern == "" {
		return g, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("group: %q: %w", id, err)
	}
	g.Pattern = re
	return g, nil
}

// Matches reports whether name belongs to g.
func (g *Group) Matches(name string) bool {
	return g.Pattern != nil && g.Pattern.MatchString(name)
}

// Matching returns every group in groups whose pattern matches name, in list
// order.
func Matching(name string, groups []*Group) []*Group {
	var out []*Group
	for _, g := range groups {
		if g.Matches(name) {
			out = append(out, g)
		}
	}
	return out
}

// Spec is an uncompiled group definition.
type Spec struct {
	ID      string
	Pattern string
}

// personGroups is the anatomical list. "Other" carries no pattern and never
// matches; it exists so the list mirrors what operators are used to.
var personGroups = []Spec{
	{AllID, `^.+$`},
	{"Head / Ears", `^(head|lowerJaw|tongue|neck)`},
	{"Left arm", `^l(Shldr|ForeArm)`},
	{"Left hand", `^l(Index|Mid|Ring|Pinky|Thumb|Carpal|Hand)[0-9]?$`},
	{"Right arm", `^r(Shldr|ForeArm)`},
	{"Right hand", `^r(Index|Mid|Ring|Pinky|Thumb|Carpal|Hand)[0-9]?$`},
	{"Chest", `^(chest|AutoColliderFemaleAutoColliderschest)`},
	{"Left breast", `l((Pectoral)|Nipple)`},
	{"Right breast", `r((Pectoral)|Nipple)`},
	{"Abdomen / Belly / Back", `^(AutoColliderFemaleAutoColliders)?abdomen`},
	{"Hip / Pelvis", `^(AutoCollider)?(hip|pelvis)`},
	{"Glute", `^(AutoColliderFemaleAutoColliders)?[LR]Glute`},
	{"Anus", `^_JointA[rl]`},
	{"Vagina", `^_Joint(Gr|Gl|B)`},
	{"Penis", `^(Gen[1-3])|Testes`},
	{"Left leg", `^(AutoCollider(FemaleAutoColliders)?)?l(Thigh|Shin)`},
	{"Left foot", `^l(Foot|Toe|BigToe|SmallToe)`},
	{"Right leg", `^(AutoCollider(FemaleAutoColliders)?)?r(Thigh|Shin)`},
	{"Right foot", `^r(Foot|Toe|BigToe|SmallToe)`},
	{"Other", ``},
}

// Compile turns specs into groups. It fails on the first invalid pattern or
// duplicate id.
func Compile(specs []Spec) ([]*Group, error) {
	out := make([]*Group, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if seen[s.ID] {
			return nil, fmt.Errorf("group: duplicate id %q", s.ID)
		}
		seen[s.ID] = true
		g, err := New(s.ID, s.Pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// PersonSpecs returns a copy of the anatomical group definitions.
func PersonSpecs() []Spec {
	return append([]Spec(nil), personGroups...)
}

// Person returns the anatomical group list.
func Person() []*Group {
	groups, err := Compile(personGroups)
	if err != nil {
		panic(err)
	}
	return groups
}

// ForArchetype returns the group list for a body archetype: the anatomical
// list for [PersonArchetype], a lone [AllID] group otherwise.
func ForArchetype(archetype string) []*Group {
	if archetype == PersonArchetype {
		return Person()
	}
	return []*Group{{ID: AllID, Pattern: regexp.MustCompile(`^.+$`)}}
}

// ByID returns the group with id, or nil.
func ByID(groups []*Group, id string) *Group {
	for _, g := range groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}
