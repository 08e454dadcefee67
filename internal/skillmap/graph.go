package skillmap

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Graph holds the skill DAG for one lesson with precomputed indices.
// Graphs are immutable after construction.
type Graph struct {
	skills     []Skill
	byID       map[string]*Skill
	dependents map[string][]string
	topoOrder  []Skill
	topoIndex  map[string]int
}

// NewGraph validates the skill set and builds the graph indices,
// including a deterministic topological order (Kahn's algorithm with
// sorted tie-breaks).
func NewGraph(skills []Skill) (*Graph, error) {
	if err := validateSkills(skills); err != nil {
		return nil, err
	}

	g := &Graph{
		skills:     slices.Clone(skills),
		byID:       make(map[string]*Skill, len(skills)),
		dependents: make(map[string][]string),
		topoIndex:  make(map[string]int, len(skills)),
	}

	for i := range g.skills {
		g.byID[g.skills[i].ID] = &g.skills[i]
	}

	// Reverse edges
	for i := range g.skills {
		for _, prereqID := range g.skills[i].Prerequisites {
			g.dependents[prereqID] = append(g.dependents[prereqID], g.skills[i].ID)
		}
	}

	// Topological sort (Kahn's algorithm)
	inDegree := make(map[string]int, len(g.skills))
	for i := range g.skills {
		inDegree[g.skills[i].ID] = len(g.skills[i].Prerequisites)
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	// Sort initial queue for deterministic ordering
	sort.Strings(queue)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		g.topoOrder = append(g.topoOrder, *g.byID[id])

		deps := g.dependents[id]
		sorted := make([]string, len(deps))
		copy(sorted, deps)
		sort.Strings(sorted)
		for _, depID := range sorted {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	for i, s := range g.topoOrder {
		g.topoIndex[s.ID] = i
	}

	return g, nil
}

// Len returns the number of skills in the graph.
func (g *Graph) Len() int {
	return len(g.skills)
}

// Skills returns all skills in insertion order.
func (g *Graph) Skills() []Skill {
	return slices.Clone(g.skills)
}

// Skill returns a skill by ID, or an error if not found.
func (g *Graph) Skill(id string) (Skill, error) {
	s, ok := g.byID[id]
	if !ok {
		return Skill{}, fmt.Errorf("skill not found: %q", id)
	}
	return *s, nil
}

// Contains reports whether the graph has a skill with the given ID.
func (g *Graph) Contains(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Prerequisites returns the direct prerequisite skills for a given skill ID.
func (g *Graph) Prerequisites(id string) []Skill {
	s, ok := g.byID[id]
	if !ok {
		return nil
	}
	result := make([]Skill, 0, len(s.Prerequisites))
	for _, prereqID := range s.Prerequisites {
		if p, ok := g.byID[prereqID]; ok {
			result = append(result, *p)
		}
	}
	return result
}

// Dependents returns skills that directly depend on the given skill ID.
func (g *Graph) Dependents(id string) []Skill {
	depIDs := g.dependents[id]
	result := make([]Skill, 0, len(depIDs))
	for _, depID := range depIDs {
		if s, ok := g.byID[depID]; ok {
			result = append(result, *s)
		}
	}
	return result
}

// TopologicalOrder returns all skills in a valid topological order.
// The order is deterministic for a given skill set.
func (g *Graph) TopologicalOrder() []Skill {
	return slices.Clone(g.topoOrder)
}

// TopoIndex returns the position of a skill in the topological order,
// or -1 if the skill is unknown.
func (g *Graph) TopoIndex(id string) int {
	idx, ok := g.topoIndex[id]
	if !ok {
		return -1
	}
	return idx
}

// graphJSON is the wire form of a Graph.
type graphJSON struct {
	Skills []Skill `json:"skills"`
}

// MarshalJSON encodes the graph as its skill list.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(graphJSON{Skills: g.skills})
}

// UnmarshalJSON decodes a skill list and rebuilds all indices.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw graphJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode skill graph: %w", err)
	}
	built, err := NewGraph(raw.Skills)
	if err != nil {
		return err
	}
	*g = *built
	return nil
}
