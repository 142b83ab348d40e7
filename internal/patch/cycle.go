package patch

import (
	"fmt"
	"slices"
	"strings"
)

// CycleWarning reports a feedback loop between chains.
//
// Feedback is legal in a live patch, so loops are warnings rather than errors.
type CycleWarning struct {
	Path    []string `json:"path"`    // e.g. ["a", "b", "a"]
	Message string   `json:"message"`
}

// chainGraph maps a chain to the chains it reads from, in declaration order.
type chainGraph struct {
	nodes []string
	edges map[string][]string
}

// AnalyzeCycles finds strongly connected components of the chain reference
// graph with Tarjan's algorithm. Each component with more than one chain,
// or a chain that references itself, becomes one warning. Output order
// follows chain declaration order.
func AnalyzeCycles(edges []Edge, chains []string) []CycleWarning {
	g := chainGraph{nodes: chains, edges: make(map[string][]string, len(chains))}
	for _, e := range edges {
		if !slices.Contains(g.edges[e.To], e.From) {
			g.edges[e.To] = append(g.edges[e.To], e.From)
		}
	}

	var warnings []CycleWarning
	for _, scc := range g.tarjan() {
		if len(scc) == 1 && !slices.Contains(g.edges[scc[0]], scc[0]) {
			continue
		}
		warnings = append(warnings, g.warning(scc))
	}
	return warnings
}

func (g chainGraph) tarjan() [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// warning walks the component starting from its earliest declared chain
// until it returns to the start.
func (g chainGraph) warning(scc []string) CycleWarning {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	start := scc[0]
	for _, n := range g.nodes {
		if members[n] {
			start = n
			break
		}
	}

	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		next := ""
		for _, w := range g.edges[current] {
			if w == start || (members[w] && !visited[w]) {
				next = w
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}

	if len(path) == 2 && path[0] == path[1] {
		return CycleWarning{Path: path, Message: fmt.Sprintf("chain %s reads its own output", start)}
	}
	return CycleWarning{Path: path, Message: "feedback loop: " + strings.Join(path, " <- ")}
}

