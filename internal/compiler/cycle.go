package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/suiterun/internal/bundle"
)

// requireGraph maps module name → names it requires.
type requireGraph map[string][]string

func buildRequireGraph(modules []bundle.Module) (requireGraph, []string) {
	graph := make(requireGraph, len(modules))
	order := make([]string, 0, len(modules))
	for _, m := range modules {
		graph[m.Name] = m.Requires
		order = append(order, m.Name)
	}
	return graph, order
}

// findRequireCycles returns each require cycle as a closed path
// (["a", "b", "a"]). Self-requires are reported as ["a", "a"].
// Output is deterministic for a given module order.
func findRequireCycles(modules []bundle.Module) [][]string {
	graph, order := buildRequireGraph(modules)

	var cycles [][]string
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) == 1 && !slices.Contains(graph[scc[0]], scc[0]) {
			continue
		}
		cycles = append(cycles, cyclePath(scc, graph, order))
	}
	return cycles
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm,
// visiting roots in the given order.
func tarjanSCC(graph requireGraph, order []string) [][]string {
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

		for _, w := range graph[v] {
			if _, ok := graph[w]; !ok {
				continue // unknown modules are reported separately
			}
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

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// cyclePath walks a closed path through an SCC starting at the member
// declared first.
func cyclePath(scc []string, graph requireGraph, order []string) []string {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	var start string
	for _, n := range order {
		if members[n] {
			start = n
			break
		}
	}

	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		var next string
		for _, w := range graph[current] {
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
	return path
}

func cycleError(path []string) *CompileError {
	return &CompileError{
		Field:   fmt.Sprintf("module.%s.requires", path[0]),
		Message: fmt.Sprintf("require cycle: %s", strings.Join(path, " -> ")),
	}
}
