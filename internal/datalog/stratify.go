package datalog

import "anteater/internal/errs"

// depEdge is one predicate-dependency edge: body predicate -> head predicate,
// tagged with whether it crossed a negated body atom.
type depEdge struct {
	to       string
	negated  bool
}

// stratify assigns every predicate a non-negative stratum such that a
// negated dependency strictly increases stratum and a positive dependency
// never decreases it, per spec.md §4.5. Returns StratificationError if a
// cycle passes through a negated edge.
func stratify(rules []Rule) (map[string]int, error) {
	graph := make(map[string][]depEdge)
	predicates := make(map[string]bool)

	addNode := func(p string) {
		predicates[p] = true
		if _, ok := graph[p]; !ok {
			graph[p] = nil
		}
	}

	for _, r := range rules {
		addNode(r.Head.Predicate)
		for _, atom := range r.Body {
			addNode(atom.Predicate)
			graph[atom.Predicate] = append(graph[atom.Predicate], depEdge{to: r.Head.Predicate, negated: false})
		}
		for _, atom := range r.NegatedBody {
			addNode(atom.Predicate)
			graph[atom.Predicate] = append(graph[atom.Predicate], depEdge{to: r.Head.Predicate, negated: true})
		}
	}

	sccOf, sccs := tarjanSCC(graph)

	for comp, members := range sccs {
		memberSet := make(map[string]bool, len(members))
		for _, m := range members {
			memberSet[m] = true
		}
		for _, from := range members {
			for _, e := range graph[from] {
				if e.negated && memberSet[e.to] {
					return nil, &errs.StratificationError{Predicate: e.to, Cycle: members}
				}
			}
		}
		_ = comp
	}

	// Condense into a DAG over SCC ids, then compute strata with one pass
	// in topological order (longest-path-to-node, weighting negated edges
	// by +1 and positive edges by +0).
	type condEdge = struct {
		to      int
		negated bool
	}
	condensed := make(map[int][]condEdge) // sccID -> edges to other sccIDs
	for from, edges := range graph {
		for _, e := range edges {
			if sccOf[from] == sccOf[e.to] {
				continue
			}
			condensed[sccOf[from]] = append(condensed[sccOf[from]], condEdge{to: sccOf[e.to], negated: e.negated})
		}
	}

	topo := topoSortSCCs(len(sccs), condensed)
	sccStratum := make(map[int]int, len(sccs))
	for _, id := range topo {
		for _, e := range condensed[id] {
			req := sccStratum[id]
			if e.negated {
				req++
			}
			if sccStratum[e.to] < req {
				sccStratum[e.to] = req
			}
		}
	}

	stratum := make(map[string]int, len(predicates))
	for p := range predicates {
		stratum[p] = sccStratum[sccOf[p]]
	}
	return stratum, nil
}

// tarjanSCC computes strongly connected components of graph, returning the
// component id per node and the member list per component id.
func tarjanSCC(graph map[string][]depEdge) (map[string]int, map[int][]string) {
	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	sccOf := make(map[string]int)
	sccs := make(map[int][]string)
	nextComp := 0

	var nodes []string
	for n := range graph {
		nodes = append(nodes, n)
	}

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, e := range graph[v] {
			w := e.to
			if _, visited := indices[w]; !visited {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			comp := nextComp
			nextComp++
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				sccOf[w] = comp
				sccs[comp] = append(sccs[comp], w)
				if w == v {
					break
				}
			}
		}
	}

	for _, v := range nodes {
		if _, visited := indices[v]; !visited {
			strongconnect(v)
		}
	}
	return sccOf, sccs
}

// topoSortSCCs returns a topological order of SCC ids 0..n-1 over the
// condensed edge set (guaranteed a DAG).
func topoSortSCCs(n int, edges map[int][]struct {
	to      int
	negated bool
}) []int {
	indeg := make([]int, n)
	for _, es := range edges {
		for _, e := range es {
			indeg[e.to]++
		}
	}
	var queue []int
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue = append(queue, i)
		}
	}
	var order []int
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)
		for _, e := range edges[v] {
			indeg[e.to]--
			if indeg[e.to] == 0 {
				queue = append(queue, e.to)
			}
		}
	}
	return order
}
