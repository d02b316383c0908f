// Package depgraph tracks which formula cells read which other cells and
// produces the order recomputation must follow. The graph is an index-based
// adjacency structure keyed by grid coordinates: an edge A -> B means "A's
// formula reads B". Range references are expanded to their member coords at
// registration, so an edit anywhere inside an observed range lands on an
// existing edge.
package depgraph

import (
	"container/heap"
	"sort"

	"github.com/dsdsmelo/gridnote/internal/refs"
)

// Graph is a directed dependency graph over grid coordinates.
type Graph struct {
	reads  map[refs.Coord]map[refs.Coord]struct{} // formula cell -> cells it reads
	readBy map[refs.Coord]map[refs.Coord]struct{} // cell -> formula cells that read it
}

// New creates an empty dependency graph.
func New() *Graph {
	return &Graph{
		reads:  make(map[refs.Coord]map[refs.Coord]struct{}),
		readBy: make(map[refs.Coord]map[refs.Coord]struct{}),
	}
}

// Replace swaps the full outgoing edge set of a formula cell. Old edges are
// removed before the new ones are added, so stale edges never accumulate
// across reparses.
func (g *Graph) Replace(from refs.Coord, reads []refs.Coord) {
	g.Remove(from)
	if len(reads) == 0 {
		return
	}
	out := make(map[refs.Coord]struct{}, len(reads))
	for _, to := range reads {
		out[to] = struct{}{}
		if g.readBy[to] == nil {
			g.readBy[to] = make(map[refs.Coord]struct{})
		}
		g.readBy[to][from] = struct{}{}
	}
	g.reads[from] = out
}

// Remove drops all outgoing edges of a cell. Incoming edges (other
// formulas reading this cell) are untouched; they dangle into a plain
// value and resolve through evaluation.
func (g *Graph) Remove(from refs.Coord) {
	for to := range g.reads[from] {
		delete(g.readBy[to], from)
		if len(g.readBy[to]) == 0 {
			delete(g.readBy, to)
		}
	}
	delete(g.reads, from)
}

// Clear empties the graph. Used when structural mutations shift
// coordinates and the engine re-registers every formula cell.
func (g *Graph) Clear() {
	g.reads = make(map[refs.Coord]map[refs.Coord]struct{})
	g.readBy = make(map[refs.Coord]map[refs.Coord]struct{})
}

// Reads returns the cells a formula cell directly reads, sorted.
func (g *Graph) Reads(from refs.Coord) []refs.Coord {
	return sortedCoords(g.reads[from])
}

// Dependents returns the formula cells that directly read a cell, sorted.
func (g *Graph) Dependents(of refs.Coord) []refs.Coord {
	return sortedCoords(g.readBy[of])
}

// Affected returns the start set plus every transitive dependent: all cells
// whose computed value can change when the start cells change.
func (g *Graph) Affected(start ...refs.Coord) map[refs.Coord]struct{} {
	affected := make(map[refs.Coord]struct{}, len(start))
	stack := append([]refs.Coord(nil), start...)
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := affected[c]; seen {
			continue
		}
		affected[c] = struct{}{}
		for dep := range g.readBy[c] {
			stack = append(stack, dep)
		}
	}
	return affected
}

// Order is the recomputation plan for one invalidation pass.
type Order struct {
	// Ready lists cells evaluable in dependency order: every cell appears
	// after all cells it reads. Cells downstream of a cycle are included
	// at the end; they evaluate against the cycle members' stored error
	// values.
	Ready []refs.Coord

	// Cycle lists cells on a circular reference, sorted by (row, col).
	// Empty when the affected subgraph is acyclic.
	Cycle []refs.Coord
}

// Invalidate marks the start cells and their transitive dependents for
// recomputation and returns them in topological order, dependencies before
// dependents. Ties among independent cells break by ascending (row, col).
//
// When the affected subgraph contains a cycle the returned error is a
// *CycleError naming the members; the Order is still usable. Cycle
// members are excluded from Ready and reported separately.
func (g *Graph) Invalidate(start ...refs.Coord) (Order, error) {
	affected := g.Affected(start...)

	ready, leftover := g.kahn(affected, nil)
	if len(leftover) == 0 {
		return Order{Ready: ready}, nil
	}

	cycle := g.cycleMembers(leftover)

	// Cells downstream of the cycle still recompute; treating the cycle
	// members as already resolved unblocks them.
	resolved := make(map[refs.Coord]struct{}, len(cycle))
	for _, c := range cycle {
		resolved[c] = struct{}{}
	}
	downstream := make(map[refs.Coord]struct{}, len(leftover))
	for c := range leftover {
		if _, inCycle := resolved[c]; !inCycle {
			downstream[c] = struct{}{}
		}
	}
	tail, _ := g.kahn(downstream, resolved)

	return Order{Ready: append(ready, tail...), Cycle: cycle}, &CycleError{Members: cycle}
}

// kahn runs Kahn's algorithm restricted to the given set, with a min-heap
// ready queue keyed by (row, col) for deterministic output. Edges from
// cells in resolved (or outside the set) count as already satisfied.
// Returns the ordered cells and the subset that never became ready.
func (g *Graph) kahn(set map[refs.Coord]struct{}, resolved map[refs.Coord]struct{}) ([]refs.Coord, map[refs.Coord]struct{}) {
	indeg := make(map[refs.Coord]int, len(set))
	for c := range set {
		n := 0
		for read := range g.reads[c] {
			if _, in := set[read]; !in {
				continue
			}
			if _, done := resolved[read]; done {
				continue
			}
			n++
		}
		indeg[c] = n
	}

	ready := &coordHeap{}
	heap.Init(ready)
	for c, n := range indeg {
		if n == 0 {
			heap.Push(ready, c)
		}
	}

	out := make([]refs.Coord, 0, len(set))
	for ready.Len() > 0 {
		c := heap.Pop(ready).(refs.Coord)
		out = append(out, c)
		delete(indeg, c)
		for dep := range g.readBy[c] {
			if _, in := set[dep]; !in {
				continue
			}
			if n, pending := indeg[dep]; pending {
				indeg[dep] = n - 1
				if n-1 == 0 {
					heap.Push(ready, dep)
				}
			}
		}
	}

	leftover := make(map[refs.Coord]struct{}, len(indeg))
	for c := range indeg {
		leftover[c] = struct{}{}
	}
	return out, leftover
}

// cycleMembers extracts the cells that sit on an actual cycle from the
// leftover set: those that can reach themselves through leftover edges.
// Cells that are merely downstream of a cycle are excluded.
func (g *Graph) cycleMembers(leftover map[refs.Coord]struct{}) []refs.Coord {
	var members []refs.Coord
	for c := range leftover {
		if g.reaches(c, c, leftover, make(map[refs.Coord]struct{})) {
			members = append(members, c)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Less(members[j]) })
	return members
}

// reaches reports whether target is reachable from cur by following read
// edges within the restricted set.
func (g *Graph) reaches(cur, target refs.Coord, set, visited map[refs.Coord]struct{}) bool {
	for read := range g.reads[cur] {
		if _, in := set[read]; !in {
			continue
		}
		if read == target {
			return true
		}
		if _, seen := visited[read]; seen {
			continue
		}
		visited[read] = struct{}{}
		if g.reaches(read, target, set, visited) {
			return true
		}
	}
	return false
}

// NodeCount returns the number of formula cells with outgoing edges.
func (g *Graph) NodeCount() int {
	return len(g.reads)
}

func sortedCoords(set map[refs.Coord]struct{}) []refs.Coord {
	out := make([]refs.Coord, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// coordHeap is a min-heap of coordinates ordered by (row, col).
type coordHeap []refs.Coord

func (h coordHeap) Len() int           { return len(h) }
func (h coordHeap) Less(i, j int) bool { return h[i].Less(h[j]) }
func (h coordHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *coordHeap) Push(x any)        { *h = append(*h, x.(refs.Coord)) }
func (h *coordHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
