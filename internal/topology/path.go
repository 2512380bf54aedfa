package topology

import (
	"container/list"
	"fmt"
)

// FindPath returns the shortest hop path from one vertex to another,
// both ends included.
//
// The search is breadth-first and stops the moment the destination is
// first discovered. When several shortest paths exist, the one reached
// through the earliest-inserted edges wins. Searching from a vertex to
// itself yields a one-element path.
//
// Parameters:
//   - g: Graph to search
//   - from: Start vertex key
//   - to: Destination vertex key
//
// Returns:
//   - []string: Vertex keys from start to destination, or nil if unreachable
//   - error: ErrVertexNotFound if either endpoint is not in the graph
func FindPath(g *Graph, from, to string) ([]string, error) {
	if !g.HasVertex(from) {
		return nil, fmt.Errorf("finding path: %w: %q", ErrVertexNotFound, from)
	}
	if !g.HasVertex(to) {
		return nil, fmt.Errorf("finding path: %w: %q", ErrVertexNotFound, to)
	}
	if from == to {
		return []string{from}, nil
	}

	parent, found := search(g, from, to)
	if !found {
		return nil, nil
	}
	return tracePath(parent, from, to), nil
}

// search runs the BFS and returns the parent links it recorded.
func search(g *Graph, from, to string) (map[string]string, bool) {
	parent := map[string]string{}
	visited := map[string]bool{from: true}

	queue := list.New()
	queue.PushBack(from)

	for queue.Len() > 0 {
		current := queue.Remove(queue.Front()).(string)

		for _, e := range g.adj[current] {
			next := e.To
			if visited[next] {
				continue
			}
			parent[next] = current
			if next == to {
				return parent, true
			}
			visited[next] = true
			queue.PushBack(next)
		}
	}

	return nil, false
}

// tracePath walks parent links back from to and returns the path in
// forward order. It returns nil if to is not linked back to from.
func tracePath(parent map[string]string, from, to string) []string {
	var reversed []string
	for key := to; ; {
		reversed = append(reversed, key)
		if key == from {
			break
		}
		p, ok := parent[key]
		if !ok {
			return nil
		}
		key = p
	}

	path := make([]string, len(reversed))
	for i, key := range reversed {
		path[len(reversed)-1-i] = key
	}
	return path
}
