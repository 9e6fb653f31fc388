// Package dedup collapses repeated inputs of a batch so each distinct text is
// classified once, then fans the results back out.
package dedup

import "github.com/crimson-sun/tiermap/internal/engine/compactor"

// Groups maps batch positions onto distinct texts.
type Groups struct {
	// Unique holds each distinct text once, in first-occurrence order.
	Unique []string
	// Members[i] lists the original positions that share Unique[i].
	Members [][]int
	owner   []int
}

// Group collapses texts that are identical after preparation. Whitespace and
// Unicode-normalization differences therefore do not cause a second call.
func Group(texts []string) Groups {
	g := Groups{owner: make([]int, len(texts))}
	seen := make(map[string]int, len(texts))
	for i, t := range texts {
		key := compactor.Prepare(t, 0)
		u, ok := seen[key]
		if !ok {
			u = len(g.Unique)
			seen[key] = u
			g.Unique = append(g.Unique, t)
			g.Members = append(g.Members, nil)
		}
		g.Members[u] = append(g.Members[u], i)
		g.owner[i] = u
	}
	return g
}

// Len is the size of the original batch.
func (g Groups) Len() int { return len(g.owner) }

// Duplicates is the number of inputs that were folded into an earlier one.
func (g Groups) Duplicates() int { return len(g.owner) - len(g.Unique) }

// Owner returns the index into Unique that position i maps to.
func (g Groups) Owner(i int) int { return g.owner[i] }

// Expand fans per-unique values back out to every original position.
func Expand[T any](g Groups, unique []T) []T {
	out := make([]T, len(g.owner))
	for i, u := range g.owner {
		if u < len(unique) {
			out[i] = unique[u]
		}
	}
	return out
}
