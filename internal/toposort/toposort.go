// Package toposort implements a stable, depth-first topological sort.
//
// The graph is supplied as a flat node list plus an edge list and is
// rebuilt on every call; nothing is cached between invocations. When more
// than one valid order exists, ties are broken by first appearance in the
// node list, so the same input always yields the same output.
package toposort

import (
	"fmt"
	"strings"
)

// Edge declares that From must appear before To in the sorted output.
// In dependency terms, From is a prerequisite of To.
type Edge[T comparable] struct {
	From T
	To   T
}

// mark is the per-node traversal state. The zero value means unvisited.
type mark uint8

const (
	unvisited mark = iota
	// inProgress is the temporary mark: the node is on the current DFS path.
	inProgress
	// done is the permanent mark: the node and all its prerequisites have
	// been emitted.
	done
)

// sorter holds the state of a single Sort call.
type sorter[T comparable] struct {
	// incoming maps each node to its prerequisites, in the order the edges
	// were declared.
	incoming map[T][]T
	marks    map[T]mark
	// path is the current DFS stack, kept to report the cycle members.
	path []T
	out  []T
}

// Sort returns nodes ordered so that for every edge (a, b), a precedes b.
//
// Traversal starts from each node in the order given, and prerequisites are
// visited in the order their edges were declared. A node is appended only
// after all of its prerequisites (post-order), which is what makes the
// output a valid topological order. Nodes unconstrained by any edge keep
// their relative input order.
//
// A cycle aborts the sort with an error wrapping ErrCycle and no partial
// result. An edge naming a node absent from nodes returns an error wrapping
// ErrUnknownNode instead of being silently dropped. A node listed twice is
// emitted once, at its first position.
func Sort[T comparable](nodes []T, edges []Edge[T]) ([]T, error) {
	known := make(map[T]struct{}, len(nodes))
	for _, n := range nodes {
		known[n] = struct{}{}
	}

	s := &sorter[T]{
		incoming: make(map[T][]T, len(nodes)),
		marks:    make(map[T]mark, len(nodes)),
		out:      make([]T, 0, len(nodes)),
	}
	for _, e := range edges {
		if _, ok := known[e.From]; !ok {
			return nil, unknownf("edge %v -> %v references unknown node %v", e.From, e.To, e.From)
		}
		if _, ok := known[e.To]; !ok {
			return nil, unknownf("edge %v -> %v references unknown node %v", e.From, e.To, e.To)
		}
		s.incoming[e.To] = append(s.incoming[e.To], e.From)
	}

	for _, n := range nodes {
		if err := s.visit(n); err != nil {
			return nil, err
		}
	}
	return s.out, nil
}

func (s *sorter[T]) visit(n T) error {
	switch s.marks[n] {
	case done:
		return nil
	case inProgress:
		return s.cycle(n)
	}

	s.marks[n] = inProgress
	s.path = append(s.path, n)
	for _, dep := range s.incoming[n] {
		if err := s.visit(dep); err != nil {
			return err
		}
	}
	s.path = s.path[:len(s.path)-1]
	s.marks[n] = done
	s.out = append(s.out, n)
	return nil
}

// cycle builds the error for a back edge into n. The reported members are
// the DFS stack from n's first occurrence, printed in edge direction and
// closed on the first member.
func (s *sorter[T]) cycle(n T) error {
	start := 0
	for i, p := range s.path {
		if p == n {
			start = i
			break
		}
	}
	members := make([]string, 0, len(s.path)-start+1)
	// The stack runs from dependent to prerequisite, so reverse it to read
	// in installation order.
	for i := len(s.path) - 1; i >= start; i-- {
		members = append(members, fmt.Sprint(s.path[i]))
	}
	members = append(members, members[0])
	return cycleError(members)
}

func cycleError(members []string) error {
	return &GraphError{Kind: ErrCycle, Msg: strings.Join(members, " -> ")}
}
