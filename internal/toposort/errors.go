package toposort

import (
	"errors"
	"fmt"
)

var (
	// ErrCycle reports that the graph has no topological order.
	ErrCycle = errors.New("dependency cycle detected")

	// ErrUnknownNode reports an edge that references a node missing from
	// the node list.
	ErrUnknownNode = errors.New("edge references unknown node")
)

// GraphError wraps deterministic graph failures.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func unknownf(format string, args ...any) error {
	return &GraphError{Kind: ErrUnknownNode, Msg: fmt.Sprintf(format, args...)}
}
