package engine

import (
	"errors"
	"fmt"
)

// Evaluation error kinds. ErrMissingRequiredInput and ErrIKChainInvalid
// degrade the node and are reported in Result.Diagnostics; the others abort
// the call.
var (
	ErrMissingRequiredInput = errors.New("missing required input")
	ErrUnresolvedSubgraph   = errors.New("unresolved sub-graph reference")
	ErrIKChainInvalid       = errors.New("invalid IK chain")
	ErrGraphCycle           = errors.New("graph cycle")
)

// EvalError ties an evaluation error to the node that raised it.
type EvalError struct {
	Graph string
	Node  string
	Err   error
}

func (e *EvalError) Error() string {
	if e.Graph == "" {
		return fmt.Sprintf("node %q: %v", e.Node, e.Err)
	}
	return fmt.Sprintf("graph %q node %q: %v", e.Graph, e.Node, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }
