package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Build-time error kinds. A *BuildError wraps exactly one of these.
var (
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrUnknownPin          = errors.New("unknown pin")
	ErrUnknownNode         = errors.New("unknown node")
	ErrDuplicateName       = errors.New("duplicate name")
	ErrCycleDetected       = errors.New("cycle detected")
	ErrPinAlreadyConnected = errors.New("pin already connected")
)

// BuildError describes one problem found while building a graph.
type BuildError struct {
	Err    error
	Graph  string
	Node   string
	Pin    string
	Chain  []string
	Detail string
}

func (e *BuildError) Error() string {
	var b strings.Builder
	if e.Graph != "" {
		fmt.Fprintf(&b, "graph %q: ", e.Graph)
	}
	b.WriteString(e.Err.Error())
	switch {
	case len(e.Chain) > 0:
		fmt.Fprintf(&b, ": %s", strings.Join(e.Chain, " -> "))
	case e.Node != "" && e.Pin != "":
		fmt.Fprintf(&b, ": %s.%s", e.Node, e.Pin)
	case e.Node != "":
		fmt.Fprintf(&b, ": %s", e.Node)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	return b.String()
}

func (e *BuildError) Unwrap() error { return e.Err }

func buildErr(kind error, graph string, at Endpoint, format string, args ...any) *BuildError {
	return &BuildError{Err: kind, Graph: graph, Node: at.Node, Pin: at.Pin, Detail: fmt.Sprintf(format, args...)}
}
