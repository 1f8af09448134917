// Package engine evaluates animation graphs.
//
// Each Evaluate call runs a time phase, which negotiates durations and
// playback times bottom-up, and for pose queries a pose phase, which samples
// poses top-down at the negotiated times. Results are memoized in a cache
// owned by the call, so a producer shared by several consumers is computed
// once per (node, pin, query, time).
//
// Nested graphs and state machines are evaluated in frames, one per graph
// level. A frame binds the nested graph's inputs to the pins of the node that
// owns it. State machines keep their runtime state in the Instance between
// calls; everything else is recomputed every call.
package engine
