// Package graph is the data model of an animation graph: nodes drawn from a
// closed set of variants, their typed pins, and the three edge namespaces
// (pose, parameter, time) stored consumer to producer.
//
// Graphs are assembled with a Builder and validated once, at Build. Each edge
// is checked for unknown nodes and pins and for mismatched pin or value kinds,
// and the union of all edge namespaces must be acyclic. Every problem is
// reported as a *BuildError wrapping one of the Err* sentinels, so callers can
// use errors.Is and errors.As.
//
// A built Graph is immutable. Nested graphs and state machines are owned
// copies; Clone duplicates them so two parents never share a node.
package graph
