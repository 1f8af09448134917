// Package value defines the closed set of typed values that flow on graph
// edges, and the Kind tags pins declare.
package value
