// Package app contains the core application logic. It wires the asset
// library, the evaluation engine, the per-character drivers and the frame
// sinks together, decoupled from any specific entrypoint like a CLI.
package app
