// Package ports declares the interfaces the registry core depends on:
// capability sources, manifest parsing, state storage, confirmation
// prompts, planner notices and metrics. Adapters live under
// infrastructure/ and application/.
package ports
