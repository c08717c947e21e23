// Package orchestrator wires the registry loader, the relationship fetcher, the
// document hydrator and the HTML renderer into one pipeline for callers that
// prefer a single entry point.
package orchestrator
