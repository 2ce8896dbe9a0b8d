// Package infra contains technical adapters such as the optimizer
// HTTP client, the websocket push channel and metrics exporters.
// These packages should depend only on the interfaces defined in the
// core packages.
package infra
