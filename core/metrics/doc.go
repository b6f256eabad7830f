// Package metrics defines the Prometheus collectors exported by the
// controller. The /metrics endpoint is registered by the start command.
package metrics
