// Package k8s wraps the Kubernetes API operations the controller needs to
// manage bot instances.
//
// Each bot instance is a pod plus a service of the same name, labelled
// app=coingro-bot and creator=coingro-controller, created in the configured
// namespace. Pods carry startup and liveness probes against the bot's
// /api/v1/ping endpoint and mount the shared user-data volume.
//
// The Client interface keeps the surface small and mockable; transient API
// failures are retried with backoff and surface as temporary errors that the
// worker loop retries instead of stopping.
package k8s
