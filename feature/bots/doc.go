// Package bots manages the lifecycle of coingro bot instances.
//
// The orchestrator reconciles bot rows in the database with pods in the
// cluster: missing instances are created, unhealthy ones replaced. The HTTP
// handler exposes bot management endpoints and proxies the REST API of
// individual bots, addressed by a bot_id query param, with per-user access
// control.
package bots
