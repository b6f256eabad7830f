// Package server holds configuration for the controller's HTTP API server.
package server
