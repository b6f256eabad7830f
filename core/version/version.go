// Package version exposes the controller build version.
package version

// Version is the controller release version. Overridden at build time via
// -ldflags "-X .../core/version.Version=...".
var Version = "1.0.0"
