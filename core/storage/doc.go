// Package storage provides the object storage client used for the strategy
// catalog.
//
// Strategy manifests are JSON documents kept in an S3-compatible bucket
// (MinIO). The Client interface exposes only the read operations the
// controller needs (bucket check, list, get), which keeps the mock surface
// small for tests.
package storage
