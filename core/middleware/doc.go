// Package middleware groups the HTTP middleware used by the API server:
// rayid (request correlation IDs) and auth (API key enforcement). User
// authorization against the users table lives with the bots feature.
package middleware
