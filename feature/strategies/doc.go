// Package strategies serves the public strategy catalog.
//
// Strategy manifests live as JSON objects in a storage bucket. The manager
// syncs them into the database, provisions a dedicated bot per strategy and
// periodically refreshes each strategy's profit stats from its bot.
package strategies
