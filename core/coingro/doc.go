// Package coingro holds the settings for managed coingro bot instances and
// the HTTP client used to talk to their REST APIs.
//
// Bots expose the same JSON API the controller proxies under /api/v1; the
// client therefore returns raw JSON payloads for pass-through endpoints and
// decodes only the profit statistics the controller persists itself.
//
// Calls are retried with a linear backoff. Exhausted retries surface as a
// TemporaryError so the worker loop can distinguish transient bot outages
// from operational failures.
package coingro
