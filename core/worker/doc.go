// Package worker runs the controller's throttled reconcile loop.
//
// Each iteration takes at least process_throttle_secs: the controller's
// Process (or ProcessStopped) hook runs, then the worker sleeps the
// remainder of the interval. A heartbeat line is logged periodically so
// operators can tell a healthy idle controller from a wedged one.
//
// Errors from Process fall into two classes: temporary errors (anything
// implementing Temporary() bool, see coingro.TemporaryError) are retried
// after retry_timeout; all other errors flip the controller into the
// stopped state.
package worker
