// Package api exposes the relay's HTTP surface: subscription and publication
// registration plus event publishing, all as a mountable chi router.
//
// Publishing fans out: one delivery envelope is enqueued per subscription
// registered for the published target, and the dispatch engine drives the
// retries from there. The handler answers 202 as soon as the envelopes are
// queued; delivery outcomes are visible only in logs.
package api
