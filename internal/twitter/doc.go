// Package twitter is a minimal client for the Twitter REST API v1.1
// statuses/lookup endpoint.
//
// Requests are signed with OAuth 1.0a user context credentials. The client
// owns the retry budget for a lookup call: transient failures (transport
// errors and 5xx responses) are retried a fixed number of times with a
// constant delay, and rate-limit responses optionally block until the
// rate-limit window resets. Callers see at most one logical attempt.
package twitter
