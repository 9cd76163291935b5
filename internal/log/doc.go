// Package log provides the structured logger used across tweetcollector.
//
// Loggers are plain *slog.Logger values whose handler is wrapped in a
// RedactingHandler. The wrapper masks OAuth material before it reaches the
// output: the four credential fields, signed Authorization headers and
// anything whose key names a secret or token. Tweet ids, counts and paths
// pass through untouched.
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Debug("signing request", "consumer_key", creds.ConsumerKey) // consumer_key=***REDACTED***
//	slog.SetDefault(logger)
package log
