package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/tweetcollector/internal/config"
	"github.com/nao1215/tweetcollector/internal/model"
	"github.com/nao1215/tweetcollector/internal/twitter"
)

// API is the statuses/lookup call. *twitter.Client implements it.
type API interface {
	StatusesLookup(ctx context.Context, ids []model.ID) ([]model.LookupRecord, error)
}

// Progress describes the batch about to be requested.
// First and Last are 1-based positions in the input id list.
type Progress struct {
	Batch int
	First int
	Last  int
	Total int
}

// String returns the progress line printed per batch.
func (p Progress) String() string {
	return fmt.Sprintf("Query chunk %d:%d of %d", p.First, p.Last, p.Total)
}

// Result is the outcome of a lookup over all batches.
type Result struct {
	// Records holds every returned document, batch by batch, in response order.
	Records []model.LookupRecord

	// Errors holds one entry per id of every failed batch.
	Errors []model.LookupError

	// Batches keeps the per-batch outcomes in request order.
	Batches []model.BatchOutcome
}

// FailedBatches returns the number of batches that failed.
func (r *Result) FailedBatches() int {
	n := 0
	for _, b := range r.Batches {
		if b.Failed() {
			n++
		}
	}
	return n
}

type options struct {
	batchSize int
	progress  func(Progress)
	logger    *slog.Logger
	metrics   *Metrics
	out       io.Writer
}

// Option configures Lookup and Run.
type Option func(*options)

// WithBatchSize sets the number of ids per call. Lookup and Run fail with
// config.ErrInvalidBatchSize when n is outside 1..config.MaxBatchSize.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithProgress registers a callback invoked before each batch is requested.
func WithProgress(fn func(Progress)) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOutput prints the human-readable progress lines to w: the id count,
// one "Query chunk" line per batch, the API error of each failed batch and
// the final tally.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// printf writes to the configured output, if any.
func (o *options) printf(format string, args ...any) {
	if o.out != nil {
		fmt.Fprintf(o.out, format, args...) //nolint:errcheck // progress output is best effort
	}
}

// WithMetrics sets the collectors updated per batch.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		batchSize: config.DefaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) validate() error {
	if o.batchSize < 1 || o.batchSize > config.MaxBatchSize {
		return fmt.Errorf("%w: got %d", config.ErrInvalidBatchSize, o.batchSize)
	}
	return nil
}

// Lookup requests ids from api in consecutive batches of the configured size,
// preserving input order. Batches run one at a time so that the client's
// rate-limit handling sees a single stream of requests.
//
// An invalid batch size is rejected before any request. Otherwise Lookup
// only stops early when ctx is cancelled; the partial result is returned
// together with ctx's error.
func Lookup(ctx context.Context, api API, ids []model.ID, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}
	res := &Result{
		Records: make([]model.LookupRecord, 0, len(ids)),
	}

	for i, start := 0, 0; start < len(ids); i, start = i+1, start+o.batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		end := min(start+o.batchSize, len(ids))
		batch := ids[start:end]

		p := Progress{Batch: i, First: start + 1, Last: end, Total: len(ids)}
		o.logger.Info(p.String(), "batch", i, "size", len(batch))
		o.printf("%s\n", p)
		if o.progress != nil {
			o.progress(p)
		}

		outcome := model.BatchOutcome{Index: i, IDs: batch}
		records, err := api.StatusesLookup(ctx, batch)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			outcome.Err = batchError(err)
			o.logger.Warn("lookup batch failed",
				"batch", i,
				"code", outcome.Err.Code,
				"message", outcome.Err.Message,
			)
			o.printf("%d %s\n", outcome.Err.Code, outcome.Err.Message)
			res.Errors = append(res.Errors, outcome.Errors()...)
		} else {
			outcome.Records = records
			res.Records = append(res.Records, records...)
		}
		o.metrics.observeBatch(outcome)
		res.Batches = append(res.Batches, outcome)
	}
	return res, nil
}

// batchError converts an API failure into the code and message recorded for
// every id of the batch. API errors report their code and the HTTP reason
// phrase; anything else gets code 0 and the error text.
func batchError(err error) *model.BatchError {
	var apiErr *twitter.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Reason
		if msg == "" {
			msg = apiErr.Message
		}
		return &model.BatchError{Code: apiErr.Code, Message: msg}
	}
	return &model.BatchError{Code: 0, Message: err.Error()}
}
