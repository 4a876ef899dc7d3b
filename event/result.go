package event

import "github.com/hashicorp/go-multierror"

// Result is the outcome of one publish call. Handler failures never
// propagate as panics or abort dispatch; they are collected here so
// callers can inspect them instead of only reading logs.
type Result struct {
	// Value is the return value of the last exact-table handler that
	// completed without error on the calling goroutine. Pattern, once,
	// and pool-scheduled handlers never influence it; callers that need
	// a contractual return value must rely on exactly one exact handler.
	Value any

	// Handled is the number of handlers invoked inline.
	Handled int

	// Enqueued is the number of handlers scheduled on the worker pool.
	Enqueued int

	// Errors lists every isolated handler failure, in dispatch order.
	Errors []*HandlerError
}

// Ok returns true if no handler failed inline.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

// Err flattens the collected handler failures into a single error, or
// nil if every handler succeeded.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, he := range r.Errors {
		merr = multierror.Append(merr, he)
	}
	return merr.ErrorOrNil()
}
