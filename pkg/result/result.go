// Package result carries the outcome of best-effort multi-step operations.
//
// Handlers that perform several independent side effects (delete a storage
// record, delete two chat messages) attempt every step and accumulate the
// failures instead of short-circuiting on the first one.
package result

import "errors"

// AppResult is an overall pass/fail plus the sub-errors collected along the way.
// The zero value is a success with no errors.
type AppResult struct {
	failed bool
	errs   []error
}

// OK returns a successful result.
func OK() AppResult {
	return AppResult{}
}

// Fail returns a failed result carrying err (which may be nil for a bare failure).
func Fail(err error) AppResult {
	r := AppResult{failed: true}
	if err != nil {
		r.errs = append(r.errs, err)
	}
	return r
}

// OK reports whether every merged step succeeded.
func (r AppResult) OK() bool {
	return !r.failed
}

// Err returns the accumulated sub-errors joined together, or nil on success.
func (r AppResult) Err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return errors.Join(r.errs...)
}

// Errs returns the individual sub-errors in merge order.
func (r AppResult) Errs() []error {
	return r.errs
}

// Merge folds other into r: the merged result fails if either side failed, and
// keeps both error lists.
func (r *AppResult) Merge(other AppResult) {
	r.failed = r.failed || other.failed
	r.errs = append(r.errs, other.errs...)
}

// MergeErr records one step outcome: a nil err is a success, anything else a failure.
func (r *AppResult) MergeErr(err error) {
	if err == nil {
		return
	}
	r.failed = true
	r.errs = append(r.errs, err)
}
