package cache

// BatchError pairs a failed item with the error it produced.
type BatchError struct {
	Item string
	Err  error
}

// BatchResult reports the outcome of a best-effort batch operation.
// Batch scans continue past individual item failures; callers inspect the
// result instead of relying on log output.
type BatchResult struct {
	Succeeded []string
	Failed    []BatchError
}

// Ok reports whether every item succeeded.
func (r *BatchResult) Ok() bool {
	return len(r.Failed) == 0
}

func (r *BatchResult) succeed(item string) {
	r.Succeeded = append(r.Succeeded, item)
}

func (r *BatchResult) fail(item string, err error) {
	r.Failed = append(r.Failed, BatchError{Item: item, Err: err})
}

// merge folds another result into this one.
func (r *BatchResult) merge(other *BatchResult) {
	if other == nil {
		return
	}
	r.Succeeded = append(r.Succeeded, other.Succeeded...)
	r.Failed = append(r.Failed, other.Failed...)
}
