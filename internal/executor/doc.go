// Package executor runs dictionary searches asynchronously.
//
// Submit returns a Future immediately. The Future resolves exactly once, to
// Completed, Cancelled or Failed. Cancelling a Future resolves it at once
// and cancels the context handed to the backend, so a blocking SQLite query
// is interrupted. If the search finishes first, a later Cancel is a no-op.
//
//	f, err := exec.Submit(query.Hanzi("爱", 20, 0))
//	if err != nil {
//		return err
//	}
//	defer f.Cancel()
//	entries, err := f.ResultsContext(ctx)
package executor
