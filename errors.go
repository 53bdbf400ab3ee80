package textsplit

import "fmt"

// SplitError is a fatal failure: the requested operation could not start
// and no partial state was created. The only fatal condition in this
// library is an unusable root node; everything else degrades to a safe
// fallback and is reported as a SplitWarning.
type SplitError struct {
	Op    string // operation that failed, e.g. "partition"
	Issue string
}

// Error implements the error interface.
func (e SplitError) Error() string {
	return fmt.Sprintf("text splitting: %s: %s", e.Op, e.Issue)
}

// SplitWarning is a recoverable anomaly: execution continued with a
// well-defined fallback. Warnings are traced when they occur and
// accumulate on the Result for later inspection.
type SplitWarning struct {
	Stage string // pipeline stage, e.g. "project", "resplit"
	Issue string
}

// String returns a human-readable representation of the warning.
func (w SplitWarning) String() string {
	return fmt.Sprintf("[WARNING] %s: %s", w.Stage, w.Issue)
}
