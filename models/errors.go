package models

import "fmt"

// AuthError means the remote source rejected, or never received, the
// credential for the request. It is fatal: the caller gets no series at
// all, never a partial one.
type AuthError struct {
	Source Source
	Detail string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %s", e.Source, e.Detail)
}

// NotFoundError means the remote source does not recognize the requested
// identifier.
type NotFoundError struct {
	Source Source
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: unknown identifier %q", e.Source, e.ID)
}

// TransientError wraps a retryable failure (network error, timeout,
// throttling, server error) that persisted through the bounded retry
// budget.
type TransientError struct {
	Source Source
	ID     string
	Err    error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure fetching %q: %v", e.Source, e.ID, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// InsufficientDataError means a derived metric could not be computed from
// the aligned inputs. No partial result accompanies it.
type InsufficientDataError struct {
	Metric string
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: %s", e.Metric, e.Reason)
}
