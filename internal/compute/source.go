package compute

import (
	"context"
	"errors"
	"fmt"

	"github.com/nholik/devops-course/internal/inventory"
)

// Failure operations reported by FetchError.
const (
	OpExec    = "exec"
	OpExit    = "exit"
	OpTimeout = "timeout"
	OpDecode  = "decode"
)

// Source lists compute instances from the cloud.
type Source interface {
	List(ctx context.Context) Result
}

// Result is the outcome of a listing. A failed listing keeps its error for
// diagnostics while still behaving as an empty instance list.
type Result struct {
	Instances []inventory.Instance
	Err       error
}

// Available reports whether the upstream listing succeeded.
func (r Result) Available() bool {
	return r.Err == nil
}

// InstancesOrEmpty returns the listed instances, or an empty list when the
// listing failed.
func (r Result) InstancesOrEmpty() []inventory.Instance {
	if r.Err != nil || r.Instances == nil {
		return []inventory.Instance{}
	}
	return r.Instances
}

// Op returns the failure operation, or "" for a successful result.
func (r Result) Op() string {
	var fetchErr *FetchError
	if errors.As(r.Err, &fetchErr) {
		return fetchErr.Op
	}
	return ""
}

// FetchError captures why instances were unavailable.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func wrapFetch(op string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Op: op, Err: err}
}
