package fleet

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the worker pool when the caller does not.
const DefaultConcurrency = 8

// Operation is one per-repository action. Operations run to completion once
// dispatched; the orchestrator never cancels or retries them.
type Operation[ResultType any] func(executionContext context.Context, handle RepositoryHandle) (ResultType, error)

// Outcome pairs a repository with its operation result or error.
type Outcome[ResultType any] struct {
	Handle RepositoryHandle
	Result ResultType
	Err    error
}

// Run executes the operation once per repository on a bounded worker pool.
// One repository's failure never prevents another's operation from running
// or being reported; the returned slice always has one entry per input
// handle, in input order, regardless of completion order.
func Run[ResultType any](executionContext context.Context, handles []RepositoryHandle, operation Operation[ResultType], concurrencyLimit int) []Outcome[ResultType] {
	if concurrencyLimit <= 0 {
		concurrencyLimit = DefaultConcurrency
	}

	outcomes := make([]Outcome[ResultType], len(handles))

	workerGroup, groupContext := errgroup.WithContext(executionContext)
	workerGroup.SetLimit(concurrencyLimit)

	for handleIndex, repositoryHandle := range handles {
		handleIndex, repositoryHandle := handleIndex, repositoryHandle
		workerGroup.Go(func() error {
			operationResult, operationError := operation(groupContext, repositoryHandle)
			outcomes[handleIndex] = Outcome[ResultType]{
				Handle: repositoryHandle,
				Result: operationResult,
				Err:    operationError,
			}
			// Operation errors are outcomes, not group failures.
			return nil
		})
	}

	// Workers never return errors, so Wait only synchronizes.
	_ = workerGroup.Wait()

	return outcomes
}
