package payment

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// batchConcurrency bounds how many payments run against the external
// collaborators at once.
const batchConcurrency = 5

// ProcessBatch runs each payment through the pipeline with bounded
// concurrency. One item's failure never aborts the batch: errors are
// converted into failed result entries, and the returned slice always
// has one entry per input in input order.
func (o *Orchestrator) ProcessBatch(ctx context.Context, inputs []Input) []Result {
	results := make([]Result, len(inputs))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(batchConcurrency)
	for i, in := range inputs {
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					results[i] = Result{
						State:            StateFailed,
						OriginalAmount:   in.Amount,
						OriginalCurrency: in.Currency,
						Error:            fmt.Sprintf("panic: %v", r),
						CreatedAt:        o.now(),
					}
				}
			}()

			result, procErr := o.ProcessInternationalPayment(ctx, in)
			if procErr != nil {
				result.Error = procErr.Error()
			}
			results[i] = result
			// Item failures stay inside the batch; never cancel siblings.
			return nil
		})
	}
	_ = group.Wait()

	return results
}
