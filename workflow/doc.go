// Package workflow provides the programming model for writing durable
// workflow code hosted by a worker.
//
// A workflow is a regular Go function registered under a type name. It takes
// a context.Context and a *workflow.Context, then any number of typed
// arguments, and returns a result and an error (or just an error):
//
//	func OrderWorkflow(ctx context.Context, wc *workflow.Context, order Order) (Receipt, error) {
//		receipt, err := workflow.ExecuteActivity[Receipt](ctx, wc, "charge-card", opts, order)
//		if err != nil {
//			return Receipt{}, err
//		}
//		return receipt, nil
//	}
//
// # Determinism
//
// The engine replays a workflow's recorded history to rebuild its state, so
// workflow code must make the same decisions on every run. Inside a workflow
// function:
//   - read time with workflow.Now, never time.Now
//   - sleep with workflow.Sleep, never time.Sleep
//   - draw randomness and UUIDs through the context (NewGUID,
//     NextRandomInt, NextRandomBytes) or workflow.SideEffect
//   - put every other non-deterministic operation in an activity
//
// Exactly one context operation may be in flight per instance; issuing a
// second one concurrently fails with a parallel-operation error rather than
// corrupting the recorded order of decisions.
//
// # Versioning
//
// When workflow logic changes while old runs are still replaying, guard the
// change with GetVersion:
//
//	v, err := workflow.GetVersion(ctx, wc, "charge-twice-fix", 1, 2)
//	if v == 1 {
//		// original behavior, kept for old histories
//	}
//
// # Finishing a run
//
// Returning a value completes the workflow. To restart it with fresh
// arguments instead, return workflow.ContinueAsNew:
//
//	return workflow.ContinueAsNew(wc, workflow.ContinueAsNewOptions{}, nextBatch)
package workflow
