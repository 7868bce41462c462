/*
Package workers sizes and runs the background jobs attached to playlist
entries.

# Sizing

Count and its helpers derive a worker count from GOMAXPROCS, which follows
container CPU limits, instead of runtime.NumCPU, which reports host CPUs:

	numWorkers := workers.ForMixed(8) // 1.5 per CPU, at most 8

The TASK_WORKERS environment variable overrides the computed value. The
limit still applies to the override.

# Pool

Pool runs jobs with bounded concurrency. Every job is keyed by the id of the
entry it works for (thumbnail extraction, duration probing). Removing an
entry calls Cancel with its id, which cancels the context of every pending
and running job for that entry. Jobs still waiting for a slot never start.

	pool := workers.NewPool(workers.ForMixed(4))
	defer pool.Close()

	pool.Submit(entry.ID, func(ctx context.Context) {
		img, ok := gen.Generate(ctx, path)
		...
	})

	pool.Cancel(entry.ID)

Cancellation is advisory. A job that finishes after its entry was removed
must still check that the entry exists before applying its result; the
player does this when it receives the callback.
*/
package workers
