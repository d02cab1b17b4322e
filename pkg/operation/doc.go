/*
Package operation runs a compiled rule set over a tree of source files.

	+-------------+
	|  Operation  |
	| (Batch Run) |
	+------+------+
	       |
	+------+------+
	|   Process   |
	| (Transform) |
	+------+------+

🎯 Purpose:
- Walks the configured roots and feeds every candidate through the passes
- Writes a file only when its content changed, and at most once per run
- Keeps going when a single file fails to read, transform or write
- Produces a status.Report with one record per file

🔄 Flow:
1. New compiles the rule set; configuration errors stop here
2. The walker lazily yields candidates
3. Each candidate is read, transformed in memory and written atomically
4. Records are merged into a status.Tracker and turned into a Report

⚡ Concurrency:
Files are processed in discovery order by default. With Concurrency > 1 an
errgroup with a limit fans the work out; Go blocks while every worker is
busy, which keeps discovery from running ahead. Cancelling the context stops
discovery, lets in-flight files finish and marks the report interrupted.

🔍 Example:

	op, err := operation.New(operation.Options{Config: cfg})
	if err != nil {
		return err
	}
	report, err := op.Apply(ctx)
*/
package operation
