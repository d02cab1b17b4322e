/*
Package status tracks the outcome of every file in a rewrite run.

	            +-------------+
	            |   Status    |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   Files   |           | Records |
	| (Manager) |           |(Tracker)|
	+-----------+           +---------+

🎯 Purpose:
- Reads source files and replaces them atomically
- Records one ChangeRecord per file with its terminal FileState
- Builds the run Report sorted by path
- Formats records, summaries and unified diffs

🔄 Flow:
1. The orchestrator reads a file through a FileManager
2. After transforming it, the orchestrator writes through WriteFileAtomic
3. Each outcome is handed to Tracker.Track, safe from many workers
4. Tracker.Report produces the final Report

⚡ File states:
- unchanged, written, would-write (dry run)
- read-failed, transform-failed, write-failed

🔍 Example:

	fm := status.New()
	tracker := status.NewTracker()

	content, err := fm.ReadFile(ctx, path)
	...
	tracker.Track(ctx, status.ChangeRecord{Path: path, State: status.StateWritten, Changed: true})

	report := tracker.Report(false, false)
	fmt.Print(status.WriteText(report, false))
*/
package status
