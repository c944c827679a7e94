/*
Package labelshark labels the commits of a repository: bug fixes, refactorings, test,
documentation, feature and maintenance changes.

Each labeling approach implements Approach and is registered in an ApproachRegistry.
Dispatcher runs the selected approaches on every commit one at a time, namespaces the
labels as "<approach>_<label>" and merges them into a LabelStore. A failing approach
never takes the others down: its failures are collected in RunSummary.

	registry := labelshark.DefaultRegistry()
	approaches, _ := registry.Select([]string{"adjustedszz", "ensemble"})
	dispatcher := labelshark.NewDispatcher(approaches...)
	err := dispatcher.Configure(map[string]interface{}{
		labelshark.FactIssueStore:  issues,
		labelshark.FactChangeStore: changes,
		labelshark.FactTrackers:    trackers,
	})
	// ... handle err ...
	summary, err := dispatcher.Run(ctx, commits, total, labels)

The bug fix approaches follow the issue links in the commit messages: every issue tracker
of the project extracts the identifiers with its own pattern (Jira keys, Bugzilla and GitHub
numbers), the issue type and the resolution history decide whether the issue is a fixed bug,
and the keywords of the message are the last resort. The ensemble approach combines the
keyword votes, the code evidence and the votes of several trained models.
*/
package labelshark
