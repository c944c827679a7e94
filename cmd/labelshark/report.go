package main

import (
	"fmt"
	"io"
	"time"

	"github.com/cyraxred/labelshark"
	"github.com/cyraxred/labelshark/internal/yaml"
)

// report accumulates the labels of the processed commits.
type report struct {
	uri        string
	approaches []string
	commits    []*labelshark.CommitLabels
}

func newReport(uri string, dispatcher *labelshark.Dispatcher) *report {
	return &report{uri: uri, approaches: dispatcher.Active()}
}

func (rep *report) add(labels *labelshark.CommitLabels) {
	rep.commits = append(rep.commits, labels)
}

func (rep *report) print(writer io.Writer, summary *labelshark.RunSummary, beginTime time.Time) {
	fmt.Fprintln(writer, "labelshark:")
	fmt.Fprintln(writer, "  version:", yaml.SafeString(labelshark.BinaryVersion))
	fmt.Fprintln(writer, "  hash:", labelshark.BinaryGitHash)
	fmt.Fprintln(writer, "  repository:", yaml.SafeString(rep.uri))
	fmt.Fprintln(writer, "  begin_unix_time:", beginTime.Unix())
	fmt.Fprintln(writer, "  end_unix_time:", beginTime.Add(summary.RunTime).Unix())
	fmt.Fprintln(writer, "  commits:", summary.Commits)
	fmt.Fprintln(writer, "  run_time:", summary.RunTime.Nanoseconds()/1e6)
	fmt.Fprintln(writer, "  approaches:", yaml.SafeList(rep.approaches))
	fmt.Fprintln(writer, "  disabled:", yaml.SafeList(summary.Disabled))
	fmt.Fprintln(writer, "  sink_errors:", summary.SinkErrors)
	yaml.PrintCounts(writer, summary.Positives, 2, "positives")
	runTimes := map[string]int{}
	for name, seconds := range summary.RunTimePerApproach {
		runTimes[name] = int(seconds * 1000)
	}
	yaml.PrintCounts(writer, runTimes, 2, "run_time_per_approach")
	if len(summary.Failures) == 0 {
		fmt.Fprintln(writer, "  failures: []")
	} else {
		fmt.Fprintln(writer, "  failures:")
		for _, failure := range summary.Failures {
			fmt.Fprintln(writer, "    -", yaml.SafeString(failure.Error()))
		}
	}
	if len(rep.commits) == 0 {
		fmt.Fprintln(writer, "commits: []")
		return
	}
	fmt.Fprintln(writer, "commits:")
	for _, result := range rep.commits {
		fmt.Fprintln(writer, "  - hash:", result.Commit.Hash)
		yaml.PrintBools(writer, result.Labels.Map(), 4, "labels")
		if len(result.IssueLinks) > 0 {
			yaml.PrintLists(writer, result.IssueLinks, 4, "issues")
		}
		if len(result.Failures) > 0 {
			failed := make([]string, len(result.Failures))
			for i, failure := range result.Failures {
				failed[i] = failure.Approach
			}
			fmt.Fprintln(writer, "    failed:", yaml.SafeList(failed))
		}
	}
}
