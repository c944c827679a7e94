package core

import (
	"context"
	"io"
	"runtime/debug"
	"sort"
	"time"

	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/pkg/errors"
)

// DefaultProgressInterval is the number of commits between two progress log records.
const DefaultProgressInterval = 100

// CommitLabels is the outcome of running every active approach on one commit.
type CommitLabels struct {
	// Commit is the labeled commit.
	Commit *model.Commit
	// Labels are namespaced as "<approach>_<label>" and ordered by approach.
	Labels model.Labels
	// IssueLinks maps the names of the IssueLinker approaches to the issues they found.
	IssueLinks map[string][]string
	// Failures are the approaches which failed on this commit.
	Failures []Failure
}

// Dispatcher feeds commits to the approaches one at a time and aggregates their labels.
// A failing approach contributes no labels to the commit and does not affect the others.
type Dispatcher struct {
	// OnProgress is the callback which is invoked in Run() after each commit. The first
	// argument is the number of processed commits, the second is the total number of commits
	// (0 if unknown) and the third is the hash of the last commit.
	OnProgress func(int, int, string)

	// OnCommit is invoked in Run() with the labels of each commit.
	OnCommit func(*CommitLabels)

	// ProgressInterval is the number of commits between two progress log records. 0 disables.
	ProgressInterval int

	// DryRun indicates whether the labels are not persisted.
	DryRun bool

	approaches []Approach
	active     []Approach
	disabled   []string
	configured bool

	l Logger
}

// NewDispatcher initializes a new instance of Dispatcher struct.
func NewDispatcher(approaches ...Approach) *Dispatcher {
	return &Dispatcher{
		ProgressInterval: DefaultProgressInterval,
		approaches:       approaches,
		l:                NewLogger(),
	}
}

// SetLogger changes the logger of the dispatcher.
func (d *Dispatcher) SetLogger(l Logger) {
	d.l = l
}

// Configure calls Approach.Configure() on every approach. An approach which fails is disabled
// for the rest of the run unless the error is caused by ErrFatal: then the whole
// configuration fails.
func (d *Dispatcher) Configure(facts map[string]interface{}) error {
	if l, exists := facts[ConfigLogger].(Logger); exists {
		d.l = l
	} else {
		facts[ConfigLogger] = d.l
	}
	d.active = d.active[:0]
	d.disabled = d.disabled[:0]
	for _, approach := range d.approaches {
		err := configureSafely(approach, facts)
		if err == nil {
			d.active = append(d.active, approach)
			continue
		}
		if errors.Is(err, ErrFatal) {
			d.l.Errorf("%s failed to configure: %v\n", approach.Name(), err)
			return errors.Wrapf(err, "configuring %s", approach.Name())
		}
		d.l.Warnf("%s is disabled: %v\n", approach.Name(), err)
		d.disabled = append(d.disabled, approach.Name())
	}
	d.configured = true
	return nil
}

func configureSafely(approach Approach, facts map[string]interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return approach.Configure(facts)
}

// Active returns the names of the approaches which are going to run.
func (d *Dispatcher) Active() []string {
	names := make([]string, len(d.active))
	for i, approach := range d.active {
		names[i] = approach.Name()
	}
	return names
}

// Disabled returns the names of the approaches which failed to configure.
func (d *Dispatcher) Disabled() []string {
	return append([]string(nil), d.disabled...)
}

// Label runs every active approach on the commit. Configure() must be called beforehand.
func (d *Dispatcher) Label(ctx context.Context, commit *model.Commit) *CommitLabels {
	result, _ := d.label(ctx, commit)
	return result
}

func (d *Dispatcher) label(ctx context.Context, commit *model.Commit) (*CommitLabels, map[string]float64) {
	result := &CommitLabels{Commit: commit, IssueLinks: map[string][]string{}}
	timings := map[string]float64{}
	for _, approach := range d.active {
		startTime := time.Now()
		labels, links, err := labelSafely(ctx, approach, commit)
		timings[approach.Name()] += time.Since(startTime).Seconds()
		if err != nil {
			failure := Failure{Approach: approach.Name(), Commit: commit.Hash, Err: err}
			d.l.Errorf("%s failed on commit %s (%s): %v\n", approach.Name(), commit.Hash, commit.ID, err)
			result.Failures = append(result.Failures, failure)
			continue
		}
		result.Labels = append(result.Labels, labels.Prefixed(approach.Name())...)
		if links != nil {
			result.IssueLinks[approach.Name()] = dedupSorted(links)
		}
	}
	return result, timings
}

func labelSafely(ctx context.Context, approach Approach, commit *model.Commit) (
	labels model.Labels, links []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			labels, links = nil, nil
			err = errors.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	if linker, ok := approach.(IssueLinker); ok {
		labels, links, err = linker.LabelWithLinks(ctx, commit)
		if err == nil && links == nil {
			links = []string{}
		}
		return
	}
	labels, err = approach.Label(ctx, commit)
	return
}

func dedupSorted(items []string) []string {
	result := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	sort.Strings(result)
	return result
}

// Run labels every commit from the iterator, strictly one at a time, and merges the labels
// into the sink unless DryRun is set or sink is nil. total is only used for the progress
// reports. Errors of the sink are logged and counted, the run continues. Run stops at the
// first iterator error and returns it together with the summary of the processed commits.
func (d *Dispatcher) Run(ctx context.Context, commits store.CommitIter, total int,
	sink store.LabelStore) (*RunSummary, error) {
	if !d.configured {
		return nil, errors.New("Dispatcher.Configure() must be called before Run()")
	}
	startRunTime := time.Now()
	summary := &RunSummary{
		RunTimePerApproach: map[string]float64{},
		Positives:          map[string]int{},
		Disabled:           d.Disabled(),
	}
	for _, name := range d.disabled {
		summary.Failures = append(summary.Failures, Failure{
			Approach: name, Err: errors.New("disabled at configuration")})
	}
	onProgress := d.OnProgress
	if onProgress == nil {
		onProgress = func(int, int, string) {}
	}
	defer func() {
		summary.RunTime = time.Since(startRunTime)
	}()
	for {
		commit, err := commits.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, errors.Wrapf(err, "reading commit #%d", summary.Commits+1)
		}
		result, timings := d.label(ctx, commit)
		for key, val := range timings {
			summary.RunTimePerApproach[key] += val
		}
		summary.Failures = append(summary.Failures, result.Failures...)
		for _, label := range result.Labels {
			if label.Value {
				summary.Positives[label.Name]++
			}
		}
		if !d.DryRun && sink != nil && len(result.Labels) > 0 {
			if err = sink.UpsertLabels(ctx, commit.ID, result.Labels.Map()); err != nil {
				d.l.Errorf("failed to store the labels of %s: %v\n", commit.Hash, err)
				summary.SinkErrors++
			}
		}
		if d.OnCommit != nil {
			d.OnCommit(result)
		}
		summary.Commits++
		onProgress(summary.Commits, total, commit.Hash)
		if d.ProgressInterval > 0 && summary.Commits%d.ProgressInterval == 0 {
			d.l.Infof("processed %d commits\n", summary.Commits)
		}
	}
	return summary, nil
}
