package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cyraxred/labelshark/internal/model"
	"github.com/pkg/errors"
)

// ConfigurationOptionType represents the possible types of a ConfigurationOption's value.
type ConfigurationOptionType int

const (
	// BoolConfigurationOption reflects the boolean value type.
	BoolConfigurationOption ConfigurationOptionType = iota
	// IntConfigurationOption reflects the integer value type.
	IntConfigurationOption
	// StringConfigurationOption reflects the string value type.
	StringConfigurationOption
	// FloatConfigurationOption reflects a floating point value type.
	FloatConfigurationOption
	// StringsConfigurationOption reflects the array of strings value type.
	StringsConfigurationOption
	// PathConfigurationOption reflects the file system path value type.
	PathConfigurationOption
)

// String() returns an empty string for the boolean type, "int" for integers and "string" for
// strings. It is used in the command line interface to show the argument's type.
func (opt ConfigurationOptionType) String() string {
	switch opt {
	case BoolConfigurationOption:
		return ""
	case IntConfigurationOption:
		return "int"
	case StringConfigurationOption:
		return "string"
	case FloatConfigurationOption:
		return "float"
	case StringsConfigurationOption:
		return "string"
	case PathConfigurationOption:
		return "path"
	}
	log.Panicf("Invalid ConfigurationOptionType value %d", opt)
	return ""
}

// ConfigurationOption allows for the unified, retrospective way to setup Approach-es.
type ConfigurationOption struct {
	// Name identifies the configuration option in facts.
	Name string
	// Description represents the help text about the configuration option.
	Description string
	// Flag corresponds to the CLI token with "--" prepended.
	Flag string
	// Type specifies the kind of the configuration option's value.
	Type ConfigurationOptionType
	// Default is the initial value of the configuration option.
	Default interface{}
}

// FormatDefault converts the default value of ConfigurationOption to string.
// Used in the command line interface to show the argument's default value.
func (opt ConfigurationOption) FormatDefault() string {
	if opt.Type == StringsConfigurationOption {
		return fmt.Sprintf("\"%s\"", strings.Join(opt.Default.([]string), ","))
	}
	if opt.Type != StringConfigurationOption && opt.Type != PathConfigurationOption {
		return fmt.Sprint(opt.Default)
	}
	return fmt.Sprintf("\"%s\"", opt.Default)
}

// ErrFatal marks configuration failures which have no degraded mode. Dispatcher.Configure()
// aborts when an approach returns an error caused by ErrFatal; any other configuration error
// disables only the failed approach.
var ErrFatal = errors.New("fatal configuration failure")

// Approach is the interface for all the commit labeling approaches.
// Label() must not keep any state between the calls: everything it knows about the commit
// is returned in the result.
type Approach interface {
	// Name returns the identity of the approach. It prefixes the emitted label names.
	Name() string
	// Description returns the text which explains what the approach is doing.
	// Should start with a capital letter and end with a dot.
	Description() string
	// ListConfigurationOptions returns the list of available options which can be consumed by Configure().
	ListConfigurationOptions() []ConfigurationOption
	// Configure performs the initial setup of the object by applying parameters from facts.
	// It is called once before the first Label().
	Configure(facts map[string]interface{}) error
	// Label classifies the commit. The returned label names are not namespaced.
	Label(ctx context.Context, commit *model.Commit) (model.Labels, error)
}

// IssueLinker is the optional capability of the approaches which also report the issues
// they found in the commit.
type IssueLinker interface {
	Approach
	// LabelWithLinks works as Label() and additionally returns the deduplicated identities
	// of the issues which were linked to the commit.
	LabelWithLinks(ctx context.Context, commit *model.Commit) (model.Labels, []string, error)
}

// Failure is an error which happened inside an approach.
type Failure struct {
	// Approach is the name of the failed approach.
	Approach string
	// Commit is the revision hash, empty if the approach failed to configure.
	Commit string
	// Err is the reported error.
	Err error
}

// Error formats the failure with its context.
func (f Failure) Error() string {
	if f.Commit == "" {
		return fmt.Sprintf("%s: %v", f.Approach, f.Err)
	}
	return fmt.Sprintf("%s on %s: %v", f.Approach, f.Commit, f.Err)
}

// RunSummary holds the information which is always collected by Dispatcher.Run().
type RunSummary struct {
	// Commits is the number of processed commits.
	Commits int
	// RunTime is the duration of Dispatcher.Run().
	RunTime time.Duration
	// RunTimePerApproach is the time in seconds elapsed by each Approach.
	RunTimePerApproach map[string]float64
	// Positives counts the commits per namespaced label which were labeled true.
	Positives map[string]int
	// Failures are the errors recorded during the run.
	Failures []Failure
	// SinkErrors is the number of commits whose labels could not be persisted.
	SinkErrors int
	// Disabled are the approaches which failed to configure.
	Disabled []string
}

// Merge combines the RunSummary with an other one: the counters and the run times are summed.
func (summary *RunSummary) Merge(other *RunSummary) {
	summary.Commits += other.Commits
	summary.RunTime += other.RunTime
	summary.SinkErrors += other.SinkErrors
	summary.Failures = append(summary.Failures, other.Failures...)
	if summary.RunTimePerApproach == nil {
		summary.RunTimePerApproach = map[string]float64{}
	}
	for key, val := range other.RunTimePerApproach {
		summary.RunTimePerApproach[key] += val
	}
	if summary.Positives == nil {
		summary.Positives = map[string]int{}
	}
	for key, val := range other.Positives {
		summary.Positives[key] += val
	}
}
