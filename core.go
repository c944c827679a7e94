package labelshark

import (
	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/leaves"
)

// ConfigurationOptionType represents the possible types of a ConfigurationOption's value.
type ConfigurationOptionType = core.ConfigurationOptionType

const (
	// BoolConfigurationOption reflects the boolean value type.
	BoolConfigurationOption = core.BoolConfigurationOption
	// IntConfigurationOption reflects the integer value type.
	IntConfigurationOption = core.IntConfigurationOption
	// StringConfigurationOption reflects the string value type.
	StringConfigurationOption = core.StringConfigurationOption
	// FloatConfigurationOption reflects a floating point value type.
	FloatConfigurationOption = core.FloatConfigurationOption
	// StringsConfigurationOption reflects the array of strings value type.
	StringsConfigurationOption = core.StringsConfigurationOption
	// PathConfigurationOption reflects the file system path value type.
	PathConfigurationOption = core.PathConfigurationOption
)

// ConfigurationOption allows for the unified, retrospective way to setup Approach-es.
type ConfigurationOption = core.ConfigurationOption

// Approach is the interface of the commit labeling approaches.
type Approach = core.Approach

// IssueLinker is the optional capability of the approaches which report the linked issues.
type IssueLinker = core.IssueLinker

// ApproachRegistry contains the known approaches.
type ApproachRegistry = core.ApproachRegistry

// Dispatcher runs the approaches on the commits.
type Dispatcher = core.Dispatcher

// CommitLabels is the outcome of all the approaches on one commit.
type CommitLabels = core.CommitLabels

// RunSummary holds the information which is always collected by Dispatcher.Run().
type RunSummary = core.RunSummary

// Failure is an error which happened inside an approach.
type Failure = core.Failure

// Logger is the logging interface of the approaches.
type Logger = core.Logger

// Label is a named boolean verdict.
type Label = model.Label

// Labels is the ordered list of labels emitted by an approach.
type Labels = model.Labels

// Commit is a revision with its precomputed issue links.
type Commit = model.Commit

// ErrFatal aborts Dispatcher.Configure() if an approach's error wraps it.
var ErrFatal = core.ErrFatal

const (
	// ConfigLogger is the facts key of the Logger.
	ConfigLogger = core.ConfigLogger
	// FactTrackers is the facts key of the project's issue trackers.
	FactTrackers = core.FactTrackers
	// FactIssueStore is the facts key of the issue store.
	FactIssueStore = core.FactIssueStore
	// FactChangeStore is the facts key of the change store.
	FactChangeStore = core.FactChangeStore
	// FactVCSSystem is the facts key of the processed repository.
	FactVCSSystem = core.FactVCSSystem
)

// NewLogger returns the default logger: info and warnings to stdout, errors to stderr.
func NewLogger() Logger {
	return core.NewLogger()
}

// NewDispatcher initializes a new instance of Dispatcher struct.
func NewDispatcher(approaches ...Approach) *Dispatcher {
	return core.NewDispatcher(approaches...)
}

// DefaultRegistry returns a fresh registry with every built-in approach.
func DefaultRegistry() *ApproachRegistry {
	return leaves.NewRegistry()
}
