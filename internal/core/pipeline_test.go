package core

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestConfigurationOptionTypeString(t *testing.T) {
	opt := ConfigurationOptionType(0)
	assert.Equal(t, opt.String(), "")
	opt = ConfigurationOptionType(1)
	assert.Equal(t, opt.String(), "int")
	opt = ConfigurationOptionType(2)
	assert.Equal(t, opt.String(), "string")
	opt = ConfigurationOptionType(3)
	assert.Equal(t, opt.String(), "float")
	opt = ConfigurationOptionType(4)
	assert.Equal(t, opt.String(), "string")
	opt = ConfigurationOptionType(5)
	assert.Equal(t, opt.String(), "path")
	opt = ConfigurationOptionType(6)
	assert.Panics(t, func() { _ = opt.String() })
}

func TestConfigurationOptionFormatDefault(t *testing.T) {
	opt := ConfigurationOption{Type: StringConfigurationOption, Default: "ololo"}
	assert.Equal(t, opt.FormatDefault(), "\"ololo\"")
	opt = ConfigurationOption{Type: IntConfigurationOption, Default: 7}
	assert.Equal(t, opt.FormatDefault(), "7")
	opt = ConfigurationOption{Type: BoolConfigurationOption, Default: false}
	assert.Equal(t, opt.FormatDefault(), "false")
	opt = ConfigurationOption{Type: FloatConfigurationOption, Default: float32(0.5)}
	assert.Equal(t, opt.FormatDefault(), "0.5")
	opt = ConfigurationOption{Type: StringsConfigurationOption, Default: []string{"one", "two"}}
	assert.Equal(t, opt.FormatDefault(), "\"one,two\"")
	opt = ConfigurationOption{Type: PathConfigurationOption, Default: "data.csv"}
	assert.Equal(t, opt.FormatDefault(), "\"data.csv\"")
}

func TestFailureError(t *testing.T) {
	f := Failure{Approach: "szz", Err: errors.New("boom")}
	assert.Equal(t, "szz: boom", f.Error())
	f.Commit = "abc"
	assert.Equal(t, "szz on abc: boom", f.Error())
}

func TestRunSummaryMerge(t *testing.T) {
	s1 := &RunSummary{Commits: 2, RunTime: time.Second, SinkErrors: 1}
	s2 := &RunSummary{
		Commits:            3,
		RunTime:            2 * time.Second,
		RunTimePerApproach: map[string]float64{"szz": 1.5},
		Positives:          map[string]int{"szz_bugfix": 2},
		Failures:           []Failure{{Approach: "szz"}},
	}
	s1.Merge(s2)
	s1.Merge(s2)
	assert.Equal(t, 8, s1.Commits)
	assert.Equal(t, 5*time.Second, s1.RunTime)
	assert.Equal(t, 1, s1.SinkErrors)
	assert.Equal(t, 3.0, s1.RunTimePerApproach["szz"])
	assert.Equal(t, 4, s1.Positives["szz_bugfix"])
	assert.Len(t, s1.Failures, 2)
}
