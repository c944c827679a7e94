package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// ApproachRegistry is the ordered collection of the known Approach-es. The order of
// registration defines the order of execution and of the emitted labels.
type ApproachRegistry struct {
	approaches []Approach
	names      map[string]int
}

// NewRegistry creates an empty ApproachRegistry.
func NewRegistry() *ApproachRegistry {
	return &ApproachRegistry{names: map[string]int{}}
}

// Register adds another Approach to the registry. Names must be unique.
func (registry *ApproachRegistry) Register(approach Approach) error {
	name := approach.Name()
	if name == "" || strings.ContainsAny(name, " \t") {
		return errors.Errorf("invalid approach name %q", name)
	}
	if _, exists := registry.names[name]; exists {
		return errors.Errorf("approach %s is already registered", name)
	}
	registry.names[name] = len(registry.approaches)
	registry.approaches = append(registry.approaches, approach)
	return nil
}

// MustRegister is Register() which panics on failure.
func (registry *ApproachRegistry) MustRegister(approaches ...Approach) {
	for _, approach := range approaches {
		if err := registry.Register(approach); err != nil {
			panic(err)
		}
	}
}

// Summon returns the registered Approach with the specified name or nil.
func (registry *ApproachRegistry) Summon(name string) Approach {
	if index, exists := registry.names[name]; exists {
		return registry.approaches[index]
	}
	return nil
}

// Names returns the names of the registered approaches in the registration order.
func (registry *ApproachRegistry) Names() []string {
	names := make([]string, len(registry.approaches))
	for i, approach := range registry.approaches {
		names[i] = approach.Name()
	}
	return names
}

// Approaches returns all the registered approaches in the registration order.
func (registry *ApproachRegistry) Approaches() []Approach {
	return append([]Approach(nil), registry.approaches...)
}

// Select returns the approaches with the specified names, keeping the registration order.
// Empty names or the single "all" select everything.
func (registry *ApproachRegistry) Select(names []string) ([]Approach, error) {
	if len(names) == 0 || (len(names) == 1 && names[0] == "all") {
		return registry.Approaches(), nil
	}
	chosen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if _, exists := registry.names[name]; !exists {
			return nil, errors.Errorf("approach %q is not registered, choose from %s",
				name, strings.Join(registry.Names(), ", "))
		}
		chosen[name] = true
	}
	var result []Approach
	for _, approach := range registry.approaches {
		if chosen[approach.Name()] {
			result = append(result, approach)
		}
	}
	return result, nil
}

// FlagFacts maps the configuration option names to the pointers returned by the flag parser.
type FlagFacts map[string]interface{}

// Resolve dereferences the parsed flag values into the plain facts for Approach.Configure().
func (ff FlagFacts) Resolve() map[string]interface{} {
	facts := map[string]interface{}{}
	for key, ptr := range ff {
		switch val := ptr.(type) {
		case *bool:
			facts[key] = *val
		case *int:
			facts[key] = *val
		case *string:
			facts[key] = *val
		case *float32:
			facts[key] = *val
		case *[]string:
			facts[key] = *val
		default:
			facts[key] = val
		}
	}
	return facts
}

// AddFlags inserts the cmdline options from Approach.ListConfigurationOptions() into the
// given flag set. Several approaches may share an option: it is added once.
// Returns the FlagFacts which yield the facts for Approach.Configure() after parsing.
func (registry *ApproachRegistry) AddFlags(flagSet *pflag.FlagSet) FlagFacts {
	flags := FlagFacts{}
	for _, approach := range registry.approaches {
		name := approach.Name()
		formatHelp := func(desc string) string {
			return fmt.Sprintf("%s [%s]", desc, name)
		}
		for _, opt := range approach.ListConfigurationOptions() {
			if _, exists := flags[opt.Name]; exists || flagSet.Lookup(opt.Flag) != nil {
				continue
			}
			switch opt.Type {
			case BoolConfigurationOption:
				flags[opt.Name] = flagSet.Bool(opt.Flag, opt.Default.(bool), formatHelp(opt.Description))
			case IntConfigurationOption:
				flags[opt.Name] = flagSet.Int(opt.Flag, opt.Default.(int), formatHelp(opt.Description))
			case StringConfigurationOption, PathConfigurationOption:
				flags[opt.Name] = flagSet.String(opt.Flag, opt.Default.(string), formatHelp(opt.Description))
			case FloatConfigurationOption:
				flags[opt.Name] = flagSet.Float32(opt.Flag, opt.Default.(float32), formatHelp(opt.Description))
			case StringsConfigurationOption:
				flags[opt.Name] = flagSet.StringSlice(opt.Flag, opt.Default.([]string), formatHelp(opt.Description))
			}
		}
	}
	return flags
}
