// Package config loads the labelshark configuration file.
package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/cyraxred/labelshark/internal/store"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// BackendMemory reads the records from a YAML fixture or a Git repository.
	BackendMemory = "memory"
	// BackendMongo reads the records from a smartSHARK MongoDB database.
	BackendMongo = "mongo"
)

// Config is the complete run configuration.
type Config struct {
	Store            StoreConfig            `yaml:"store"`
	VCSURL           string                 `yaml:"vcs_url"`
	IssueSystems     StringList             `yaml:"issue_systems"`
	Approaches       StringList             `yaml:"approaches"`
	GitHub           GitHubConfig           `yaml:"github"`
	Repository       RepositoryConfig       `yaml:"repository"`
	ProgressInterval int                    `yaml:"progress_interval"`
	Persist          bool                   `yaml:"persist"`
	Options          map[string]interface{} `yaml:"options"`
}

// StoreConfig selects the record backend.
type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Fixture string      `yaml:"fixture"`
	Mongo   MongoConfig `yaml:"mongo"`
}

// MongoConfig holds the database connection settings. URI wins over the separate fields.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	AuthDB   string `yaml:"authentication_db"`
	SSL      bool   `yaml:"ssl"`
}

// GitHubConfig holds the settings of the live GitHub issue lookup. Empty token disables it.
type GitHubConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// RepositoryConfig points to a Git repository to read the commits from instead of the store.
type RepositoryConfig struct {
	URI         string `yaml:"uri"`
	Cache       string `yaml:"cache"`
	SSHIdentity string `yaml:"ssh_identity"`
	FirstParent bool   `yaml:"first_parent"`
}

// StringList accepts both a YAML sequence and a comma separated scalar.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (list *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*list = SplitList(value.Value)
		return nil
	}
	var items []string
	if err := value.Decode(&items); err != nil {
		return err
	}
	*list = items
	return nil
}

// SplitList splits a comma separated list and drops the empty items.
func SplitList(text string) []string {
	var result []string
	for _, item := range strings.Split(text, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendMemory,
			Mongo: MongoConfig{
				Database: "smartshark",
				Host:     "localhost",
				Port:     27017,
			},
		},
		IssueSystems:     StringList{"all"},
		Approaches:       StringList{"all"},
		ProgressInterval: 100,
		Persist:          true,
		Options:          map[string]interface{}{},
	}
}

// Load reads the config file at the given path on top of DefaultConfig().
// ${VAR} references are replaced with the environment values before parsing.
func Load(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading the config file")
	}
	return Parse(data)
}

// Parse decodes the YAML document on top of DefaultConfig().
func Parse(data []byte) (*Config, error) {
	data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing the config file")
	}
	if cfg.Options == nil {
		cfg.Options = map[string]interface{}{}
	}
	return cfg, cfg.Validate()
}

// Validate checks the combinations of the settings which can never work.
func (cfg *Config) Validate() error {
	switch cfg.Store.Backend {
	case BackendMemory:
		if cfg.Store.Fixture == "" && cfg.Repository.URI == "" {
			return errors.New("the memory store needs a fixture or a repository")
		}
	case BackendMongo:
		if cfg.Store.Mongo.URI == "" && cfg.Store.Mongo.Host == "" {
			return errors.New("the mongo store needs either the URI or the host")
		}
		if cfg.Store.Mongo.Database == "" {
			return errors.New("the mongo store needs the database name")
		}
	default:
		return errors.Errorf("unknown store backend %q, choose from %s, %s",
			cfg.Store.Backend, BackendMemory, BackendMongo)
	}
	if cfg.ProgressInterval < 0 {
		return errors.Errorf("progress_interval must not be negative: %d", cfg.ProgressInterval)
	}
	return nil
}

// ConnectionURI returns URI or builds it from the separate fields.
func (mongo MongoConfig) ConnectionURI() string {
	if mongo.URI != "" {
		return mongo.URI
	}
	return store.MongoURI(mongo.User, mongo.Password, mongo.Host, mongo.Port, mongo.AuthDB, mongo.SSL)
}

// Facts copies the free-form options. The keys are the approach option names,
// e.g. "Ensemble.Seed".
func (cfg *Config) Facts() map[string]interface{} {
	facts := map[string]interface{}{}
	for key, val := range cfg.Options {
		facts[key] = val
	}
	return facts
}
