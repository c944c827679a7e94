package main

import (
	"os"

	"github.com/cyraxred/labelshark/internal/config"
	"github.com/cyraxred/labelshark/internal/core"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func addRootFlags(cmd *cobra.Command) {
	rootFlags := cmd.Flags()
	rootFlags.String("config", "", "Path to the YAML configuration file. The flags override it.")
	rootFlags.String("env-file", "", "Path to the .env file with the environment variables. "+
		"By default, .env in the current directory is loaded if it exists.")
	rootFlags.String("url", "", "URL of the repository whose commits are labeled.")
	rootFlags.StringSlice("issue-systems", []string{"all"},
		"URLs of the issue trackers in the order of precedence, \"all\" takes every tracker of the project.")
	rootFlags.StringSlice("approaches", []string{"all"},
		"Names of the labeling approaches to run, \"all\" runs every approach. "+
			"\"ensemble\" (included in \"all\") requires --ensemble-dataset with the training CSV.")
	rootFlags.String("fixture", "", "Path to the YAML fixture with the records (memory store).")
	rootFlags.String("db-uri", "", "MongoDB connection string, overrides the other --db-* flags.")
	rootFlags.String("db-database", "smartshark", "MongoDB database name.")
	rootFlags.String("db-hostname", "localhost", "MongoDB host name.")
	rootFlags.Int("db-port", 27017, "MongoDB port.")
	rootFlags.String("db-user", "", "MongoDB user name.")
	rootFlags.String("db-password", "", "MongoDB password.")
	rootFlags.String("db-authentication", "", "MongoDB authentication database.")
	rootFlags.Bool("ssl", false, "Connect to MongoDB over TLS.")
	rootFlags.String("repository", "", "Read the commits and their changes from this Git repository "+
		"(URL, .siva archive or local path) instead of the store.")
	rootFlags.String("cache", "", "Clone the remote repository into this directory instead of memory.")
	rootFlags.String("ssh-identity", "", "Path to SSH identity file (e.g., ~/.ssh/id_rsa) to clone from an SSH remote.")
	rootFlags.Bool("first-parent", false, "Follow only the first parent in the commit history - "+
		"\"git log --first-parent\".")
	rootFlags.String("github-token", "", "GitHub API token to fetch the missing GitHub issues live.")
	rootFlags.String("github-url", "", "GitHub API base URL, e.g. of a GitHub Enterprise instance.")
	rootFlags.Int("progress-interval", core.DefaultProgressInterval,
		"Number of commits between two progress log records, 0 disables.")
	rootFlags.Bool("dry-run", false, "Do not store the labels, only print the report.")
	rootFlags.Bool("quiet", !isTerminal(os.Stdin), "Do not print status updates to stderr.")
	for _, name := range []string{"config", "env-file", "fixture", "ssh-identity", "cache"} {
		if err := cmd.MarkFlagFilename(name); err != nil {
			panic(err)
		}
	}
}

// loadConfig reads the configuration file if any and applies the explicitly set flags on top.
func loadConfig(path string, flags *pflag.FlagSet) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	overrideString := func(name string, target *string) {
		if flags.Changed(name) {
			*target, _ = flags.GetString(name)
		}
	}
	overrideBool := func(name string, target *bool) {
		if flags.Changed(name) {
			*target, _ = flags.GetBool(name)
		}
	}
	overrideInt := func(name string, target *int) {
		if flags.Changed(name) {
			*target, _ = flags.GetInt(name)
		}
	}
	overrideList := func(name string, target *config.StringList) {
		if flags.Changed(name) {
			*target, _ = flags.GetStringSlice(name)
		}
	}
	overrideString("url", &cfg.VCSURL)
	overrideList("issue-systems", &cfg.IssueSystems)
	overrideList("approaches", &cfg.Approaches)
	overrideString("fixture", &cfg.Store.Fixture)
	overrideString("db-uri", &cfg.Store.Mongo.URI)
	overrideString("db-database", &cfg.Store.Mongo.Database)
	overrideString("db-hostname", &cfg.Store.Mongo.Host)
	overrideInt("db-port", &cfg.Store.Mongo.Port)
	overrideString("db-user", &cfg.Store.Mongo.User)
	overrideString("db-password", &cfg.Store.Mongo.Password)
	overrideString("db-authentication", &cfg.Store.Mongo.AuthDB)
	overrideBool("ssl", &cfg.Store.Mongo.SSL)
	overrideString("repository", &cfg.Repository.URI)
	overrideString("cache", &cfg.Repository.Cache)
	overrideString("ssh-identity", &cfg.Repository.SSHIdentity)
	overrideBool("first-parent", &cfg.Repository.FirstParent)
	overrideString("github-token", &cfg.GitHub.Token)
	overrideString("github-url", &cfg.GitHub.BaseURL)
	overrideInt("progress-interval", &cfg.ProgressInterval)
	if flags.Changed("db-uri") || flags.Changed("db-hostname") || flags.Changed("db-database") {
		cfg.Store.Backend = config.BackendMongo
	}
	if cfg.Store.Backend == config.BackendMongo && flags.Changed("fixture") {
		cfg.Store.Backend = config.BackendMemory
	}
	if cfg.VCSURL == "" && cfg.Repository.URI != "" {
		cfg.VCSURL = cfg.Repository.URI
	}
	return cfg, cfg.Validate()
}

// mergeOptions layers the approach options: the defaults of the flags, then the options
// of the configuration file, then the flags which were explicitly set.
func mergeOptions(registry *core.ApproachRegistry, flags *pflag.FlagSet,
	resolved map[string]interface{}, options map[string]interface{}) map[string]interface{} {
	changed := map[string]bool{}
	for _, approach := range registry.Approaches() {
		for _, opt := range approach.ListConfigurationOptions() {
			if flags.Changed(opt.Flag) {
				changed[opt.Name] = true
			}
		}
	}
	facts := map[string]interface{}{}
	for key, val := range resolved {
		facts[key] = val
	}
	for key, val := range options {
		if !changed[key] {
			facts[key] = val
		}
	}
	return facts
}
