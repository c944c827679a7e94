/*
Package main provides the command line tool which labels the commits of a repository.
Usage:

	labelshark --fixture project.yaml --url https://github.com/apache/commons-lang
	labelshark --db-hostname localhost --db-database smartshark --url <URL> --approaches adjustedszz,ensemble
	labelshark --repository /path/to/repo --fixture issues.yaml
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cyraxred/labelshark"
	"github.com/cyraxred/labelshark/internal/config"
	"github.com/cyraxred/labelshark/internal/core"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"
	progress "gopkg.in/cheggaaa/pb.v1"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "labelshark",
	Short: "Label the commits of a repository.",
	Long: `labelshark labels commits as bug fixes, refactorings, test, documentation, feature and
maintenance changes. The bug fix approaches follow the issue links in the commit messages, the
others inspect the changed code and the ensemble approach combines several trained models.
The labels are merged into the store as "<approach>_<label>" and summarized in a YAML report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		envFile, _ := flags.GetString("env-file")
		if err := loadEnv(envFile); err != nil {
			return err
		}
		configPath, _ := flags.GetString("config")
		cfg, err := loadConfig(configPath, flags)
		if err != nil {
			return err
		}
		quiet, _ := flags.GetBool("quiet")
		dryRun, _ := flags.GetBool("dry-run")
		facts := mergeOptions(registry, flags, cmdlineFacts.Resolve(), cfg.Options)
		return run(context.Background(), cfg, facts, dryRun, quiet, cmd.OutOrStdout(), os.Stderr)
	},
}

func loadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return errors.Wrapf(err, "loading %s", envFile)
		}
		return nil
	}
	// optional
	_ = godotenv.Load(".env")
	return nil
}

// run labels the commits and writes the report. facts are the resolved approach options.
func run(ctx context.Context, cfg *config.Config, facts map[string]interface{}, dryRun, quiet bool,
	output, status io.Writer) error {
	l := core.NewLogger()
	l.I.SetOutput(status)
	l.W.SetOutput(status)
	l.E.SetOutput(status)
	stores, err := openBackend(ctx, cfg, quiet, status)
	if err != nil {
		return err
	}
	defer stores.Close(ctx)

	vcs, err := stores.commits.VCSSystem(ctx, cfg.VCSURL)
	if err != nil {
		return errors.Wrapf(err, "looking up the repository %s", cfg.VCSURL)
	}
	trackers, err := stores.projectTrackers(ctx, vcs, cfg.IssueSystems)
	if err != nil {
		return err
	}
	approaches, err := registry.Select(cfg.Approaches)
	if err != nil {
		return err
	}
	dispatcher := labelshark.NewDispatcher(approaches...)
	dispatcher.DryRun = dryRun || !cfg.Persist
	dispatcher.ProgressInterval = cfg.ProgressInterval
	facts[core.ConfigLogger] = l
	facts[core.FactTrackers] = trackers
	facts[core.FactIssueStore] = stores.issues
	facts[core.FactChangeStore] = stores.changes
	facts[core.FactVCSSystem] = vcs
	if err = dispatcher.Configure(facts); err != nil {
		return err
	}

	total, err := stores.commits.CountCommits(ctx, vcs.ID)
	if err != nil {
		return errors.Wrap(err, "counting the commits")
	}
	commits, err := stores.commits.Commits(ctx, vcs.ID)
	if err != nil {
		return errors.Wrap(err, "listing the commits")
	}
	defer commits.Close()

	var bar *progress.ProgressBar
	if !quiet {
		dispatcher.OnProgress = func(done, length int, hash string) {
			if bar == nil {
				bar = progress.New(length)
				bar.Callback = func(msg string) {
					fmt.Fprint(status, "\033[2K\r"+msg)
				}
				bar.NotPrint = true
				bar.ShowPercent = false
				bar.ShowSpeed = false
				bar.SetMaxWidth(80).Start()
			}
			bar.Set(done).Postfix(" [" + shortHash(hash) + "] ")
		}
	}
	rep := newReport(cfg.VCSURL, dispatcher)
	dispatcher.OnCommit = rep.add
	beginTime := time.Now()
	summary, err := dispatcher.Run(ctx, commits, total, stores.labels)
	if bar != nil {
		bar.Finish()
		fmt.Fprint(status, "\033[2K\r")
		// if not a terminal, the user will not see the output, so show the status
		if !isTerminal(os.Stdout) {
			fmt.Fprint(status, "writing...\r")
		}
	}
	if summary != nil {
		rep.print(output, summary, beginTime)
	}
	return err
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func isTerminal(file *os.File) bool {
	return terminal.IsTerminal(int(file.Fd()))
}

// versionCmd prints the version and the Git commit hash
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information and exit.",
	Long:  ``,
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\nGit:     %s\n",
			labelshark.BinaryVersion, labelshark.BinaryGitHash)
	},
}

var registry = labelshark.DefaultRegistry()
var cmdlineFacts core.FlagFacts

func init() {
	addRootFlags(rootCmd)
	cmdlineFacts = registry.AddFlags(rootCmd.Flags())
	rootCmd.SetUsageFunc(formatUsage)
	rootCmd.SilenceUsage = true
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetUsageFunc(versionCmd.UsageFunc())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
