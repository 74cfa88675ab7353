package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Masterminds/semver/v3"
	"github.com/flanksource/clicky"
	"github.com/flanksource/commons/logger"
	"github.com/flanksource/feat/editor"
	"github.com/flanksource/feat/features"
	"github.com/flanksource/feat/shutdown"
	"github.com/flanksource/feat/testrunner"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "unknown"
	date      = "unknown"
	directory string
	exitCode  int
)

var rootCmd = &cobra.Command{
	Use:   "feat <feature_file> [extra_args...]",
	Short: "Run a BDD feature file from the directory of the file open in VS Code",
	Long: `Run a feature file with behave (or another configured runner).

The feature file is resolved relative to the directory of the file currently
active in VS Code. Use -d to pick the directory explicitly. When nothing is
detected the current directory is used. Every argument after the feature file
is passed to the runner unchanged.`,
	Example: `  feat login.feature
  feat login.feature --tags @smoke -v
  feat -d ./features checkout.feature`,
	Args:              cobra.MinimumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	ValidArgsFunction: completeFeatureFiles,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		clicky.Flags.UseFlags()
	},
	Run: runFeature,
}

func runFeature(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	base := resolveBaseDir(cmd.Context(), directory, newDetector(cfg))

	runner := runnerFor(testrunner.DefaultRegistry(), cfg)
	inv := testrunner.Invocation{BaseDir: base, File: args[0], ExtraArgs: args[1:]}
	logger.V(1).Infof("%s %s", runner, inv.Pretty().ANSI())

	exitCode = testrunner.NewInvoker(runner, cfg.Extension).Execute(inv)
}

func completeFeatureFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	cfg := loadConfig()
	completer := features.Completer{
		Resolver:  newDetector(cfg),
		Extension: cfg.Extension,
	}
	if directory != "" {
		completer.Directory = editor.NormalizePath(directory)
	}
	return completer.Complete(cmd.Context(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// displayVersion normalizes release versions to vMAJOR.MINOR.PATCH and leaves
// anything else, such as "dev", untouched.
func displayVersion(v string) string {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return v
	}
	return "v" + parsed.String()
}

func init() {
	clicky.BindAllFlags(rootCmd.PersistentFlags(), "format")
	logger.Configure(logger.Flags{LogToStderr: true, Color: true})

	rootCmd.Flags().StringVarP(&directory, "directory", "d", "", "Directory to resolve the feature file in (skips editor detection)")
	_ = rootCmd.MarkFlagDirname("directory")
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("feat %s (commit: %s, built: %s, go: %s)\n",
				displayVersion(version), commit, date, runtime.Version())
		},
	})
}

func main() {
	defer shutdown.RecoverAndShutdown()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	shutdown.Shutdown()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
