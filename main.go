package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

// app holds the persistent flags shared by every analysis.
type app struct {
	logLevel   string
	outDir     string
	filterPath string
	publishURL string
	createDb   string
	storage    Storage
	publisher  *Publisher
	stdout     io.Writer
}

func newApp() *app {
	return &app{
		storage: Storage{
			OrgName:   StringEnv("TURSO_ORG_NAME", ""),
			GroupName: StringEnv("TURSO_GROUP_NAME", "default"),
			ApiToken:  StringEnv("TURSO_API_TOKEN", ""),
			AuthToken: StringEnv("TURSO_AUTH_TOKEN", ""),
		},
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "benchplot",
		Short:         "Post-process benchmark results into plots and tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			SetLogLevel(a.logLevel)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closePublisher()
		},
	}
	if a.stdout != nil {
		root.SetOut(a.stdout)
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", StringEnv("LOG_LEVEL", "INFO"), "log level")
	flags.StringVar(&a.outDir, "out", StringEnv("BENCHPLOT_OUT", "."), "directory for generated plots and files")
	flags.StringVar(&a.filterPath, "filter", StringEnv("BENCHPLOT_FILTER", ""), "YAML file with query whitelist/blacklist")
	flags.StringVar(&a.publishURL, "publish", StringEnv("RESULTS_DB_URL", ""), "libsql:// url or sqlite path to publish derived measurements to")
	flags.StringVar(&a.createDb, "create-db", "", "create a Turso database with this name and publish to it")

	root.AddCommand(
		a.baselineCmd(),
		a.iterationsCmd(),
		a.cecacheCmd(),
		a.cecacheTableCmd(),
		a.planningCmd(),
		a.planningRatioCmd(),
		a.motivationCmd(),
		a.rankCostCmd(),
		a.costModelCmd(),
		a.compareCmd(),
		a.sweepCmd(),
	)
	return root
}

// env builds the analysis environment, opening the publisher on first use.
func (a *app) env(cmd *cobra.Command, root string) (Env, error) {
	filter, err := LoadFilter(a.filterPath)
	if err != nil {
		return Env{}, err
	}
	if err := os.MkdirAll(a.outDir, 0o755); err != nil {
		return Env{}, fmt.Errorf("failed to create output dir %v: %w", a.outDir, err)
	}
	env := Env{Root: root, Out: a.outDir, Filter: filter, Stdout: cmd.OutOrStdout()}

	target := a.publishURL
	if a.createDb != "" {
		if err := a.storage.CreateDatabase(a.createDb); err != nil {
			return Env{}, fmt.Errorf("failed to create database %v: %w", a.createDb, err)
		}
		target = a.storage.DbURL(a.createDb)
	}
	if target != "" && a.publisher == nil {
		meta := HostStat().Meta()
		meta["command"] = cmd.Name()
		meta["root"] = root
		meta["args"] = strings.Join(os.Args[1:], " ")
		a.publisher, err = a.storage.OpenPublisher(target, meta)
		if err != nil {
			return Env{}, err
		}
	}
	if a.publisher != nil {
		env.Sink = a.publisher
	}
	return env, nil
}

// closePublisher is safe to call more than once. cobra skips the post run
// hook when a command fails, so execute calls it again.
func (a *app) closePublisher() error {
	if a.publisher == nil {
		return nil
	}
	publisher := a.publisher
	a.publisher = nil
	Logger.Infof("results published as run %v", publisher.Run())
	return publisher.Close()
}

func (a *app) execute(ctx context.Context, args []string) error {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if closeErr := a.closePublisher(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close results db: %w", closeErr)
	}
	return err
}

func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// splitRootAndFiles treats a leading directory argument as the root and the
// rest as explicit input files.
func splitRootAndFiles(args []string) (string, []string) {
	if len(args) == 0 {
		return ".", nil
	}
	if stat, err := os.Stat(args[0]); err == nil && stat.IsDir() {
		return args[0], args[1:]
	}
	return ".", args
}

func main() {
	if err := LoadDotEnv(".env"); err != nil {
		Logger.Warnf("%v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newApp().execute(ctx, os.Args[1:]); err != nil {
		Logger.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}
