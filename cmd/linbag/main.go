// Command linbag evaluates and bags linear classifiers and runs a k-NN
// baseline on libsvm-format data.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/linbag/config"
	"github.com/YuminosukeSato/linbag/core/sparse"
	"github.com/YuminosukeSato/linbag/pkg/errors"
	"github.com/YuminosukeSato/linbag/pkg/log"
)

// globals are the flags shared by every subcommand.
type globals struct {
	configPath  string
	quiet       bool
	logLevel    string
	logFormat   string
	seed        uint64
	parallelism int

	cfg config.Config
}

func (g *globals) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if g.configPath != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		seed := g.seed
		cfg.Seed = &seed
	}
	if flags.Changed("parallel") {
		cfg.Parallelism = g.parallelism
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	if g.quiet {
		cfg.LogLevel = "error"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetupLogger(os.Stderr, level, cfg.LogFormat)
	g.cfg = cfg

	fields := []any{log.WorkersKey, cfg.Parallelism}
	if cfg.Seed != nil {
		fields = append(fields, log.RandomSeedKey, *cfg.Seed)
	}
	log.GetLogger().Debug("configuration loaded", fields...)
	return nil
}

// readData loads a libsvm file and logs its shape.
func readData(path string, opts sparse.ReadOptions) (*sparse.Dataset, error) {
	ds, err := sparse.ReadLibSVMFile(path, opts)
	if err != nil {
		return nil, err
	}
	log.GetLogger().Info("dataset loaded",
		log.SourceKey, path,
		log.SamplesKey, ds.Len(),
		log.FeaturesKey, ds.NumFeatures(),
		log.ClassesKey, len(ds.DistinctLabels()),
	)
	return ds, nil
}

func rootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "linbag",
		Short:         "model selection, bagging and k-NN for sparse linear classifiers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "YAML configuration file")
	pf.BoolVarP(&g.quiet, "quiet", "q", false, "quiet mode (no outputs)")
	pf.StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&g.logFormat, "log-format", "console", "log format: console or json")
	pf.Uint64Var(&g.seed, "seed", 0, "random seed for reproducible runs")
	pf.IntVar(&g.parallelism, "parallel", 1, "number of concurrent workers")

	root.AddCommand(trainCmd(g))
	root.AddCommand(cvCmd(g))
	root.AddCommand(predictCmd(g))
	root.AddCommand(knnCmd(g))
	return root
}

// run executes fn, turning panics into errors.
func run(op string, fn func() error) error {
	return errors.SafeExecute(op, fn)
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.GetLogger().Error("linbag failed", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
