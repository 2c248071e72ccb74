package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/mathsolver"
	"github.com/njchilds90/mathsolver/classifier"
	"github.com/njchilds90/mathsolver/internal/config"
	"github.com/njchilds90/mathsolver/internal/server"
)

// app carries state shared by every subcommand once the root pre-run has
// loaded configuration.
type app struct {
	configPath string
	verbose    bool

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "mathsolver",
		Short:         "Classify and solve free-text math problems",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.serveCmd(), a.solveCmd(), a.detectCmd(), a.trainCmd())
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	zc := zap.NewProductionConfig()
	zc.Encoding = cfg.Log.Encoding
	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	if err := zc.Level.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	log, err := zc.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.log = log
	return nil
}

// solver builds the pipeline. The classifier artifact is optional: a
// missing file falls back to rules only.
func (a *app) solver() (*mathsolver.Solver, error) {
	opts := []mathsolver.Option{
		mathsolver.WithLogger(a.log),
		mathsolver.WithAdapterConfig(a.cfg.Adapter()),
	}
	if !a.cfg.Classifier.Enabled {
		return mathsolver.New(opts...), nil
	}

	art, err := classifier.Load(a.cfg.Classifier.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		a.log.Warn("classifier artifact not found; using rules only",
			zap.String("path", a.cfg.Classifier.Path))
	case err != nil:
		return nil, err
	default:
		c, err := classifier.New(art)
		if err != nil {
			return nil, err
		}
		a.log.Info("classifier loaded",
			zap.String("path", a.cfg.Classifier.Path),
			zap.Strings("classes", art.Model.Classes),
			zap.Time("trained_at", art.TrainedAt))
		opts = append(opts, mathsolver.WithClassifier(c))
	}
	return mathsolver.New(opts...), nil
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.solver()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(s, a.cfg.Server, a.log).Run(ctx)
		},
	}
}

func (a *app) solveCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "solve <expression>",
		Short: "Solve one problem and print the JSON response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.solver()
			if err != nil {
				return err
			}
			resp := s.Solve(cmd.Context(), mathsolver.SolveRequest{Expression: strings.Join(args, " ")})
			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(resp)
		},
	}
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "indent the JSON output")
	return cmd
}

func (a *app) detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <expression>",
		Short: "Print the detected problem type without solving",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.solver()
			if err != nil {
				return err
			}
			d := s.Detect(strings.Join(args, " "))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", d.Type, d.Source, d.Rule)
			return err
		},
	}
}

func (a *app) trainCmd() *cobra.Command {
	var corpusPath, out string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the fallback classifier and write the artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			corpus := classifier.DefaultCorpus()
			if corpusPath != "" {
				var err error
				if corpus, err = classifier.LoadCorpus(corpusPath); err != nil {
					return err
				}
			}
			if out == "" {
				out = a.cfg.Classifier.Path
			}

			art, err := classifier.Train(corpus, classifier.DefaultTrainOptions())
			if err != nil {
				return err
			}
			if err := art.Save(out); err != nil {
				return err
			}
			a.log.Info("classifier trained",
				zap.Int("examples", len(corpus)),
				zap.Int("features", art.Vectorizer.Dim()),
				zap.String("out", out))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "trained on %d examples, training accuracy %.2f, wrote %s\n",
				len(corpus), classifier.Accuracy(art, corpus), out)
			return err
		},
	}
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "YAML corpus of {text, label} examples (default: built-in)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "artifact path (default: classifier.path from config)")
	return cmd
}
