// Package main is the entry point for the chattermouth CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Slowki/chattermouth/internal/classify"
	"github.com/Slowki/chattermouth/internal/cli"
	"github.com/Slowki/chattermouth/internal/config"
	"github.com/Slowki/chattermouth/internal/cron"
	"github.com/Slowki/chattermouth/internal/gateway"
	"github.com/Slowki/chattermouth/internal/slack"
	"github.com/Slowki/chattermouth/pkg/interaction"
	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chattermouth",
		Short:         "Pluggable text interactions: tell, listen, and ask across chat backends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), askCmd(), serveCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("chattermouth %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a yes-or-no question on the terminal and classify the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold, _ := cmd.Flags().GetFloat64("threshold")

			term, err := cli.New()
			if err != nil {
				return err
			}
			ctx := interaction.WithContext(cmd.Context(), term)

			clf := classify.Train(classify.DefaultCorpus())
			answer, err := classify.AskYesOrNo(ctx, clf, args[0], threshold)
			if err != nil {
				var ncErr *classify.NoClassificationError
				if errors.As(err, &ncErr) {
					fmt.Printf("I couldn't tell whether %q means yes or no.\n", ncErr.Text)
					return nil
				}
				return err
			}

			if answer {
				fmt.Println("That sounds like a yes.")
			} else {
				fmt.Println("That sounds like a no.")
			}
			return nil
		},
	}
	cmd.Flags().Float64P("threshold", "t", classify.DefaultThreshold, "Confidence required for a yes/no decision")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to Slack and answer yes-or-no conversations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			if cfgPath == "" {
				resolved, err := resolveConfigPath()
				if err != nil {
					return err
				}
				cfgPath = resolved
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel(cfg.LogLevel),
			}))

			return serve(cfg, logger)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	clf, err := buildClassifier(cfg.Classifier)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := slack.NewClient(cfg.Slack.Token, cfg.Slack.AppToken)
	demux, err := slack.NewDemux(slack.DemuxConfig{
		API:         client,
		Callback:    yesNoCallback(clf, cfg.Classifier.Threshold, logger),
		BaseContext: ctx,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	scheduler := cron.NewScheduler(logger)
	if err := scheduler.RegisterJob(&cron.ConversationCleanupJob{
		Pruner:  demux,
		MaxIdle: cfg.Slack.MaxIdle,
		Logger:  logger,
	}); err != nil {
		return err
	}
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer func() { _ = scheduler.Stop(context.Background()) }()

	switch cfg.Slack.Mode {
	case config.ModeSocket:
		logger.Info("starting in socket mode")
		return slack.NewSocket(client, demux, logger).Run(ctx)

	case config.ModeWebhook:
		logger.Info("starting in webhook mode", "addr", cfg.Slack.ListenAddr)
		receiver := slack.NewEventsReceiver(demux, cfg.Slack.SigningSecret, logger)
		gw := gateway.New(cfg.Slack.ListenAddr, receiver, demux, logger)
		if err := gw.Start(); err != nil {
			return err
		}
		<-ctx.Done()
		return gw.Stop(context.Background())

	default:
		return fmt.Errorf("unknown slack mode %q", cfg.Slack.Mode)
	}
}

// yesNoCallback greets the user by name and runs one yes-or-no exchange per
// conversation.
func yesNoCallback(clf classify.Classifier, threshold float64, logger *slog.Logger) slack.Callback {
	return func(ctx context.Context) error {
		msg, err := interaction.Listen(ctx)
		if err != nil {
			return err
		}

		name, err := msg.User.FirstName(ctx)
		if err != nil {
			logger.Warn("could not resolve user name", "error", err)
			name = "there"
		}

		question := fmt.Sprintf("Hi %s! Did you mean that as a yes?", name)
		answer, err := classify.AskYesOrNo(ctx, clf, question, threshold)
		if err != nil {
			var ncErr *classify.NoClassificationError
			if errors.As(err, &ncErr) {
				return interaction.Tell(ctx, "Sorry, I couldn't tell whether that was a yes or a no.")
			}
			return err
		}

		if answer {
			return interaction.Tell(ctx, "Great, noted as a yes!")
		}
		return interaction.Tell(ctx, "Alright, noted as a no.")
	}
}

// buildClassifier trains on the configured corpus, falling back to the
// built-in one.
func buildClassifier(cfg config.ClassifierConfig) (*classify.Bayes, error) {
	switch {
	case cfg.CorpusPath != "":
		examples, err := classify.LoadCorpus(cfg.CorpusPath)
		if err != nil {
			return nil, err
		}
		return classify.Train(examples), nil

	case cfg.CorpusDB != "":
		ctx := context.Background()
		db, err := classify.OpenCorpusDB(ctx, cfg.CorpusDB)
		if err != nil {
			return nil, err
		}
		defer func() { _ = db.Close() }()

		examples, err := classify.LoadCorpusDB(ctx, db)
		if err != nil {
			return nil, err
		}
		return classify.Train(examples), nil

	default:
		return classify.Train(classify.DefaultCorpus()), nil
	}
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// resolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/chattermouth/chattermouth.yaml → ./chattermouth.yaml
func resolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "chattermouth", "chattermouth.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "chattermouth", "chattermouth.yaml"))
	}

	candidates = append(candidates, "chattermouth.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}
