package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/icebreaker-bot/server/internal/agent/model"
	"github.com/icebreaker-bot/server/internal/channel"
	"github.com/icebreaker-bot/server/internal/core"
	"github.com/icebreaker-bot/server/internal/server"
	logx "github.com/icebreaker-bot/server/pkg/logger"
)

// AppConfig defines all configurable parameters of the bot,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	Server     server.Config
	Channel    channel.Config
	Completion model.CompletionConfig

	// Agent configs
	Bot          model.BotConfig
	Conversation model.ConversationConfig
	Dedup        model.DedupConfig
}

func loadConfig(envFile string) (AppConfig, error) {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		logx.Warn().Err(err).Str("file", envFile).Msg("Could not load env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "icebreaker",
		Short:         "Team icebreaker chat bot for the Bot Framework channel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path of the dotenv file to load before reading the environment.")

	root.AddCommand(
		newFrontEndCmd("serve", "Serve the webhook, processing each turn inline", server.ModeAsync, &envFile),
		newFrontEndCmd("worker", "Serve the webhook, processing turns on a bounded worker pool", server.ModePooled, &envFile),
	)
	return root
}

func newFrontEndCmd(use, short string, mode server.Mode, envFile *string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			logx.Init(logx.LoggerOpts{
				Environment: core.ParseEnvironment(cfg.Environment),
				Level:       cfg.LogLevel,
			})
			return run(cmd.Context(), cfg, mode)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides PORT).")
	return cmd
}

func main() {
	logx.Init()
	if err := newRootCmd().Execute(); err != nil {
		logx.Fatal().Err(err).Msg("icebreaker exited with error")
	}
}
