package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/avorobev/fableroom/internal/gameapi"
)

var (
	cfg    *Config
	client *gameapi.Client
	logger *slog.Logger
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	loaded, err := LoadConfig()
	if err != nil {
		loaded = &Config{Output: "text"}
	}
	cfg = loaded

	rootCmd := &cobra.Command{
		Use:   "fableroom",
		Short: "CLI client for the fableroom session server",
		Long: `fableroom is a client for a virtual-tabletop session server.

It covers account management, character sheets, room creation and join,
room history, and a live session view that stays consistent with the
server over a persistent connection.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			var out io.Writer = os.Stderr
			logger = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))

			client = gameapi.NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: FABLEROOM_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.WSURL, "ws", cfg.WSURL, "Session socket URL (env: FABLEROOM_WS)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Bearer token (env: FABLEROOM_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: FABLEROOM_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newCharacterCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
