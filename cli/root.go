package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "pingpong",
	Short: "Terminal client for the pingpong chat relay",
	Long: `pingpong talks to a relay over HTTP for accounts, friends and history,
and over a WebSocket for live chat.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", envOr("PINGPONG_SERVER", "http://localhost:8000"), "relay base URL")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", os.Getenv("PINGPONG_TOKEN"), "session token (or PINGPONG_TOKEN)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newAPI() *apiClient {
	return newAPIClient(serverURL, token)
}

func requireToken() {
	if token == "" {
		fatal("not logged in", fmt.Errorf("pass --token or set PINGPONG_TOKEN (see 'pingpong login')"))
	}
}
