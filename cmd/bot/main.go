package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/set-night/postrelay/cmd/bot/internal/channel"
	"github.com/set-night/postrelay/cmd/bot/internal/migrate"
	"github.com/set-night/postrelay/cmd/bot/internal/serve"
)

func NewBotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bot",
		Short:         "Post moderation relay for Telegram channels",
		Example:       "bot serve",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(
		serve.NewServeCommand(),
		channel.NewChannelCommand(),
		migrate.NewMigrateCommand(),
	)

	return cmd
}

func main() {
	cmd := NewBotCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
