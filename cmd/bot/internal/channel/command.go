package channel

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/set-night/postrelay/internal/config"
	"github.com/set-night/postrelay/internal/directory"
	"github.com/set-night/postrelay/internal/domain"
)

// opener connects to the directory store. The returned func releases it.
type opener func(ctx context.Context) (*directory.Admin, func(), error)

func openRedis(ctx context.Context) (*directory.Admin, func(), error) {
	cfg, err := config.LoadStore()
	if err != nil {
		return nil, nil, err
	}
	rdb, err := directory.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return directory.NewAdmin(directory.NewRedisStore(rdb)), func() { rdb.Close() }, nil
}

func NewChannelCommand() *cobra.Command {
	return newChannelCommand(openRedis)
}

func newChannelCommand(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "channel",
		Aliases: []string{"ch"},
		Short:   "Manage channels and their administrators",
		Example: `  bot channel set --id -1001234567890 --name News --admin 111 --admin 222
  bot channel list
  bot channel remove --id -1001234567890`,
	}

	cmd.AddCommand(
		newSetCommand(open),
		newListCommand(open),
		newRemoveCommand(open),
	)
	return cmd
}

func newSetCommand(open opener) *cobra.Command {
	var (
		id     string
		name   string
		admins []int64
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or replace a channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			admin, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			ch := domain.Channel{ID: domain.ChannelID(id), Name: name, Admins: admins}
			if err := admin.SetChannel(cmd.Context(), ch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "channel %s saved with %d admin(s)\n", ch.DisplayName(), len(admins))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Channel id or @username")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().Int64SliceVar(&admins, "admin", nil, "Administrator user id (repeatable)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("admin")

	return cmd
}

func newListCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			admin, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			channels, err := admin.Channels(cmd.Context())
			if err != nil {
				return err
			}
			if len(channels) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no channels")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tADMINS")
			for _, ch := range channels {
				ids := make([]string, len(ch.Admins))
				for i, uid := range ch.Admins {
					ids[i] = fmt.Sprint(uid)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", ch.ID, ch.DisplayName(), strings.Join(ids, ","))
			}
			return w.Flush()
		},
	}
}

func newRemoveCommand(open opener) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			admin, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := admin.RemoveChannel(cmd.Context(), domain.ChannelID(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "channel %s removed\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Channel id or @username")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
