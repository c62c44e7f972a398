package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/NethermindEth/crm-twitter/pkg/poller"
	"github.com/NethermindEth/crm-twitter/pkg/server"
	"github.com/NethermindEth/crm-twitter/pkg/twitter"
	"github.com/NethermindEth/crm-twitter/pkg/utils/metrics"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr       string
		withPoller bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server that exposes the gateway over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			collector := metrics.NewMetricsCollector()

			gateway, err := opts.newGateway(ctx, server.FlashReporter, server.FlashNotifier, collector)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = opts.cfg.ServerAddr
			}
			srv := server.NewServer(&server.ServerConfig{
				Gateway:    gateway,
				Metrics:    collector,
				ServerAddr: addr,
			})

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(ctx)
			})

			if withPoller {
				p, err := poller.NewPoller(&poller.PollerConfig{
					Gateway:     gateway,
					Handler:     logBatch,
					TickRate:    opts.cfg.PollTickRate,
					Metrics:     collector,
					SkipBacklog: true,
				})
				if err != nil {
					return err
				}
				g.Go(func() error {
					return p.Run(ctx)
				})
			}

			if err := g.Wait(); err != nil && !stderrors.Is(err, context.Canceled) {
				return err
			}
			slog.Info("relay server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (defaults to RELAY_SERVER_ADDR)")
	cmd.Flags().BoolVar(&withPoller, "poll", false, "Also poll mentions and direct messages in the background")
	return cmd
}

func logBatch(_ context.Context, feed poller.Feed, items []twitter.Object) error {
	slog.Info("new items", "feed", feed, "count", len(items), "newest", items[0].IDStr())
	return nil
}

func newPollCmd(opts *rootOptions) *cobra.Command {
	var (
		once          bool
		mentionsSince string
		messagesSince string
	)

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll mentions and direct messages and print every new batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			collector := metrics.NewMetricsCollector()

			gateway, err := opts.newGateway(ctx, term, term, collector)
			if err != nil {
				return err
			}

			store := poller.NewCursorStoreInMemory(map[poller.Feed]twitter.Cursor{
				poller.FeedMentions:       twitter.Cursor(mentionsSince),
				poller.FeedDirectMessages: twitter.Cursor(messagesSince),
			})

			p, err := poller.NewPoller(&poller.PollerConfig{
				Gateway:  gateway,
				Store:    store,
				Handler:  printBatch,
				TickRate: opts.cfg.PollTickRate,
				Metrics:  collector,
			})
			if err != nil {
				return err
			}

			if once {
				err := p.PollOnce(ctx)
				for _, feed := range poller.Feeds {
					fmt.Printf("%s %s cursor: %s\n", info("↳"), feed, store.GetCursor(feed))
				}
				return err
			}

			if err := p.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Poll a single time and exit")
	cmd.Flags().StringVar(&mentionsSince, "mentions-since", "", "Initial mentions cursor")
	cmd.Flags().StringVar(&messagesSince, "dms-since", "", "Initial direct messages cursor")
	return cmd
}

func printBatch(_ context.Context, feed poller.Feed, items []twitter.Object) error {
	fmt.Printf("\n%s %d new %s\n", info("📥"), len(items), strings.ReplaceAll(string(feed), "_", " "))
	return printJSON(items)
}

func newFollowersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "followers",
		Short: "Print the follower count of the CRM account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := opts.newGateway(cmd.Context(), term, term, nil)
			if err != nil {
				return err
			}

			var count int64
			err = term.withSpinner("Fetching follower count...", func() error {
				count, err = gateway.FollowerCount(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s %d followers\n", success("✓"), count)
			return nil
		},
	}
}

func newTimelineCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Print the CRM account's own tweets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := opts.newGateway(cmd.Context(), term, term, nil)
			if err != nil {
				return err
			}

			var tweets []twitter.Object
			err = term.withSpinner("Fetching timeline...", func() error {
				tweets, err = gateway.UserTimeline(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			return printJSON(tweets)
		},
	}
}

func newMentionsCmd(opts *rootOptions) *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:   "mentions",
		Short: "Print mentions newer than --since (only the latest one without it)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := opts.newGateway(cmd.Context(), term, term, nil)
			if err != nil {
				return err
			}

			var mentions []twitter.Object
			err = term.withSpinner("Fetching mentions...", func() error {
				mentions, err = gateway.Mentions(cmd.Context(), twitter.Cursor(since))
				return err
			})
			if err != nil {
				return err
			}
			return printJSON(mentions)
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only return mentions newer than this id")
	return cmd
}

func newDirectMessagesCmd(opts *rootOptions) *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:   "dms",
		Short: "Print direct messages newer than --since (only the latest one without it)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := opts.newGateway(cmd.Context(), term, term, nil)
			if err != nil {
				return err
			}

			var messages []twitter.Object
			err = term.withSpinner("Fetching direct messages...", func() error {
				messages, err = gateway.DirectMessages(cmd.Context(), twitter.Cursor(since))
				return err
			})
			if err != nil {
				return err
			}
			return printJSON(messages)
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only return direct messages newer than this id")
	return cmd
}

func newNewestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "newest (mentions|dms)",
		Short:     "Print the id of the newest mention or direct message",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"mentions", "dms"},
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := opts.newGateway(cmd.Context(), term, term, nil)
			if err != nil {
				return err
			}

			var newest twitter.Cursor
			err = term.withSpinner("Fetching newest id...", func() error {
				if args[0] == "mentions" {
					newest, err = gateway.NewestMentionID(cmd.Context())
				} else {
					newest, err = gateway.NewestDirectMessageID(cmd.Context())
				}
				return err
			})
			if err != nil {
				return err
			}

			if newest.IsNone() {
				fmt.Printf("%s no %s yet\n", warn("∅"), args[0])
				return nil
			}
			fmt.Println(newest)
			return nil
		},
	}
}

func newReplyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reply",
		Short: "Answer a mention publicly or a user privately",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "public <tweet_id> <text...>",
		Short: "Reply to a tweet",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := opts.newGateway(cmd.Context(), term, term, nil)
			if err != nil {
				return err
			}

			var tweet twitter.Object
			err = term.withSpinner("Sending reply...", func() error {
				tweet, err = gateway.ReplyPublic(cmd.Context(), strings.Join(args[1:], " "), args[0])
				return err
			})
			if err != nil {
				return err
			}
			return printJSON(tweet)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "private <handle> <text...>",
		Short: "Send a direct message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := opts.newGateway(cmd.Context(), term, term, nil)
			if err != nil {
				return err
			}

			var message twitter.Object
			err = term.withSpinner("Sending direct message...", func() error {
				message, err = gateway.ReplyPrivate(cmd.Context(), strings.Join(args[1:], " "), args[0])
				return err
			})
			if err != nil {
				return err
			}
			return printJSON(message)
		},
	})

	return cmd
}

func newTweetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tweet <text...>",
		Short: "Publish a tweet from the CRM account",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := opts.newGateway(cmd.Context(), term, term, nil)
			if err != nil {
				return err
			}

			var tweet twitter.Object
			err = term.withSpinner("Publishing tweet...", func() error {
				tweet, err = gateway.PublishTweet(cmd.Context(), strings.Join(args, " "))
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s Published %s\n", success("✓"), tweet.IDStr())
			return nil
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var origin string

	cmd := &cobra.Command{
		Use:   "delete (tweet|dm|answer) <id>",
		Short: "Delete a tweet, a direct message or a CRM case answer",
		Args: cobra.MatchAll(cobra.ExactArgs(2), func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "tweet", "dm", "answer":
				return nil
			}
			return fmt.Errorf("unknown kind %q, expected tweet, dm or answer", args[0])
		}),
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := opts.newGateway(cmd.Context(), term, term, nil)
			if err != nil {
				return err
			}

			kind, id := args[0], args[1]
			return term.withSpinner("Deleting "+kind+"...", func() error {
				switch kind {
				case "tweet":
					return gateway.DeleteTweet(cmd.Context(), id)
				case "dm":
					return gateway.DeleteDirectMessage(cmd.Context(), id)
				}
				return gateway.DeleteAnswer(cmd.Context(), twitter.CaseOrigin(origin), id)
			})
		},
	}

	cmd.Flags().StringVar(&origin, "origin", string(twitter.OriginMention),
		fmt.Sprintf("Case origin of an answer (%q or %q)", twitter.OriginMention, twitter.OriginDirect))
	return cmd
}

func newFollowCmd(opts *rootOptions) *cobra.Command {
	var following bool

	cmd := &cobra.Command{
		Use:   "follow <account_id>",
		Short: "Follow an account, or unfollow it with --following",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := opts.newGateway(cmd.Context(), term, term, nil)
			if err != nil {
				return err
			}

			var now bool
			err = term.withSpinner("Updating relationship...", func() error {
				now, err = gateway.ToggleFollow(cmd.Context(), args[0], following)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s following=%t\n", info("↳"), now)
			return nil
		},
	}

	cmd.Flags().BoolVar(&following, "following", false, "The account is currently followed (toggle unfollows it)")
	return cmd
}
