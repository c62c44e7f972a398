package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/NethermindEth/crm-twitter/pkg/config"
	"github.com/NethermindEth/crm-twitter/pkg/twitter"
	"github.com/NethermindEth/crm-twitter/pkg/utils/logger"
	"github.com/NethermindEth/crm-twitter/pkg/utils/metrics"
)

type rootOptions struct {
	envFile  string
	logLevel string
	logJSON  bool
	relayURL string

	cfg *config.Config
}

// newGateway builds a relay client when --relay-url is set and a signed
// Twitter client otherwise.
func (o *rootOptions) newGateway(ctx context.Context, reporter twitter.ErrorReporter, notifier twitter.Notifier, collector *metrics.MetricsCollector) (twitter.Gateway, error) {
	if o.relayURL != "" {
		return twitter.NewRelayClient(o.relayURL, &http.Client{Timeout: o.cfg.HTTPTimeout}, reporter, notifier), nil
	}

	httpClient, err := twitter.NewOAuth1HTTPClient(ctx, o.cfg.Credentials, o.cfg.HTTPTimeout)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if o.cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.cfg.RequestsPerSecond), 1)
	}

	client, err := twitter.NewClient(&twitter.ClientConfig{
		HTTPClient:  httpClient,
		BaseURL:     o.cfg.BaseURL,
		Accounts:    config.NewEnvAccountID(),
		Reporter:    reporter,
		Notifier:    notifier,
		RateLimiter: limiter,
		Metrics:     collector,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func main() {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "crm-twitter",
		Short:         "Twitter gateway for the CRM",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Setup(opts.logLevel, opts.logJSON); err != nil {
				return err
			}

			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Path to a .env file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&opts.relayURL, "relay-url", "", "Send every call through the relay server at this URL")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newPollCmd(opts),
		newFollowersCmd(opts),
		newTimelineCmd(opts),
		newMentionsCmd(opts),
		newDirectMessagesCmd(opts),
		newNewestCmd(opts),
		newReplyCmd(opts),
		newTweetCmd(opts),
		newDeleteCmd(opts),
		newFollowCmd(opts),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}
