// Package config loads the gateway configuration from the environment and
// supplies the CRM's own Twitter account id.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/NethermindEth/crm-twitter/pkg/twitter"
	"github.com/NethermindEth/crm-twitter/pkg/utils/errors"
)

// Config is everything the CLI needs to build a gateway, a relay server and a poller.
type Config struct {
	Credentials       twitter.Credentials
	BaseURL           string
	HTTPTimeout       time.Duration
	RequestsPerSecond float64
	ServerAddr        string
	PollTickRate      time.Duration
}

// Load reads envFile (if non-empty) into the process environment and then builds a Config.
// Variables already present in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.New(errors.TypeConfig, fmt.Sprintf("load env file %s", envFile), err)
		}
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current environment, applying defaults.
func FromEnv() *Config {
	return &Config{
		Credentials: twitter.Credentials{
			ConsumerKey:       envGetRequired(TwitterConsumerKeyKey),
			ConsumerSecret:    envGetRequired(TwitterConsumerSecretKey),
			AccessToken:       envGetRequired(TwitterAccessTokenKey),
			AccessTokenSecret: envGetRequired(TwitterAccessTokenSecretKey),
		},
		BaseURL:           envGetString(TwitterAPIBaseURLKey, DefaultAPIBaseURL),
		HTTPTimeout:       envGetDuration(TwitterHTTPTimeoutKey, DefaultHTTPTimeout),
		RequestsPerSecond: envGetFloat(TwitterRequestsPerSecondKey, 0),
		ServerAddr:        envGetString(RelayServerAddrKey, DefaultServerAddr),
		PollTickRate:      envGetDuration(PollTickRateKey, DefaultPollTick),
	}
}

// EnvAccountID reads the account id from the environment on every call.
type EnvAccountID struct {
	Key string
}

var _ twitter.AccountIDProvider = EnvAccountID{}

// NewEnvAccountID returns a provider bound to CRM_TWITTER_ACCOUNT_ID.
func NewEnvAccountID() EnvAccountID {
	return EnvAccountID{Key: TwitterAccountIDKey}
}

func (p EnvAccountID) TwitterID(_ context.Context) (int64, error) {
	key := p.Key
	if key == "" {
		key = TwitterAccountIDKey
	}
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, errors.New(errors.TypeConfig, key+" environment variable not set", nil)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(errors.TypeConfig, key+" is not a valid Twitter account id", err)
	}
	return id, nil
}
