package twitter

import (
	"context"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/NethermindEth/crm-twitter/pkg/utils/errors"
)

// Credentials are the OAuth1 application and user tokens of the CRM account.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Validate checks that both key pairs are present.
func (c Credentials) Validate() error {
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return errors.New(errors.TypeConfig, "invalid credentials", ErrMissingAppCredentials)
	}
	if c.AccessToken == "" || c.AccessTokenSecret == "" {
		return errors.New(errors.TypeConfig, "invalid credentials", ErrMissingAccessCredentials)
	}
	return nil
}

// NewOAuth1HTTPClient returns an *http.Client that signs every request with the
// given credentials and gives up after timeout.
func NewOAuth1HTTPClient(ctx context.Context, creds Credentials, timeout time.Duration) (*http.Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)
	httpClient := config.Client(ctx, token)
	httpClient.Timeout = timeout

	return httpClient, nil
}
