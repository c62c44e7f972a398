package twitter

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NethermindEth/crm-twitter/pkg/utils/errors"
)

func TestCredentials_Validate(t *testing.T) {
	full := Credentials{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "as",
	}

	tests := []struct {
		name    string
		mutate  func(c *Credentials)
		wantErr error
	}{
		{"complete", func(c *Credentials) {}, nil},
		{"missing consumer key", func(c *Credentials) { c.ConsumerKey = "" }, ErrMissingAppCredentials},
		{"missing consumer secret", func(c *Credentials) { c.ConsumerSecret = "" }, ErrMissingAppCredentials},
		{"missing access token", func(c *Credentials) { c.AccessToken = "" }, ErrMissingAccessCredentials},
		{"missing access secret", func(c *Credentials) { c.AccessTokenSecret = "" }, ErrMissingAccessCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := full
			tt.mutate(&creds)
			err := creds.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !stderrors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.TypeOf(err) != errors.TypeConfig {
				t.Errorf("Expected a config error, got %s", errors.TypeOf(err))
			}
		})
	}
}

func TestNewOAuth1HTTPClient_SignsRequests(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"followers_count":3}`)
	}))
	defer server.Close()

	httpClient, err := NewOAuth1HTTPClient(context.Background(), Credentials{
		ConsumerKey:       "consumer",
		ConsumerSecret:    "consumer-secret",
		AccessToken:       "token",
		AccessTokenSecret: "token-secret",
	}, 5*time.Second)
	if err != nil {
		t.Fatalf("NewOAuth1HTTPClient() error = %v", err)
	}
	if httpClient.Timeout != 5*time.Second {
		t.Errorf("Expected a 5s timeout, got %v", httpClient.Timeout)
	}

	client, err := NewClient(&ClientConfig{
		HTTPClient: httpClient,
		BaseURL:    server.URL,
		Accounts:   StaticAccountID(42),
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	count, err := client.FollowerCount(context.Background())
	if err != nil {
		t.Fatalf("FollowerCount() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 followers, got %d", count)
	}

	if !strings.HasPrefix(authHeader, "OAuth ") {
		t.Fatalf("Expected an OAuth1 header, got %q", authHeader)
	}
	for _, want := range []string{
		`oauth_consumer_key="consumer"`,
		`oauth_token="token"`,
		`oauth_signature_method="HMAC-SHA1"`,
	} {
		if !strings.Contains(authHeader, want) {
			t.Errorf("Expected %s in the Authorization header, got %q", want, authHeader)
		}
	}
}

func TestNewOAuth1HTTPClient_RejectsMissingCredentials(t *testing.T) {
	_, err := NewOAuth1HTTPClient(context.Background(), Credentials{ConsumerKey: "only"}, time.Second)
	if !stderrors.Is(err, ErrMissingAppCredentials) {
		t.Errorf("NewOAuth1HTTPClient() error = %v, want %v", err, ErrMissingAppCredentials)
	}
}
