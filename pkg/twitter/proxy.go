package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/NethermindEth/crm-twitter/pkg/utils/errors"
)

// RelayClient is a Gateway that forwards every operation to a relay server
// (see pkg/server) instead of calling Twitter directly.
type RelayClient struct {
	httpClient *http.Client
	url        string
	reporter   ErrorReporter
	notifier   Notifier
}

var _ Gateway = (*RelayClient)(nil)

// NewRelayClient returns a client for the relay at url. reporter and notifier may be nil.
func NewRelayClient(url string, client *http.Client, reporter ErrorReporter, notifier Notifier) *RelayClient {
	if client == nil {
		client = http.DefaultClient
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &RelayClient{
		httpClient: client,
		url:        strings.TrimSuffix(url, "/"),
		reporter:   reporter,
		notifier:   notifier,
	}
}

type relayEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Flash  []string        `json:"flash"`
	Error  string          `json:"error"`
	Type   string          `json:"type"`
	Status int             `json:"status"`
}

// do sends one relay request and decodes the envelope's data into out (when non-nil).
func (p *RelayClient) do(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return errors.New(errors.TypeValidation, "failed to marshal body", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	endpoint := p.url + path
	if len(query) > 0 {
		endpoint += "?" + encodeQuery(query)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.New(errors.TypeValidation, "failed to create request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.New(errors.TypeTransport, "failed to send request", err)
	}
	defer resp.Body.Close()

	var envelope relayEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return errors.New(errors.TypeDecode, fmt.Sprintf("failed to decode relay response (status %d)", resp.StatusCode), err)
	}

	if resp.StatusCode != http.StatusOK {
		return p.relayError(ctx, resp.StatusCode, &envelope)
	}

	for _, key := range envelope.Flash {
		p.notifier.Notify(ctx, key)
	}

	if out != nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		if err := unmarshalVerbatim(envelope.Data, out); err != nil {
			return errors.New(errors.TypeDecode, "failed to decode relay data", err)
		}
	}
	return nil
}

// relayError rebuilds the gateway error the relay reported.
func (p *RelayClient) relayError(ctx context.Context, relayStatus int, envelope *relayEnvelope) error {
	slog.Debug("relay call failed", "relay_status", relayStatus, "type", envelope.Type, "error", envelope.Error)

	if envelope.Status != 0 {
		p.reporter.ReportStatus(ctx, envelope.Status)
		return errors.NewStatus(envelope.Status, envelope.Error)
	}

	errType := errors.ErrorType(envelope.Type)
	if errType == "" {
		errType = errors.TypeTransport
	}
	return errors.New(errType, envelope.Error, nil)
}

func (p *RelayClient) FollowerCount(ctx context.Context) (int64, error) {
	var data struct {
		FollowersCount int64 `json:"followers_count"`
	}
	if err := p.do(ctx, http.MethodGet, "/followers/count", nil, nil, &data); err != nil {
		return 0, err
	}
	return data.FollowersCount, nil
}

func (p *RelayClient) UserTimeline(ctx context.Context) ([]Object, error) {
	tweets := []Object{}
	if err := p.do(ctx, http.MethodGet, "/timeline", nil, nil, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

func sinceQuery(since Cursor) url.Values {
	if since.IsZero() {
		return nil
	}
	return url.Values{"since_id": {since.String()}}
}

func (p *RelayClient) Mentions(ctx context.Context, since Cursor) ([]Object, error) {
	mentions := []Object{}
	if err := p.do(ctx, http.MethodGet, "/mentions", sinceQuery(since), nil, &mentions); err != nil {
		return nil, err
	}
	return mentions, nil
}

func (p *RelayClient) DirectMessages(ctx context.Context, since Cursor) ([]Object, error) {
	messages := []Object{}
	if err := p.do(ctx, http.MethodGet, "/direct-messages", sinceQuery(since), nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (p *RelayClient) newest(ctx context.Context, path string) (Cursor, error) {
	var data struct {
		Cursor string `json:"cursor"`
		None   bool   `json:"none"`
	}
	if err := p.do(ctx, http.MethodGet, path, nil, nil, &data); err != nil {
		return CursorNone, err
	}
	if data.None {
		return CursorNone, nil
	}
	return Cursor(data.Cursor), nil
}

func (p *RelayClient) NewestMentionID(ctx context.Context) (Cursor, error) {
	return p.newest(ctx, "/mentions/newest")
}

func (p *RelayClient) NewestDirectMessageID(ctx context.Context) (Cursor, error) {
	return p.newest(ctx, "/direct-messages/newest")
}

func (p *RelayClient) ReplyPublic(ctx context.Context, text, inReplyToID string) (Object, error) {
	slog.Info("replying to tweet", "tweet_id", inReplyToID)

	var tweet Object
	err := p.do(ctx, http.MethodPost, "/replies", nil, map[string]string{
		"type":        "public",
		"text":        text,
		"in_reply_to": inReplyToID,
	}, &tweet)
	if err != nil {
		return nil, err
	}
	return tweet, nil
}

func (p *RelayClient) ReplyPrivate(ctx context.Context, text, handle string) (Object, error) {
	slog.Info("sending direct message", "handle", handle)

	var message Object
	err := p.do(ctx, http.MethodPost, "/replies", nil, map[string]string{
		"type":   "private",
		"text":   text,
		"handle": handle,
	}, &message)
	if err != nil {
		return nil, err
	}
	return message, nil
}

func (p *RelayClient) PublishTweet(ctx context.Context, text string) (Object, error) {
	var tweet Object
	if err := p.do(ctx, http.MethodPost, "/tweets", nil, map[string]string{"text": text}, &tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

func (p *RelayClient) DeleteTweet(ctx context.Context, tweetID string) error {
	if strings.TrimSpace(tweetID) == "" {
		return errors.New(errors.TypeValidation, opDeleteTweet, ErrMissingID)
	}
	return p.do(ctx, http.MethodDelete, "/tweets/"+url.PathEscape(tweetID), nil, nil, nil)
}

func (p *RelayClient) DeleteDirectMessage(ctx context.Context, messageID string) error {
	if strings.TrimSpace(messageID) == "" {
		return errors.New(errors.TypeValidation, opDeleteDirect, ErrMissingID)
	}
	return p.do(ctx, http.MethodDelete, "/direct-messages/"+url.PathEscape(messageID), nil, nil, nil)
}

func (p *RelayClient) DeleteAnswer(ctx context.Context, origin CaseOrigin, id string) error {
	return deleteAnswer(ctx, p, origin, id)
}

func (p *RelayClient) ToggleFollow(ctx context.Context, accountID string, following bool) (bool, error) {
	if strings.TrimSpace(accountID) == "" {
		return following, errors.New(errors.TypeValidation, opToggleFollow, ErrMissingID)
	}

	var data struct {
		Following bool `json:"following"`
	}
	err := p.do(ctx, http.MethodPost, "/follows/"+url.PathEscape(accountID), nil, map[string]bool{"following": following}, &data)
	if err != nil {
		return following, err
	}
	return data.Following, nil
}
