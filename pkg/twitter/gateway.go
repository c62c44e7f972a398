package twitter

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/NethermindEth/crm-twitter/pkg/utils/errors"
)

// Operation names, used for logging and metrics.
const (
	opFollowerCount    = "follower_count"
	opUserTimeline     = "user_timeline"
	opMentions         = "mentions"
	opDirectMessages   = "direct_messages"
	opNewestMention    = "newest_mention_id"
	opNewestDirect     = "newest_direct_message_id"
	opReplyPublic      = "reply_public"
	opReplyPrivate     = "reply_private"
	opPublishTweet     = "publish_tweet"
	opDeleteTweet      = "delete_tweet"
	opDeleteDirect     = "delete_direct_message"
	opToggleFollow     = "toggle_follow"
	pathMentions       = "statuses/mentions_timeline.json"
	pathDirectMessages = "direct_messages.json"
	pathStatusUpdate   = "statuses/update.json"
)

func (c *Client) accountID(ctx context.Context) (string, error) {
	id, err := c.accounts.TwitterID(ctx)
	if err != nil {
		return "", errors.Wrap(err, errors.TypeConfig, "read configured twitter account id")
	}
	return strconv.FormatInt(id, 10), nil
}

// FollowerCount returns the follower count of the configured account.
func (c *Client) FollowerCount(ctx context.Context) (int64, error) {
	userID, err := c.accountID(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	err = c.call(ctx, opFollowerCount, http.MethodGet, "users/show/followers_count.json", url.Values{"user_id": {userID}}, func(body []byte) error {
		result := gjson.GetBytes(body, "followers_count")
		if !gjson.ValidBytes(body) || !result.Exists() {
			return errors.New(errors.TypeDecode, opFollowerCount+": response has no followers_count", nil)
		}
		count = result.Int()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UserTimeline returns the configured account's own tweets.
func (c *Client) UserTimeline(ctx context.Context) ([]Object, error) {
	userID, err := c.accountID(ctx)
	if err != nil {
		return nil, err
	}

	return c.callList(ctx, opUserTimeline, "statuses/user_timeline.json", url.Values{"user_id": {userID}})
}

// mentionsQuery selects between the incremental and the bootstrap request shapes.
func mentionsQuery(since Cursor) url.Values {
	if since.IsZero() {
		return url.Values{"count": {"1"}}
	}
	return url.Values{"since_id": {strings.TrimSpace(since.String())}}
}

func directMessagesQuery(since Cursor) url.Values {
	if since.IsZero() {
		return url.Values{"count": {"1"}}
	}
	return url.Values{
		"full_text": {"true"},
		"since_id":  {strings.TrimSpace(since.String())},
	}
}

// Mentions returns mentions newer than since, newest first. A zero cursor
// returns only the latest mention.
func (c *Client) Mentions(ctx context.Context, since Cursor) ([]Object, error) {
	return c.callList(ctx, opMentions, pathMentions, mentionsQuery(since))
}

// DirectMessages returns direct messages newer than since. A zero cursor
// returns only the latest one.
func (c *Client) DirectMessages(ctx context.Context, since Cursor) ([]Object, error) {
	return c.callList(ctx, opDirectMessages, pathDirectMessages, directMessagesQuery(since))
}

// NewestMentionID returns the id of the latest mention, or CursorNone if there is none.
func (c *Client) NewestMentionID(ctx context.Context) (Cursor, error) {
	return c.callNewest(ctx, opNewestMention, pathMentions, mentionsQuery(CursorNone))
}

// NewestDirectMessageID returns the id of the latest direct message, or CursorNone if there is none.
func (c *Client) NewestDirectMessageID(ctx context.Context) (Cursor, error) {
	return c.callNewest(ctx, opNewestDirect, pathDirectMessages, directMessagesQuery(CursorNone))
}

// ReplyPublic posts text as a public reply to the tweet inReplyToID.
func (c *Client) ReplyPublic(ctx context.Context, text, inReplyToID string) (Object, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.TypeValidation, opReplyPublic, ErrEmptyText)
	}
	if strings.TrimSpace(inReplyToID) == "" {
		return nil, errors.New(errors.TypeValidation, opReplyPublic, ErrMissingID)
	}

	tweet, err := c.callObject(ctx, opReplyPublic, http.MethodPost, pathStatusUpdate, url.Values{
		"status":                {text},
		"in_reply_to_status_id": {inReplyToID},
	})
	if err != nil {
		return nil, err
	}
	c.notifier.Notify(ctx, MessageTweetSent)
	return tweet, nil
}

// ReplyPrivate sends text as a direct message to handle.
func (c *Client) ReplyPrivate(ctx context.Context, text, handle string) (Object, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.TypeValidation, opReplyPrivate, ErrEmptyText)
	}
	if handle == "" {
		return nil, errors.New(errors.TypeValidation, opReplyPrivate, ErrMissingID)
	}

	message, err := c.callObject(ctx, opReplyPrivate, http.MethodPost, "direct_messages/new.json", url.Values{
		"screen_name": {handle},
		"text":        {text},
	})
	if err != nil {
		return nil, err
	}
	c.notifier.Notify(ctx, MessageTweetSent)
	return message, nil
}

// PublishTweet posts text as a new status of the CRM account.
func (c *Client) PublishTweet(ctx context.Context, text string) (Object, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.TypeValidation, opPublishTweet, ErrEmptyText)
	}

	return c.callObject(ctx, opPublishTweet, http.MethodPost, pathStatusUpdate, url.Values{"status": {text}})
}

// DeleteTweet destroys the tweet tweetID.
func (c *Client) DeleteTweet(ctx context.Context, tweetID string) error {
	tweetID = strings.TrimSpace(tweetID)
	if tweetID == "" {
		return errors.New(errors.TypeValidation, opDeleteTweet, ErrMissingID)
	}

	if err := c.call(ctx, opDeleteTweet, http.MethodPost, "statuses/destroy/"+url.PathEscape(tweetID)+".json", nil, nil); err != nil {
		return err
	}
	c.notifier.Notify(ctx, MessageTweetDeleted)
	return nil
}

// DeleteDirectMessage destroys the direct message messageID.
func (c *Client) DeleteDirectMessage(ctx context.Context, messageID string) error {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return errors.New(errors.TypeValidation, opDeleteDirect, ErrMissingID)
	}

	if err := c.call(ctx, opDeleteDirect, http.MethodPost, "direct_messages/destroy.json", url.Values{"id": {messageID}}, nil); err != nil {
		return err
	}
	c.notifier.Notify(ctx, MessageTweetDeleted)
	return nil
}

// DeleteAnswer deletes a CRM case answer, picking the endpoint from the case origin.
func (c *Client) DeleteAnswer(ctx context.Context, origin CaseOrigin, id string) error {
	return deleteAnswer(ctx, c, origin, id)
}

func deleteAnswer(ctx context.Context, g Gateway, origin CaseOrigin, id string) error {
	switch origin {
	case OriginMention:
		return g.DeleteTweet(ctx, id)
	case OriginDirect:
		return g.DeleteDirectMessage(ctx, id)
	}
	return errors.New(errors.TypeValidation, "delete answer: "+string(origin), ErrUnknownOrigin)
}

// ToggleFollow follows accountID when following is false and unfollows it otherwise.
// It returns the new relationship state; on failure the state passed in is returned.
func (c *Client) ToggleFollow(ctx context.Context, accountID string, following bool) (bool, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return following, errors.New(errors.TypeValidation, opToggleFollow, ErrMissingID)
	}

	path, message := "friendships/create.json", MessageFollow
	if following {
		path, message = "friendships/destroy.json", MessageUnfollow
	}

	if err := c.call(ctx, opToggleFollow, http.MethodPost, path, url.Values{
		"follow":  {"true"},
		"user_id": {accountID},
	}, nil); err != nil {
		return following, err
	}
	c.notifier.Notify(ctx, message)
	return !following, nil
}
